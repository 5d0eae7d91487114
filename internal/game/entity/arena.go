// Package entity is the id-keyed arena every combat-capable entity lives in.
// Components are stored in a donburi world; callers reach them through typed
// accessors on Entity and reference other entities only by combat.EntityID.
package entity

import (
	"fmt"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"

	"github.com/cory-johannsen/mud-combat/internal/game/combat"
	"github.com/cory-johannsen/mud-combat/internal/game/inventory"
)

// Component types. Values are pointers so a component handed out by an
// accessor stays valid when the entity gains or loses other components.
var (
	identityC   = donburi.NewComponentType[*combat.Identity]()
	positionC   = donburi.NewComponentType[*combat.Position]()
	statsC      = donburi.NewComponentType[*combat.CombatStats]()
	attributesC = donburi.NewComponentType[*combat.Attributes]()
	skillsC     = donburi.NewComponentType[combat.Skills]()
	roundtimeC  = donburi.NewComponentType[*combat.Roundtime]()
	bufferC     = donburi.NewComponentType[*combat.Buffer]()
	momentumC   = donburi.NewComponentType[*combat.Momentum]()
	woundsC     = donburi.NewComponentType[*combat.WoundTable]()
	equipmentC  = donburi.NewComponentType[*inventory.Equipment]()
	automationC = donburi.NewComponentType[*combat.AutomatedAction]()
	brainC      = donburi.NewComponentType[*combat.NPCBrain]()
	personaC    = donburi.NewComponentType[*combat.Persona]()
)

// Spec describes a new entity. Nil optional parts are left off.
type Spec struct {
	Identity   combat.Identity
	Position   combat.Position
	Stats      *combat.CombatStats
	Attributes combat.Attributes
	Skills     combat.Skills
	Equipment  *inventory.Equipment
	Brain      *combat.NPCBrain
	Persona    *combat.Persona
	Wounds     *combat.WoundTable
	// Sequenced attaches a combat buffer.
	Sequenced bool
}

// Arena owns every live entity.
//
// Arena is not safe for concurrent use; the game service serialises access.
type Arena struct {
	world donburi.World
	ids   map[combat.EntityID]donburi.Entity
	// order keeps insertion order so room listings and ordinal targeting are stable.
	order []combat.EntityID
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{
		world: donburi.NewWorld(),
		ids:   make(map[combat.EntityID]donburi.Entity),
	}
}

// Spawn creates an entity from spec.
//
// Precondition: spec.Identity.ID is non-empty and spec.Stats is non-nil.
// Postcondition: Returns an error when the id is already live.
func (a *Arena) Spawn(spec Spec) (*Entity, error) {
	id := spec.Identity.ID
	if id == "" {
		return nil, fmt.Errorf("entity: spawn requires an id")
	}
	if spec.Stats == nil {
		return nil, fmt.Errorf("entity %s: spawn requires stats", id)
	}
	if _, exists := a.ids[id]; exists {
		return nil, fmt.Errorf("entity %s: already in arena", id)
	}

	comps := []donburi.IComponentType{identityC, positionC, statsC, attributesC, skillsC, roundtimeC, equipmentC}
	if spec.Brain != nil {
		comps = append(comps, brainC)
	}
	if spec.Persona != nil {
		comps = append(comps, personaC)
	}
	if spec.Wounds != nil {
		comps = append(comps, woundsC)
	}
	if spec.Sequenced {
		comps = append(comps, bufferC)
	}
	handle := a.world.Create(comps...)
	entry := a.world.Entry(handle)

	ident := spec.Identity
	pos := spec.Position
	attrs := spec.Attributes
	skills := spec.Skills
	if skills == nil {
		skills = combat.Skills{}
	}
	eq := spec.Equipment
	if eq == nil {
		eq = &inventory.Equipment{}
	}
	identityC.SetValue(entry, &ident)
	positionC.SetValue(entry, &pos)
	statsC.SetValue(entry, spec.Stats)
	attributesC.SetValue(entry, &attrs)
	skillsC.SetValue(entry, skills)
	roundtimeC.SetValue(entry, &combat.Roundtime{})
	equipmentC.SetValue(entry, eq)
	if spec.Brain != nil {
		brainC.SetValue(entry, spec.Brain)
	}
	if spec.Persona != nil {
		personaC.SetValue(entry, spec.Persona)
	}
	if spec.Wounds != nil {
		woundsC.SetValue(entry, spec.Wounds)
	}
	if spec.Sequenced {
		bufferC.SetValue(entry, combat.NewBuffer())
	}

	a.ids[id] = handle
	a.order = append(a.order, id)
	return &Entity{ID: id, entry: entry}, nil
}

// Get resolves id to a live entity.
func (a *Arena) Get(id combat.EntityID) (*Entity, bool) {
	if id == "" {
		return nil, false
	}
	handle, ok := a.ids[id]
	if !ok || !a.world.Valid(handle) {
		return nil, false
	}
	return &Entity{ID: id, entry: a.world.Entry(handle)}, true
}

// Remove deletes id and all its components.
//
// Postcondition: Returns false when id was not live.
func (a *Arena) Remove(id combat.EntityID) bool {
	handle, ok := a.ids[id]
	if !ok {
		return false
	}
	if a.world.Valid(handle) {
		a.world.Remove(handle)
	}
	delete(a.ids, id)
	for i, o := range a.order {
		if o == id {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of live entities.
func (a *Arena) Len() int {
	return len(a.order)
}

// All returns every live entity in spawn order.
func (a *Arena) All() []*Entity {
	out := make([]*Entity, 0, len(a.order))
	for _, id := range a.order {
		if e, ok := a.Get(id); ok {
			out = append(out, e)
		}
	}
	return out
}

// InRoom returns the entities in roomID in spawn order.
func (a *Arena) InRoom(roomID string) []*Entity {
	var out []*Entity
	for _, e := range a.All() {
		if e.Position().RoomID == roomID {
			out = append(out, e)
		}
	}
	return out
}

// WithBrain returns every NPC carrying an NPCBrain, in spawn order.
func (a *Arena) WithBrain() []*Entity {
	return a.query(brainC)
}

// Automated returns every entity with an AutomatedAction, in spawn order.
func (a *Arena) Automated() []*Entity {
	return a.query(automationC)
}

// WithMomentum returns every entity carrying momentum, in spawn order.
func (a *Arena) WithMomentum() []*Entity {
	return a.query(momentumC)
}

// query runs a donburi query and re-sorts the matches into spawn order.
func (a *Arena) query(c donburi.IComponentType) []*Entity {
	matched := make(map[combat.EntityID]*donburi.Entry)
	donburi.NewQuery(filter.Contains(c)).Each(a.world, func(entry *donburi.Entry) {
		matched[identityC.GetValue(entry).ID] = entry
	})
	out := make([]*Entity, 0, len(matched))
	for _, id := range a.order {
		if entry, ok := matched[id]; ok {
			out = append(out, &Entity{ID: id, entry: entry})
		}
	}
	return out
}
