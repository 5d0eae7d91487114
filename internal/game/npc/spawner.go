package npc

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/mud-combat/internal/game/combat"
	"github.com/cory-johannsen/mud-combat/internal/game/entity"
	"github.com/cory-johannsen/mud-combat/internal/game/inventory"
	"github.com/cory-johannsen/mud-combat/internal/game/world"
)

// Spawner turns templates into arena entities.
type Spawner struct {
	arena     *entity.Arena
	items     *inventory.Registry
	templates map[string]*Template
	logger    *zap.Logger
	// newID mints instance ids; replaced in tests.
	newID func() string
}

// NewSpawner creates a Spawner over the given templates.
//
// Precondition: arena, items and logger must be non-nil.
// Postcondition: Returns an error on duplicate template ids or on a template
// that names a weapon or armor the registry does not hold.
func NewSpawner(arena *entity.Arena, items *inventory.Registry, templates []*Template, logger *zap.Logger) (*Spawner, error) {
	s := &Spawner{
		arena:     arena,
		items:     items,
		templates: make(map[string]*Template, len(templates)),
		logger:    logger,
		newID:     uuid.NewString,
	}
	for _, t := range templates {
		if _, dup := s.templates[t.ID]; dup {
			return nil, fmt.Errorf("npc template %q defined twice", t.ID)
		}
		if _, err := items.Equip(t.Weapon, t.Armor, 0); err != nil {
			return nil, fmt.Errorf("npc template %q: %w", t.ID, err)
		}
		s.templates[t.ID] = t
	}
	return s, nil
}

// Template returns the template with id.
func (s *Spawner) Template(id string) (*Template, bool) {
	t, ok := s.templates[id]
	return t, ok
}

// Spawn places a fresh instance of templateID in room.
//
// Postcondition: The entity carries stats, equipment, a brain, and a persona
// when the template has one.
func (s *Spawner) Spawn(templateID string, room *world.Room) (*entity.Entity, error) {
	t, ok := s.templates[templateID]
	if !ok {
		return nil, fmt.Errorf("unknown npc template %q", templateID)
	}
	eq, err := s.items.Equip(t.Weapon, t.Armor, t.Ammunition)
	if err != nil {
		return nil, fmt.Errorf("npc template %q: %w", t.ID, err)
	}

	stats := combat.NewCombatStats(t.MaxHP, t.MaxFatigue)
	stats.Defense = t.Defense
	stats.Allocation = t.Allocation

	skills := combat.Skills{}
	for name, lvl := range t.Skills {
		skills[name] = combat.SkillProgress{Level: lvl}
	}

	spec := entity.Spec{
		Identity: combat.Identity{
			ID:       combat.EntityID(t.ID + "-" + s.newID()),
			Name:     t.Name,
			Kind:     combat.KindNPC,
			Keywords: append([]string{t.ID}, t.Keywords...),
		},
		Position:   combat.Position{RoomID: room.ID, ZoneID: room.ZoneID},
		Stats:      stats,
		Attributes: combat.Attributes{Agility: t.Agility, Strength: t.Strength},
		Skills:     skills,
		Equipment:  eq,
		Brain: &combat.NPCBrain{
			TemplateID: t.ID,
			Aggressive: t.Aggressive,
			Stalking:   t.Stalking,
		},
	}
	if t.Persona {
		spec.Persona = &combat.Persona{InCyberspace: room.Cyberspace}
	}
	e, err := s.arena.Spawn(spec)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("npc spawned",
		zap.String("id", string(e.ID)),
		zap.String("template", t.ID),
		zap.String("room", room.ID),
	)
	return e, nil
}

// Populate tops every room up to its configured spawn counts.
//
// Postcondition: Returns the ids spawned, in room then template order.
func (s *Spawner) Populate(rooms []*world.Room) ([]combat.EntityID, error) {
	sorted := append([]*world.Room(nil), rooms...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	var spawned []combat.EntityID
	for _, room := range sorted {
		live := make(map[string]int)
		for _, e := range s.arena.InRoom(room.ID) {
			if b := e.Brain(); b != nil {
				live[b.TemplateID]++
			}
		}
		for _, sp := range room.Spawns {
			for n := live[sp.Template]; n < sp.Count; n++ {
				e, err := s.Spawn(sp.Template, room)
				if err != nil {
					return spawned, fmt.Errorf("populating %s: %w", room.ID, err)
				}
				spawned = append(spawned, e.ID)
			}
		}
	}
	return spawned, nil
}
