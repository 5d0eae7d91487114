package entity

import (
	"strings"

	"github.com/yohamta/donburi"

	"github.com/cory-johannsen/mud-combat/internal/game/combat"
	"github.com/cory-johannsen/mud-combat/internal/game/inventory"
)

// Entity is a short-lived handle on one arena entry. Do not hold it across
// ticks; keep the ID and resolve it again through Arena.Get.
type Entity struct {
	ID    combat.EntityID
	entry *donburi.Entry
}

// Valid reports whether the entity is still in the arena.
func (e *Entity) Valid() bool {
	return e != nil && e.entry != nil && e.entry.Valid()
}

// Identity returns the entity's name card.
func (e *Entity) Identity() *combat.Identity { return identityC.GetValue(e.entry) }

// Name returns the display name.
func (e *Entity) Name() string { return e.Identity().Name }

// IsNPC reports whether the entity is an NPC.
func (e *Entity) IsNPC() bool { return e.Identity().Kind == combat.KindNPC }

// Position returns where the entity stands.
func (e *Entity) Position() *combat.Position { return positionC.GetValue(e.entry) }

// Stats returns the combat stats.
func (e *Entity) Stats() *combat.CombatStats { return statsC.GetValue(e.entry) }

// Attributes returns the physical scores.
func (e *Entity) Attributes() *combat.Attributes { return attributesC.GetValue(e.entry) }

// Skills returns skill progress. The map is shared with the component.
func (e *Entity) Skills() combat.Skills { return skillsC.GetValue(e.entry) }

// Roundtime returns the action lock.
func (e *Entity) Roundtime() *combat.Roundtime { return roundtimeC.GetValue(e.entry) }

// Equipment returns what the entity fights with.
func (e *Entity) Equipment() *inventory.Equipment { return equipmentC.GetValue(e.entry) }

// Buffer returns the combat buffer, or nil for entities that cannot sequence.
func (e *Entity) Buffer() *combat.Buffer {
	if !e.entry.HasComponent(bufferC) {
		return nil
	}
	return bufferC.GetValue(e.entry)
}

// Brain returns the NPC brain, or nil for players.
func (e *Entity) Brain() *combat.NPCBrain {
	if !e.entry.HasComponent(brainC) {
		return nil
	}
	return brainC.GetValue(e.entry)
}

// Persona returns the digital form, or nil.
func (e *Entity) Persona() *combat.Persona {
	if !e.entry.HasComponent(personaC) {
		return nil
	}
	return personaC.GetValue(e.entry)
}

// InCyberspace reports whether wounds map to digital analogues.
func (e *Entity) InCyberspace() bool {
	p := e.Persona()
	return p != nil && p.InCyberspace
}

// Momentum returns the momentum pool, or nil when none is attached yet.
func (e *Entity) Momentum() *combat.Momentum {
	if !e.entry.HasComponent(momentumC) {
		return nil
	}
	return momentumC.GetValue(e.entry)
}

// EnsureMomentum attaches an empty pool on first use and returns it.
func (e *Entity) EnsureMomentum() *combat.Momentum {
	if m := e.Momentum(); m != nil {
		return m
	}
	m := combat.NewMomentum()
	e.entry.AddComponent(momentumC)
	momentumC.SetValue(e.entry, m)
	return m
}

// Wounds returns the wound table, or nil when the entity was never wounded.
func (e *Entity) Wounds() *combat.WoundTable {
	if !e.entry.HasComponent(woundsC) {
		return nil
	}
	return woundsC.GetValue(e.entry)
}

// EnsureWounds attaches an empty wound table on first use and returns it.
func (e *Entity) EnsureWounds() *combat.WoundTable {
	if w := e.Wounds(); w != nil {
		return w
	}
	w := combat.NewWoundTable()
	e.entry.AddComponent(woundsC)
	woundsC.SetValue(e.entry, w)
	return w
}

// ArmPenalty is the attacker-power penalty from arm wounds.
func (e *Entity) ArmPenalty() float64 {
	if w := e.Wounds(); w != nil {
		return w.ArmPenalty()
	}
	return 0
}

// Automation returns the running automated maneuver, or nil.
func (e *Entity) Automation() *combat.AutomatedAction {
	if !e.entry.HasComponent(automationC) {
		return nil
	}
	return automationC.GetValue(e.entry)
}

// SetAutomation starts or replaces the automated maneuver.
func (e *Entity) SetAutomation(a combat.AutomatedAction) {
	if !e.entry.HasComponent(automationC) {
		e.entry.AddComponent(automationC)
	}
	automationC.SetValue(e.entry, &a)
}

// ClearAutomation stops any automated maneuver.
//
// Postcondition: Returns true when one was running.
func (e *Entity) ClearAutomation() bool {
	if !e.entry.HasComponent(automationC) {
		return false
	}
	e.entry.RemoveComponent(automationC)
	return true
}

// Matches reports whether keyword names the entity: a case-insensitive prefix
// of its name, of any word of its name, or of one of its keywords.
func (e *Entity) Matches(keyword string) bool {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	if kw == "" {
		return false
	}
	ident := e.Identity()
	if strings.EqualFold(string(ident.ID), kw) {
		return true
	}
	name := strings.ToLower(ident.Name)
	if strings.HasPrefix(name, kw) {
		return true
	}
	for _, w := range strings.Fields(name) {
		if strings.HasPrefix(w, kw) {
			return true
		}
	}
	for _, k := range ident.Keywords {
		if strings.HasPrefix(strings.ToLower(k), kw) {
			return true
		}
	}
	return false
}
