package character

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/mud-combat/internal/game/combat"
)

// Starting values for a fresh profile.
const (
	DefaultAgility    = 12
	DefaultStrength   = 10
	DefaultMaxHP      = 30
	DefaultMaxFatigue = 20
)

// DefaultAllocation favours evasion with some parry.
var DefaultAllocation = combat.DefenseAllocation{Evasion: 50, Parry: 30}

// New builds a first-time profile for name.
//
// Precondition: name must be non-empty.
// Postcondition: Returns a valid Profile ready for persistence, or a non-nil error.
func New(name string) (*Profile, error) {
	if name == "" {
		return nil, errors.New("profile name must not be empty")
	}
	return &Profile{
		Name:       name,
		Agility:    DefaultAgility,
		Strength:   DefaultStrength,
		MaxHP:      DefaultMaxHP,
		MaxFatigue: DefaultMaxFatigue,
		Skills:     combat.Skills{"brawling": {Level: 1}},
		Allocation: DefaultAllocation,
		Wounds:     map[combat.BodyPart]combat.Wound{},
	}, nil
}

// Validate checks the profile invariants.
func (p *Profile) Validate() error {
	var errs []string
	if p.Name == "" {
		errs = append(errs, "name must not be empty")
	}
	if p.MaxHP <= 0 {
		errs = append(errs, fmt.Sprintf("max_hp must be > 0, got %d", p.MaxHP))
	}
	if p.MaxFatigue < 0 {
		errs = append(errs, fmt.Sprintf("max_fatigue must be >= 0, got %d", p.MaxFatigue))
	}
	if !p.Allocation.Valid() {
		errs = append(errs, fmt.Sprintf("defense allocation %+v exceeds 100%%", p.Allocation))
	}
	for part, w := range p.Wounds {
		if w.Level < 0 || w.Level > combat.MaxWoundLevel {
			errs = append(errs, fmt.Sprintf("wound level for %s out of range: %d", part, w.Level))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid profile: %v", errs)
	}
	return nil
}

// WoundTable rebuilds the live wound table, or nil when the profile is unhurt.
func (p *Profile) WoundTable() *combat.WoundTable {
	if len(p.Wounds) == 0 {
		return nil
	}
	t := combat.NewWoundTable()
	for part, w := range p.Wounds {
		w := w
		t.Parts[part] = &w
	}
	return t
}

// CaptureWounds copies t back into the profile. A nil table clears it.
func (p *Profile) CaptureWounds(t *combat.WoundTable) {
	p.Wounds = map[combat.BodyPart]combat.Wound{}
	if t == nil {
		return
	}
	for part, w := range t.Parts {
		if w.Level > 0 {
			p.Wounds[part] = *w
		}
	}
}

// CaptureSkills copies s into the profile.
func (p *Profile) CaptureSkills(s combat.Skills) {
	p.Skills = make(combat.Skills, len(s))
	for name, prog := range s {
		p.Skills[name] = prog
	}
}
