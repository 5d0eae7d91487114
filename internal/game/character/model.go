// Package character defines the persisted combat profile of a player.
package character

import (
	"time"

	"github.com/cory-johannsen/mud-combat/internal/game/combat"
)

// Profile is the part of a player that survives a disconnect: attributes,
// trained skills, defensive habits and lasting wounds.
//
// ID is set by the persistence layer; zero indicates an unsaved profile.
type Profile struct {
	ID   int64
	Name string

	Agility    int
	Strength   int
	MaxHP      int
	MaxFatigue int

	Skills     combat.Skills
	Allocation combat.DefenseAllocation
	Wounds     map[combat.BodyPart]combat.Wound

	CreatedAt time.Time
	UpdatedAt time.Time
}
