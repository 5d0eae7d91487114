package combat

import (
	"fmt"
	"strings"
)

// Tier is a rung on the engagement ladder. Higher values are closer.
type Tier int

const (
	Disengaged Tier = iota
	Missile
	Polearm
	Melee
	CloseQuarters
)

// TierCount is the number of rungs on the ladder.
const TierCount = 5

// Direction is a maneuver along the ladder.
type Direction int

const (
	Close Direction = iota
	Withdraw
)

// String returns "close" or "withdraw".
func (d Direction) String() string {
	if d == Withdraw {
		return "withdraw"
	}
	return "close"
}

// ParseDirection accepts the maneuver argument forms players type.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "close", "c", "in", "advance":
		return Close, true
	case "withdraw", "w", "out", "retreat":
		return Withdraw, true
	}
	return Close, false
}

// String returns the wire name of the tier.
func (t Tier) String() string {
	switch t {
	case Disengaged:
		return "DISENGAGED"
	case Missile:
		return "MISSILE"
	case Polearm:
		return "POLEARM"
	case Melee:
		return "MELEE"
	case CloseQuarters:
		return "CLOSE_QUARTERS"
	default:
		return "UNKNOWN"
	}
}

// Label returns the tier as it reads in narration.
func (t Tier) Label() string {
	switch t {
	case Disengaged:
		return "disengaged"
	case Missile:
		return "missile"
	case Polearm:
		return "polearm"
	case Melee:
		return "melee"
	case CloseQuarters:
		return "close quarters"
	default:
		return "unknown"
	}
}

// Valid reports whether t is one of the five rungs.
func (t Tier) Valid() bool {
	return t >= Disengaged && t <= CloseQuarters
}

// Step moves one rung in direction d.
//
// Postcondition: Returns (next, true) when a step is possible, or (t, false)
// when t is already the terminal rung for d.
func (t Tier) Step(d Direction) (Tier, bool) {
	switch d {
	case Close:
		if t >= CloseQuarters {
			return t, false
		}
		return t + 1, true
	default:
		if t <= Disengaged {
			return t, false
		}
		return t - 1, true
	}
}

// MaxTier returns the closer of two tiers.
func MaxTier(a, b Tier) Tier {
	if a > b {
		return a
	}
	return b
}

// ParseTier accepts both wire names and the lowercase content form
// ("close_quarters", "close quarters").
func ParseTier(s string) (Tier, error) {
	norm := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", "_"))
	for t := Disengaged; t <= CloseQuarters; t++ {
		if t.String() == norm {
			return t, nil
		}
	}
	if norm == "CQ" {
		return CloseQuarters, nil
	}
	return Disengaged, fmt.Errorf("unknown engagement tier %q", s)
}

// MarshalText encodes the wire name.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes content and wire forms.
func (t *Tier) UnmarshalText(text []byte) error {
	parsed, err := ParseTier(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
