package combat

import (
	"fmt"
	"strings"
	"time"
)

// ActionKind is a discrete buffer action.
// The zero value (ActionUnknown) is intentionally invalid.
type ActionKind int

const (
	ActionUnknown ActionKind = iota
	ActionDash
	ActionSlash
	ActionParry
	ActionThrust
	// ActionReboot and ActionStumble are malware: injected by being hit, never typed.
	ActionReboot
	ActionStumble
)

// DefaultDelays is the time each buffer action occupies before the next runs.
var DefaultDelays = map[ActionKind]time.Duration{
	ActionDash:    1000 * time.Millisecond,
	ActionSlash:   1500 * time.Millisecond,
	ActionThrust:  2000 * time.Millisecond,
	ActionParry:   1000 * time.Millisecond,
	ActionStumble: 1000 * time.Millisecond,
}

// String returns the wire name of the action.
func (k ActionKind) String() string {
	switch k {
	case ActionDash:
		return "DASH"
	case ActionSlash:
		return "SLASH"
	case ActionParry:
		return "PARRY"
	case ActionThrust:
		return "THRUST"
	case ActionReboot:
		return "REBOOT"
	case ActionStumble:
		return "STUMBLE"
	default:
		return "UNKNOWN"
	}
}

// ParseActionKind accepts the player-typeable actions only.
func ParseActionKind(s string) (ActionKind, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DASH":
		return ActionDash, true
	case "SLASH":
		return ActionSlash, true
	case "PARRY":
		return ActionParry, true
	case "THRUST":
		return ActionThrust, true
	}
	return ActionUnknown, false
}

// MarshalText encodes the wire name.
func (k ActionKind) MarshalText() ([]byte, error) {
	if k == ActionUnknown {
		return nil, fmt.Errorf("cannot encode unknown action kind")
	}
	return []byte(k.String()), nil
}

// IsMalware reports whether k is injected rather than chosen.
func (k ActionKind) IsMalware() bool {
	return k == ActionReboot || k == ActionStumble
}

// IsStrike reports whether k deals damage.
func (k ActionKind) IsStrike() bool {
	return k == ActionSlash || k == ActionThrust
}

// Counters reports whether k answers the telegraphed move perfectly.
// PARRY counters SLASH and THRUST; DASH counters DASH.
func (k ActionKind) Counters(telegraph ActionKind) bool {
	switch k {
	case ActionParry:
		return telegraph == ActionSlash || telegraph == ActionThrust
	case ActionDash:
		return telegraph == ActionDash
	}
	return false
}

// QueuedAction is one slot of a combat buffer.
type QueuedAction struct {
	Kind     ActionKind `json:"type"`
	TargetID EntityID   `json:"targetId,omitempty"`
}

// Move is the attack a sync-bar challenge was opened for.
// The zero value (MoveNone) means no challenge is pending.
type Move int

const (
	MoveNone Move = iota
	MoveAttack
	MovePunch
	MoveJab
	MoveHeadbutt
	MoveUppercut
	MoveSlice
	MoveIaijutsu
	MoveSlash
	MoveThrust
)

// String returns the verb players type for the move.
func (m Move) String() string {
	switch m {
	case MoveAttack:
		return "attack"
	case MovePunch:
		return "punch"
	case MoveJab:
		return "jab"
	case MoveHeadbutt:
		return "headbutt"
	case MoveUppercut:
		return "uppercut"
	case MoveSlice:
		return "slice"
	case MoveIaijutsu:
		return "iaijutsu"
	case MoveSlash:
		return "slash"
	case MoveThrust:
		return "thrust"
	default:
		return "none"
	}
}

// IsBrawling reports whether the move needs empty hands.
func (m Move) IsBrawling() bool {
	switch m {
	case MovePunch, MoveJab, MoveHeadbutt, MoveUppercut:
		return true
	}
	return false
}

// RequiresBlade reports whether the move needs a blade-category weapon.
func (m Move) RequiresBlade() bool {
	switch m {
	case MoveSlice, MoveSlash, MoveThrust, MoveIaijutsu:
		return true
	}
	return false
}

// RequiresKatana reports whether the move needs a katana specifically.
func (m Move) RequiresKatana() bool {
	return m == MoveIaijutsu
}

// MoveForAction maps a buffer strike to its move.
func MoveForAction(k ActionKind) Move {
	switch k {
	case ActionSlash:
		return MoveSlash
	case ActionThrust:
		return MoveThrust
	}
	return MoveNone
}
