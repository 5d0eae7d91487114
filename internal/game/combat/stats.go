package combat

import "strings"

// Stance is an entity's posture. Anything other than standing weakens defense
// and blocks attacks.
type Stance int

const (
	Standing Stance = iota
	Sitting
	Lying
	// Stasis is the suspended state of a persona fighting from cyberspace.
	Stasis
)

// String returns the stance as it reads in narration.
func (s Stance) String() string {
	switch s {
	case Sitting:
		return "sitting"
	case Lying:
		return "lying"
	case Stasis:
		return "in stasis"
	default:
		return "standing"
	}
}

// ParseStance accepts the stance command arguments.
func ParseStance(s string) (Stance, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stand", "standing", "up":
		return Standing, true
	case "sit", "sitting":
		return Sitting, true
	case "lie", "lying", "prone", "down":
		return Lying, true
	case "stasis":
		return Stasis, true
	}
	return Standing, false
}

// DefenseMultiplier scales defender power for the stance.
func (s Stance) DefenseMultiplier() float64 {
	switch s {
	case Sitting:
		return 0.75
	case Lying:
		return 0.5
	default:
		return 1.0
	}
}

// DefenseAllocation splits an entity's defensive skill across three styles.
// Each value is a percentage; the sum should not exceed 100.
type DefenseAllocation struct {
	Evasion int `json:"evasion"`
	Parry   int `json:"parry"`
	Shield  int `json:"shield"`
}

// Valid reports whether every share is non-negative and the total is at most 100.
func (d DefenseAllocation) Valid() bool {
	if d.Evasion < 0 || d.Parry < 0 || d.Shield < 0 {
		return false
	}
	return d.Evasion+d.Parry+d.Shield <= 100
}

// CombatStats is the mutable combat state of one entity.
//
// Invariant: 0 <= HP <= MaxHP; 0 <= Balance <= 1; 0 <= Fatigue <= MaxFatigue;
// Tier is always a valid rung.
type CombatStats struct {
	HP         int
	MaxHP      int
	Attack     int
	Defense    int
	Balance    float64
	Fatigue    int
	MaxFatigue int
	Tier       Tier
	Allocation DefenseAllocation

	TargetID    EntityID
	TargetLimb  BodyPart
	HangingBack bool
	// Telegraph is the move an NPC has announced; nil when none is showing.
	Telegraph   *ActionKind
	PendingMove Move
	Parrying    bool
	Hostile     bool
	Stance      Stance
}

// NewCombatStats returns fresh stats at full health, fatigue and balance.
//
// Precondition: maxHP > 0; maxFatigue >= 0.
func NewCombatStats(maxHP, maxFatigue int) *CombatStats {
	return &CombatStats{
		HP:         maxHP,
		MaxHP:      maxHP,
		Balance:    1.0,
		Fatigue:    maxFatigue,
		MaxFatigue: maxFatigue,
	}
}

// IsDead reports whether HP has reached zero.
func (s *CombatStats) IsDead() bool {
	return s.HP <= 0
}

// ApplyDamage removes n hit points, clamping at zero.
//
// Postcondition: Returns true when the entity is now dead.
func (s *CombatStats) ApplyDamage(n int) bool {
	if n > 0 {
		s.HP -= n
		if s.HP < 0 {
			s.HP = 0
		}
	}
	return s.HP <= 0
}

// BalanceCap is the highest balance the entity can hold. Exhaustion caps
// balance at one half.
func (s *CombatStats) BalanceCap() float64 {
	if s.Fatigue <= 0 {
		return 0.5
	}
	return 1.0
}

// AdjustBalance shifts balance by delta and clamps it to [0, BalanceCap].
func (s *CombatStats) AdjustBalance(delta float64) {
	s.Balance += delta
	if limit := s.BalanceCap(); s.Balance > limit {
		s.Balance = limit
	}
	if s.Balance < 0 {
		s.Balance = 0
	}
}

// SpendFatigue consumes n fatigue.
//
// Postcondition: Returns false and leaves Fatigue unchanged when Fatigue < n.
func (s *CombatStats) SpendFatigue(n int) bool {
	if s.Fatigue < n {
		return false
	}
	s.Fatigue -= n
	if s.Fatigue == 0 {
		s.AdjustBalance(0)
	}
	return true
}

// RecoverFatigue restores n fatigue, clamping at MaxFatigue.
func (s *CombatStats) RecoverFatigue(n int) {
	s.Fatigue += n
	if s.Fatigue > s.MaxFatigue {
		s.Fatigue = s.MaxFatigue
	}
}

// Disengage drops the entity's lock and returns it to the bottom of the ladder.
func (s *CombatStats) Disengage() {
	s.TargetID = ""
	s.Tier = Disengaged
	s.Telegraph = nil
	s.PendingMove = MoveNone
	s.Hostile = false
}
