package combat

import "math"

// HitType is the severity of a resolved strike, ordered from least to most.
type HitType int

const (
	HitMiss HitType = iota
	HitMarginal
	HitSolid
	HitCrushing
)

// String returns the hit type name.
func (h HitType) String() string {
	switch h {
	case HitMarginal:
		return "marginal"
	case HitSolid:
		return "solid"
	case HitCrushing:
		return "crushing"
	default:
		return "miss"
	}
}

// Downgrade returns the next less severe hit type; a miss stays a miss.
func (h HitType) Downgrade() HitType {
	if h <= HitMiss {
		return HitMiss
	}
	return h - 1
}

// ClientResult is the categorical outcome a client reports for a sync bar.
type ClientResult string

const (
	ClientCrit ClientResult = "crit"
	ClientHit  ClientResult = "hit"
	ClientMiss ClientResult = "miss"
)

// Valid reports whether r is one of the three outcomes.
func (r ClientResult) Valid() bool {
	return r == ClientCrit || r == ClientHit || r == ClientMiss
}

// Hit-type margin boundaries.
const (
	CrushingMargin = 15.0
	SolidMargin    = 0.0
	MarginalMargin = -10.0
)

// DetermineHitType maps a power margin to a hit type.
//
// Postcondition: Pure and monotonic in margin.
func DetermineHitType(margin float64) HitType {
	switch {
	case margin > CrushingMargin:
		return HitCrushing
	case margin > SolidMargin:
		return HitSolid
	case margin > MarginalMargin:
		return HitMarginal
	default:
		return HitMiss
	}
}

// ApplyClientResult folds the client's sync-bar outcome into the computed hit.
// Only a crit changes anything: it upgrades to crushing. The margin alone
// decides hits and misses.
func ApplyClientResult(computed HitType, r ClientResult) HitType {
	if r == ClientCrit {
		return HitCrushing
	}
	return computed
}

// AttackProfile is everything the calculator needs about the striker.
type AttackProfile struct {
	Skill   int
	Agility int
	Balance float64
	// ArmPenalty comes from arm wounds.
	ArmPenalty float64
}

// AttackerPower is skill×0.6 + AGI×0.4 + balance×20, less arm wounds.
func AttackerPower(p AttackProfile) float64 {
	return float64(p.Skill)*0.6 + float64(p.Agility)*0.4 + p.Balance*20 - p.ArmPenalty
}

// DefenseProfile is everything the calculator needs about the defender.
type DefenseProfile struct {
	Skill        int
	Agility      int
	Balance      float64
	Allocation   DefenseAllocation
	BaseDefense  int
	ArmorDefense int
	ArmorPenalty int
	Stance       Stance
}

// DefenderPower weights the allocation shares over skill×0.6 + AGI×0.4, adds
// balance, base defense and armor, and scales the total by stance. Parry only
// counts against melee strikes.
func DefenderPower(p DefenseProfile, melee bool) float64 {
	base := float64(p.Skill)*0.6 + float64(p.Agility)*0.4
	share := p.Allocation.Evasion + p.Allocation.Shield
	if melee {
		share += p.Allocation.Parry
	}
	power := float64(share)/100*base +
		p.Balance*20 +
		float64(p.BaseDefense) +
		float64(p.ArmorDefense) -
		float64(p.ArmorPenalty)
	return power * p.Stance.DefenseMultiplier()
}

// Damage scales base damage by hit type and multiplier.
//
// Postcondition: A miss deals 0; any other hit deals at least 1.
func Damage(base int, hit HitType, margin, multiplier float64) int {
	if hit == HitMiss {
		return 0
	}
	bonus := math.Max(0, margin) / 5
	var raw float64
	switch hit {
	case HitCrushing:
		raw = float64(base)*1.5 + bonus
	case HitSolid:
		raw = float64(base) + bonus
	default:
		raw = float64(base) * 0.5
	}
	if multiplier <= 0 {
		multiplier = 1
	}
	dmg := int(math.Round(raw * multiplier))
	if dmg < 1 {
		dmg = 1
	}
	return dmg
}

// BalanceShift returns the balance change for the attacker and the target.
func BalanceShift(hit HitType) (attacker, target float64) {
	switch hit {
	case HitCrushing:
		return 0.1, -0.2
	case HitSolid:
		return 0, -0.1
	case HitMarginal:
		return 0.05, 0
	default:
		return -0.1, 0
	}
}

// ExperienceFor returns the skill xp earned by a hit.
func ExperienceFor(hit HitType) int {
	switch hit {
	case HitCrushing:
		return 3
	case HitMiss:
		return 0
	default:
		return 1
	}
}

// WoundSeverity is the wound level a crushing hit of dmg inflicts.
func WoundSeverity(dmg int) int {
	return 1 + dmg/10
}

// SyncDifficulty is a weapon's contribution to the sync-bar minigame.
type SyncDifficulty struct {
	Speed    float64 `yaml:"speed" json:"speed"`
	ZoneSize float64 `yaml:"zone_size" json:"zoneSize"`
	Jitter   float64 `yaml:"jitter" json:"jitter"`
}

// DefaultBarLength is the number of cells in the sync bar.
const DefaultBarLength = 20

// SyncBar holds the parameters sent to the client for one challenge.
type SyncBar struct {
	Speed        float64 `json:"speed"`
	CritZoneSize float64 `json:"critZoneSize"`
	Jitter       float64 `json:"jitter"`
	BarLength    int     `json:"barLength"`
}

// ComputeSyncBar scales the weapon's difficulty by the wielder. Speed falls
// with skill (never below half); the crit zone grows with agility.
func ComputeSyncBar(d SyncDifficulty, skill, agility int) SyncBar {
	speed := d.Speed * math.Max(0.5, 1-float64(skill)*0.02)
	zone := d.ZoneSize * (0.5 + float64(agility)/30)
	return SyncBar{
		Speed:        math.Round(speed*100) / 100,
		CritZoneSize: math.Round(zone*100) / 100,
		Jitter:       d.Jitter,
		BarLength:    DefaultBarLength,
	}
}
