package combat

// damageWords is indexed by damage magnitude; the last word covers
// everything beyond the table.
var damageWords = []string{
	"harmless",      // 0
	"feeble",        // 1
	"light",         // 2
	"glancing",      // 3
	"grazing",       // 4
	"modest",        // 5
	"solid",         // 6
	"firm",          // 7
	"hard",          // 8
	"heavy",         // 9
	"punishing",     // 10
	"brutal",        // 11-12
	"savage",        // 13-14
	"vicious",       // 15-16
	"grievous",      // 17-19
	"crippling",     // 20-22
	"devastating",   // 23-26
	"ruinous",       // 27-30
	"shattering",    // 31-35
	"annihilating",  // 36-42
	"cataclysmic",   // 43-50
	"obliterating",  // 51+
}

// damageFloors holds the minimum damage for each entry of damageWords.
var damageFloors = []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 13, 15, 17, 20, 23, 27, 31, 36, 43, 51}

// DamageDescriptor returns the 22-tier word for an absolute damage amount.
func DamageDescriptor(dmg int) string {
	word := damageWords[0]
	for i, floor := range damageFloors {
		if dmg >= floor {
			word = damageWords[i]
		}
	}
	return word
}

// HealthStatus describes hp as a share of maxHP.
func HealthStatus(hp, maxHP int) string {
	if maxHP <= 0 {
		return "Near Death"
	}
	if hp >= maxHP {
		return "Pristine"
	}
	pct := hp * 100 / maxHP
	switch {
	case pct >= 80:
		return "Scratched"
	case pct >= 60:
		return "Wounded"
	case pct >= 40:
		return "Battered"
	case pct >= 20:
		return "Critical"
	default:
		return "Near Death"
	}
}

// FatigueQualifier returns a suffix for narration, empty when rested.
func FatigueQualifier(fatigue, maxFatigue int) string {
	if maxFatigue <= 0 {
		return ""
	}
	switch pct := fatigue * 100 / maxFatigue; {
	case pct < 25:
		return "Exhausted"
	case pct < 50:
		return "Tired"
	default:
		return ""
	}
}

// BalanceDescription describes poise.
func BalanceDescription(balance float64) string {
	switch {
	case balance >= 0.9:
		return "solidly balanced"
	case balance >= 0.7:
		return "balanced"
	case balance >= 0.5:
		return "somewhat off balance"
	case balance >= 0.3:
		return "off balance"
	case balance >= 0.1:
		return "badly off balance"
	default:
		return "about to fall"
	}
}
