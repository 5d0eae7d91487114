package combat

// Verb holds the second- and third-person forms of an attack verb.
type Verb struct {
	You  string
	They string
}

var moveVerbs = map[Move]Verb{
	MovePunch:    {"punch", "punches"},
	MoveJab:      {"jab", "jabs"},
	MoveHeadbutt: {"headbutt", "headbutts"},
	MoveUppercut: {"uppercut", "uppercuts"},
	MoveSlice:    {"slice", "slices"},
	MoveIaijutsu: {"draw and cut", "draws and cuts"},
	MoveSlash:    {"slash", "slashes"},
	MoveThrust:   {"thrust at", "thrusts at"},
}

var categoryVerbs = map[string]Verb{
	"brawling": {"punch", "punches"},
	"blade":    {"slash", "slashes"},
	"katana":   {"cut", "cuts"},
	"polearm":  {"lunge at", "lunges at"},
	"firearm":  {"shoot", "shoots"},
}

// VerbFor picks the verb for a move, falling back to the weapon category
// for generic attacks.
func VerbFor(m Move, category string) Verb {
	if v, ok := moveVerbs[m]; ok {
		return v
	}
	if v, ok := categoryVerbs[category]; ok {
		return v
	}
	return Verb{"strike", "strikes"}
}

// Severity returns the adverbial framing of a hit type.
func Severity(h HitType) string {
	switch h {
	case HitCrushing:
		return "with crushing force"
	case HitSolid:
		return "solidly"
	case HitMarginal:
		return "glancingly"
	default:
		return ""
	}
}

// MarkupTag returns the inline tag a line about h is wrapped in.
func MarkupTag(h HitType) string {
	switch h {
	case HitCrushing:
		return "combat-crit"
	case HitSolid, HitMarginal:
		return "combat-hit"
	default:
		return "combat"
	}
}
