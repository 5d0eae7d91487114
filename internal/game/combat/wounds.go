package combat

import (
	"fmt"
	"strings"
)

// BodyPart names a wound location.
type BodyPart string

const (
	Head     BodyPart = "head"
	Neck     BodyPart = "neck"
	Chest    BodyPart = "chest"
	Abdomen  BodyPart = "abdomen"
	Back     BodyPart = "back"
	RightArm BodyPart = "right arm"
	LeftArm  BodyPart = "left arm"
	RightLeg BodyPart = "right leg"
	LeftLeg  BodyPart = "left leg"
	Eyes     BodyPart = "eyes"
	// LogicProcessor and MemoryAddress are the cyberspace analogues.
	LogicProcessor BodyPart = "logic processor"
	MemoryAddress  BodyPart = "memory address"
)

// MaxWoundLevel is the most a single part can accumulate.
const MaxWoundLevel = 10

// StunWoundLevel is the head or processor level that stuns on impact.
const StunWoundLevel = 8

// PhysicalParts lists the body parts of a physical form in hit-table order.
var PhysicalParts = []BodyPart{Head, Neck, Chest, Abdomen, Back, RightArm, LeftArm, RightLeg, LeftLeg, Eyes}

// ParseBodyPart accepts the forms players type ("r arm", "right_arm", "rarm").
func ParseBodyPart(s string) (BodyPart, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, "_", " ")
	switch norm {
	case "r arm", "rarm", "right arm":
		return RightArm, true
	case "l arm", "larm", "left arm":
		return LeftArm, true
	case "r leg", "rleg", "right leg":
		return RightLeg, true
	case "l leg", "lleg", "left leg":
		return LeftLeg, true
	case "processor", "logic processor":
		return LogicProcessor, true
	case "memory", "memory address":
		return MemoryAddress, true
	}
	for _, p := range PhysicalParts {
		if string(p) == norm {
			return p, true
		}
	}
	return "", false
}

// Digital maps a physical part to its cyberspace analogue.
func (p BodyPart) Digital() BodyPart {
	switch p {
	case Head, Eyes, Neck, LogicProcessor:
		return LogicProcessor
	default:
		return MemoryAddress
	}
}

// IsArm reports whether p is an arm.
func (p BodyPart) IsArm() bool {
	return p == RightArm || p == LeftArm
}

// Wound is the injury state of one part.
type Wound struct {
	Level      int  `json:"level"`
	Prosthetic bool `json:"prosthetic"`
	Bleeding   bool `json:"bleeding"`
}

// WoundTable maps parts to their wounds. Parts never hit are absent.
type WoundTable struct {
	Parts map[BodyPart]*Wound
}

// NewWoundTable returns an empty table.
func NewWoundTable() *WoundTable {
	return &WoundTable{Parts: make(map[BodyPart]*Wound)}
}

// Level returns the wound level of p, zero when unhurt.
func (t *WoundTable) Level(p BodyPart) int {
	if w, ok := t.Parts[p]; ok {
		return w.Level
	}
	return 0
}

// ArmPenalty is subtracted from attacker power: half the worse arm's level.
func (t *WoundTable) ArmPenalty() float64 {
	worst := t.Level(RightArm)
	if l := t.Level(LeftArm); l > worst {
		worst = l
	}
	return float64(worst) / 2
}

// Wounded returns every part with a non-zero level, in hit-table order
// followed by the digital parts.
func (t *WoundTable) Wounded() []BodyPart {
	var out []BodyPart
	for _, p := range append(append([]BodyPart{}, PhysicalParts...), LogicProcessor, MemoryAddress) {
		if t.Level(p) > 0 {
			out = append(out, p)
		}
	}
	return out
}

// WoundResult describes one applied wound.
type WoundResult struct {
	Part    BodyPart
	Level   int
	Stunned bool
	// Penalty is narration for the functional effect, empty when none.
	Penalty string
}

// ApplyWound adds severity levels to part, mapping it to its digital
// analogue when digital is set.
//
// Precondition: severity > 0.
// Postcondition: The part's level is clamped at MaxWoundLevel. Levels of 5 or
// more on flesh start bleeding.
func (t *WoundTable) ApplyWound(part BodyPart, severity int, digital bool) WoundResult {
	if digital {
		part = part.Digital()
	}
	w, ok := t.Parts[part]
	if !ok {
		w = &Wound{}
		t.Parts[part] = w
	}
	w.Level += severity
	if w.Level > MaxWoundLevel {
		w.Level = MaxWoundLevel
	}
	if w.Level >= 5 && !w.Prosthetic && !digital {
		w.Bleeding = true
	}

	res := WoundResult{Part: part, Level: w.Level}
	switch {
	case (part == Head || part == LogicProcessor) && w.Level >= StunWoundLevel:
		res.Stunned = true
		res.Penalty = fmt.Sprintf("The blow to your %s leaves you reeling!", part)
	case part.IsArm():
		res.Penalty = fmt.Sprintf("Your wounded %s throws off your aim.", part)
	case part == Eyes && w.Level >= 5:
		res.Penalty = "Blood clouds your vision."
	}
	return res
}

// DescribeWound returns the narrative level of a wound.
func DescribeWound(level int) string {
	switch {
	case level >= 9:
		return "mangled"
	case level >= 7:
		return "badly wounded"
	case level >= 4:
		return "wounded"
	case level >= 1:
		return "bruised"
	default:
		return "unhurt"
	}
}
