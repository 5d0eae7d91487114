package combat

// Combo is a named action sequence that multiplies the damage of every
// action drawn from a buffer whose contents match it exactly.
type Combo struct {
	Name       string
	Sequence   []ActionKind
	Multiplier float64
}

// Combos lists the recognised sequences.
var Combos = []Combo{
	{Name: "CRITICAL EXECUTION", Sequence: []ActionKind{ActionDash, ActionDash, ActionSlash}, Multiplier: 3.0},
	{Name: "RIPOSTE", Sequence: []ActionKind{ActionParry, ActionSlash, ActionThrust}, Multiplier: 2.5},
	{Name: "TRIPLE STRIKE", Sequence: []ActionKind{ActionSlash, ActionSlash, ActionSlash}, Multiplier: 2.0},
}

// DetectCombo matches the whole queue against Combos.
//
// Postcondition: Returns (combo, true) only when the queue's kinds equal a
// combo's sequence element for element.
func DetectCombo(actions []QueuedAction) (Combo, bool) {
	for _, c := range Combos {
		if len(c.Sequence) != len(actions) {
			continue
		}
		match := true
		for i, k := range c.Sequence {
			if actions[i].Kind != k {
				match = false
				break
			}
		}
		if match {
			return c, true
		}
	}
	return Combo{}, false
}
