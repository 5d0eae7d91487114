package combat

// SkillProgress is the level and experience of one skill.
type SkillProgress struct {
	Level int `json:"level"`
	XP    int `json:"xp"`
}

// Skills maps skill names (weapon categories) to progress.
type Skills map[string]SkillProgress

// Level returns the level of name, zero when untrained.
func (s Skills) Level(name string) int {
	return s[name].Level
}

// Gain awards xp to name and levels it up while xp >= 10×level.
//
// Postcondition: Returns the resulting level and whether it increased.
func (s Skills) Gain(name string, xp int) (int, bool) {
	p := s[name]
	if p.Level < 1 {
		p.Level = 1
	}
	start := p.Level
	p.XP += xp
	for p.XP >= 10*p.Level {
		p.XP -= 10 * p.Level
		p.Level++
	}
	s[name] = p
	return p.Level, p.Level > start
}
