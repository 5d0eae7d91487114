// Package npc loads NPC templates and spawns them into the arena.
package npc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/mud-combat/internal/game/combat"
)

// Template defines a reusable NPC archetype loaded from YAML.
type Template struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Keywords    []string `yaml:"keywords"`
	MaxHP       int      `yaml:"max_hp"`
	MaxFatigue  int      `yaml:"max_fatigue"`
	Agility     int      `yaml:"agility"`
	Strength    int      `yaml:"strength"`
	Defense     int      `yaml:"defense"`
	// Skills maps skill names to levels.
	Skills     map[string]int           `yaml:"skills"`
	Allocation combat.DefenseAllocation `yaml:"allocation"`
	// Weapon and Armor are inventory ids; empty means bare-handed or unarmored.
	Weapon     string `yaml:"weapon"`
	Armor      string `yaml:"armor"`
	Ammunition int    `yaml:"ammunition"`
	Aggressive bool   `yaml:"aggressive"`
	// Persona gives the NPC a digital form.
	Persona  bool     `yaml:"persona"`
	Stalking []string `yaml:"stalking"`
}

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff the template can be spawned.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("npc template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("npc template %q: name must not be empty", t.ID)
	}
	if t.MaxHP < 1 {
		return fmt.Errorf("npc template %q: max_hp must be >= 1", t.ID)
	}
	if t.MaxFatigue < 0 {
		return fmt.Errorf("npc template %q: max_fatigue must be >= 0", t.ID)
	}
	if !t.Allocation.Valid() {
		return fmt.Errorf("npc template %q: defense allocation must be non-negative and sum to at most 100", t.ID)
	}
	for name, lvl := range t.Skills {
		if lvl < 0 {
			return fmt.Errorf("npc template %q: skill %q must be >= 0", t.ID, name)
		}
	}
	return nil
}

// LoadTemplateFromBytes parses a single NPC template from raw YAML bytes.
//
// Postcondition: Returns a validated *Template, or an error.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("parsing template YAML: %w", err)
	}
	if tmpl.MaxFatigue == 0 {
		tmpl.MaxFatigue = 20
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// LoadTemplates reads all *.yaml files in dir and returns the parsed templates.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates or an error on the first parse or validate
// failure; on error, the partial result is discarded.
func LoadTemplates(dir string) ([]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading npc dir %q: %w", dir, err)
	}

	var templates []*Template
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}
