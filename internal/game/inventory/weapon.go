// Package inventory provides weapon and armor definitions, their YAML
// loaders, and the per-entity equipment component.
package inventory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/mud-combat/internal/game/combat"
)

// Category groups weapons by the moves they allow and the skill they train.
type Category string

const (
	CategoryBrawling Category = "brawling"
	CategoryBlade    Category = "blade"
	CategoryKatana   Category = "katana"
	CategoryPolearm  Category = "polearm"
	CategoryFirearm  Category = "firearm"
)

var validCategories = map[Category]struct{}{
	CategoryBrawling: {},
	CategoryBlade:    {},
	CategoryKatana:   {},
	CategoryPolearm:  {},
	CategoryFirearm:  {},
}

// WeaponDef defines the static combat profile of a weapon loaded from YAML.
type WeaponDef struct {
	ID               string                `yaml:"id"`
	Name             string                `yaml:"name"`
	Category         Category              `yaml:"category"`
	Skill            string                `yaml:"skill"`  // defaults to the category
	Damage           int                   `yaml:"damage"` // base damage before hit scaling
	Range            int                   `yaml:"range"`  // 0 = melee
	MagazineCapacity int                   `yaml:"magazine_capacity"`
	Sync             combat.SyncDifficulty `yaml:"sync"`
	MinTier          combat.Tier           `yaml:"min_tier"`
	MaxTier          combat.Tier           `yaml:"max_tier"`
	Roundtime        float64               `yaml:"roundtime"` // seconds
}

// IsMelee reports whether the weapon strikes at melee range (Range == 0).
func (w *WeaponDef) IsMelee() bool {
	return w.Range == 0
}

// IsRanged reports whether the weapon consumes ammunition.
func (w *WeaponDef) IsRanged() bool {
	return w.MagazineCapacity > 0
}

// IsBlade reports whether slice, slash and thrust are available.
func (w *WeaponDef) IsBlade() bool {
	return w.Category == CategoryBlade || w.Category == CategoryKatana
}

// IsKatana reports whether the weapon builds momentum.
func (w *WeaponDef) IsKatana() bool {
	return w.Category == CategoryKatana
}

// InRange reports whether t lies within [MinTier, MaxTier].
func (w *WeaponDef) InRange(t combat.Tier) bool {
	return t >= w.MinTier && t <= w.MaxTier
}

// SkillName returns the skill trained by the weapon.
func (w *WeaponDef) SkillName() string {
	if w.Skill != "" {
		return w.Skill
	}
	return string(w.Category)
}

// Validate checks that the WeaponDef satisfies its invariants.
// Precondition: w is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (w *WeaponDef) Validate() error {
	var errs []error
	if w.ID == "" {
		errs = append(errs, errors.New("ID must not be empty"))
	}
	if w.Name == "" {
		errs = append(errs, errors.New("Name must not be empty"))
	}
	if _, ok := validCategories[w.Category]; !ok {
		errs = append(errs, fmt.Errorf("unknown category %q", w.Category))
	}
	if w.Damage <= 0 {
		errs = append(errs, errors.New("Damage must be > 0"))
	}
	if w.Category == CategoryFirearm && w.MagazineCapacity <= 0 {
		errs = append(errs, errors.New("firearm MagazineCapacity must be > 0"))
	}
	if w.MinTier > w.MaxTier {
		errs = append(errs, fmt.Errorf("min_tier %s is closer than max_tier %s", w.MinTier, w.MaxTier))
	}
	if w.Sync.Speed <= 0 || w.Sync.ZoneSize <= 0 {
		errs = append(errs, errors.New("sync speed and zone_size must be > 0"))
	}
	if w.Roundtime <= 0 {
		errs = append(errs, errors.New("Roundtime must be > 0"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("weapon validation failed: %v", errs)
	}
	return nil
}

// LoadWeapons reads all *.yaml files from dir, parses each as a WeaponDef,
// validates it, and returns the collected slice.
// Precondition: dir is a readable directory path.
// Postcondition: returns all valid WeaponDefs or the first encountered error.
func LoadWeapons(dir string) ([]*WeaponDef, error) {
	var weapons []*WeaponDef
	err := eachYAML(dir, func(path string, data []byte) error {
		var w WeaponDef
		if err := yaml.Unmarshal(data, &w); err != nil {
			return fmt.Errorf("cannot parse file %q: %w", path, err)
		}
		if err := w.Validate(); err != nil {
			return fmt.Errorf("invalid weapon in %q: %w", path, err)
		}
		weapons = append(weapons, &w)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("LoadWeapons: %w", err)
	}
	return weapons, nil
}

func eachYAML(dir string, fn func(path string, data []byte) error) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("cannot read directory %q: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("cannot read file %q: %w", path, err)
		}
		if err := fn(path, data); err != nil {
			return err
		}
	}
	return nil
}

var brawlingSync = combat.SyncDifficulty{Speed: 1.0, ZoneSize: 3.0, Jitter: 0.05}

// brawlingMoves are the bare-handed profiles, keyed by move.
var brawlingMoves = map[combat.Move]*WeaponDef{
	combat.MovePunch:    {ID: "fists", Name: "fists", Category: CategoryBrawling, Damage: 3, Sync: brawlingSync, MinTier: combat.Melee, MaxTier: combat.CloseQuarters, Roundtime: 3},
	combat.MoveJab:      {ID: "fists", Name: "fists", Category: CategoryBrawling, Damage: 2, Sync: combat.SyncDifficulty{Speed: 0.8, ZoneSize: 3.5, Jitter: 0.05}, MinTier: combat.Melee, MaxTier: combat.CloseQuarters, Roundtime: 2},
	combat.MoveHeadbutt: {ID: "forehead", Name: "forehead", Category: CategoryBrawling, Damage: 5, Sync: combat.SyncDifficulty{Speed: 1.3, ZoneSize: 2.0, Jitter: 0.1}, MinTier: combat.CloseQuarters, MaxTier: combat.CloseQuarters, Roundtime: 4},
	combat.MoveUppercut: {ID: "fists", Name: "fists", Category: CategoryBrawling, Damage: 6, Sync: combat.SyncDifficulty{Speed: 1.4, ZoneSize: 2.0, Jitter: 0.1}, MinTier: combat.Melee, MaxTier: combat.CloseQuarters, Roundtime: 4},
}

// Brawling returns the bare-handed profile for m. Generic attacks and
// unknown moves fall back to a punch.
func Brawling(m combat.Move) *WeaponDef {
	if w, ok := brawlingMoves[m]; ok {
		return w
	}
	return brawlingMoves[combat.MovePunch]
}
