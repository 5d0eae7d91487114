package inventory

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ArmorDef defines the defensive profile of a suit of armor loaded from YAML.
type ArmorDef struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// Defense is added to defender power.
	Defense int `yaml:"defense"`
	// Penalty is subtracted from defender power for bulk.
	Penalty int `yaml:"penalty"`
}

// Validate reports an error if the ArmorDef is missing required fields or contains illegal values.
// Precondition: def is non-nil.
// Postcondition: Returns nil iff the def is well-formed.
func (a *ArmorDef) Validate() error {
	var errs []error
	if a.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if a.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if a.Defense < 0 {
		errs = append(errs, errors.New("defense must be >= 0"))
	}
	if a.Penalty < 0 {
		errs = append(errs, errors.New("penalty must be >= 0"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("armor validation failed: %v", errs)
	}
	return nil
}

// LoadArmors reads all .yaml files in dir and returns parsed ArmorDef slice.
// Precondition: dir must be a readable directory.
// Postcondition: Returns non-nil slice and nil error on success; all returned defs pass Validate.
func LoadArmors(dir string) ([]*ArmorDef, error) {
	armors := []*ArmorDef{}
	err := eachYAML(dir, func(path string, data []byte) error {
		var a ArmorDef
		if err := yaml.Unmarshal(data, &a); err != nil {
			return fmt.Errorf("cannot parse file %q: %w", path, err)
		}
		if err := a.Validate(); err != nil {
			return fmt.Errorf("invalid armor in %q: %w", path, err)
		}
		armors = append(armors, &a)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("LoadArmors: %w", err)
	}
	return armors, nil
}
