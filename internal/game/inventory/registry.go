package inventory

import (
	"fmt"
	"sort"
)

// Registry holds all loaded weapon and armor definitions indexed by ID.
type Registry struct {
	weapons map[string]*WeaponDef
	armors  map[string]*ArmorDef
}

// NewRegistry returns an empty Registry.
//
// Postcondition: all internal maps are initialised.
func NewRegistry() *Registry {
	return &Registry{
		weapons: make(map[string]*WeaponDef),
		armors:  make(map[string]*ArmorDef),
	}
}

// RegisterWeapon adds w to the registry.
//
// Precondition:  w must not be nil.
// Postcondition: Weapon(w.ID) returns w; returns error if w.ID already registered.
func (r *Registry) RegisterWeapon(w *WeaponDef) error {
	if _, exists := r.weapons[w.ID]; exists {
		return fmt.Errorf("inventory: Registry.RegisterWeapon: weapon ID %q already registered", w.ID)
	}
	r.weapons[w.ID] = w
	return nil
}

// RegisterArmor adds a to the registry.
//
// Precondition:  a must not be nil.
// Postcondition: Armor(a.ID) returns a; returns error if a.ID already registered.
func (r *Registry) RegisterArmor(a *ArmorDef) error {
	if _, exists := r.armors[a.ID]; exists {
		return fmt.Errorf("inventory: Registry.RegisterArmor: armor ID %q already registered", a.ID)
	}
	r.armors[a.ID] = a
	return nil
}

// Weapon returns the WeaponDef for the given id, or nil if not found.
func (r *Registry) Weapon(id string) *WeaponDef {
	return r.weapons[id]
}

// Armor returns the ArmorDef for the given id, or nil if not found.
func (r *Registry) Armor(id string) *ArmorDef {
	return r.armors[id]
}

// AllWeapons returns every registered weapon sorted by ID.
func (r *Registry) AllWeapons() []*WeaponDef {
	out := make([]*WeaponDef, 0, len(r.weapons))
	for _, w := range r.weapons {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Equip builds an Equipment from content ids. Empty ids mean none.
//
// Postcondition: Returns an error naming the first unknown id.
func (r *Registry) Equip(weaponID, armorID string, reserve int) (*Equipment, error) {
	eq := &Equipment{Reserve: reserve}
	if weaponID != "" {
		def := r.Weapon(weaponID)
		if def == nil {
			return nil, fmt.Errorf("inventory: unknown weapon %q", weaponID)
		}
		eq.MainHand = NewWeaponInstance(def)
	}
	if armorID != "" {
		a := r.Armor(armorID)
		if a == nil {
			return nil, fmt.Errorf("inventory: unknown armor %q", armorID)
		}
		eq.Armor = a
	}
	return eq, nil
}

// Load registers every weapon and armor definition found in the two dirs.
// Either dir may be empty to skip it.
func (r *Registry) Load(weaponsDir, armorDir string) error {
	if weaponsDir != "" {
		ws, err := LoadWeapons(weaponsDir)
		if err != nil {
			return err
		}
		for _, w := range ws {
			if err := r.RegisterWeapon(w); err != nil {
				return err
			}
		}
	}
	if armorDir != "" {
		as, err := LoadArmors(armorDir)
		if err != nil {
			return err
		}
		for _, a := range as {
			if err := r.RegisterArmor(a); err != nil {
				return err
			}
		}
	}
	return nil
}
