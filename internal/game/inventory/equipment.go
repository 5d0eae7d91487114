package inventory

// WeaponInstance is one wielded weapon: its definition plus its magazine.
type WeaponInstance struct {
	Def      *WeaponDef
	Magazine *Magazine // nil for weapons without ammunition
}

// NewWeaponInstance wields def with a full magazine when it takes one.
//
// Precondition: def must not be nil.
func NewWeaponInstance(def *WeaponDef) *WeaponInstance {
	wi := &WeaponInstance{Def: def}
	if def.IsRanged() {
		wi.Magazine = NewMagazine(def.MagazineCapacity)
	}
	return wi
}

// Equipment is what an entity fights with.
type Equipment struct {
	// MainHand is nil when the entity fights bare-handed.
	MainHand *WeaponInstance
	Armor    *ArmorDef
	// Reserve is spare ammunition, in rounds.
	Reserve int
}

// EmptyHanded reports whether brawling moves are available.
func (e *Equipment) EmptyHanded() bool {
	return e == nil || e.MainHand == nil
}

// Weapon returns the wielded definition, or nil when empty-handed.
func (e *Equipment) Weapon() *WeaponDef {
	if e.EmptyHanded() {
		return nil
	}
	return e.MainHand.Def
}

// WeaponName names the wielded weapon for narration.
func (e *Equipment) WeaponName() string {
	if w := e.Weapon(); w != nil {
		return w.Name
	}
	return "fists"
}

// ArmorValues returns the armor's defense and penalty, zero without armor.
func (e *Equipment) ArmorValues() (defense, penalty int) {
	if e == nil || e.Armor == nil {
		return 0, 0
	}
	return e.Armor.Defense, e.Armor.Penalty
}

// Reload refills the wielded magazine from Reserve.
//
// Postcondition: Returns the rounds loaded; zero when nothing was needed or
// the weapon takes no ammunition.
func (e *Equipment) Reload() int {
	if e.EmptyHanded() || e.MainHand.Magazine == nil {
		return 0
	}
	n := e.MainHand.Magazine.Reload(e.Reserve)
	e.Reserve -= n
	return n
}
