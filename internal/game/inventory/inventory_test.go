package inventory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/mud-combat/internal/game/combat"
)

const katanaYAML = `id: katana
name: a monomolecular katana
category: katana
damage: 8
sync:
  speed: 1.2
  zone_size: 2.5
  jitter: 0.1
min_tier: melee
max_tier: close_quarters
roundtime: 3
`

const pistolYAML = `id: heavy_pistol
name: a heavy pistol
category: firearm
damage: 7
range: 30
magazine_capacity: 8
sync:
  speed: 1.0
  zone_size: 3
min_tier: missile
max_tier: melee
roundtime: 2
`

const vestYAML = `id: kevlar_vest
name: kevlar vest
defense: 4
penalty: 1
`

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func TestLoadWeapons(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"katana.yaml": katanaYAML,
		"pistol.yaml": pistolYAML,
		"README.md":   "ignored",
	})
	ws, err := LoadWeapons(dir)
	require.NoError(t, err)
	require.Len(t, ws, 2)

	byID := map[string]*WeaponDef{}
	for _, w := range ws {
		byID[w.ID] = w
	}
	k := byID["katana"]
	require.NotNil(t, k)
	assert.True(t, k.IsKatana())
	assert.True(t, k.IsBlade())
	assert.True(t, k.IsMelee())
	assert.Equal(t, combat.Melee, k.MinTier)
	assert.Equal(t, combat.CloseQuarters, k.MaxTier)
	assert.Equal(t, "katana", k.SkillName())

	p := byID["heavy_pistol"]
	require.NotNil(t, p)
	assert.True(t, p.IsRanged())
	assert.False(t, p.IsMelee())
	assert.True(t, p.InRange(combat.Polearm))
	assert.False(t, p.InRange(combat.CloseQuarters))
}

func TestLoadWeapons_RejectsInvalid(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"bad.yaml": "id: x\nname: x\ncategory: spoon\ndamage: 1\nsync: {speed: 1, zone_size: 1}\nroundtime: 1\n",
	})
	_, err := LoadWeapons(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown category")
}

func TestLoadWeapons_RejectsBadTier(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"bad.yaml": "id: x\nname: x\ncategory: blade\ndamage: 1\nmin_tier: orbit\nsync: {speed: 1, zone_size: 1}\nroundtime: 1\n",
	})
	_, err := LoadWeapons(dir)
	assert.Error(t, err)
}

func TestWeaponDef_ValidateFirearmNeedsMagazine(t *testing.T) {
	w := &WeaponDef{ID: "g", Name: "g", Category: CategoryFirearm, Damage: 1,
		Sync: combat.SyncDifficulty{Speed: 1, ZoneSize: 1}, Roundtime: 1}
	assert.Error(t, w.Validate())
	w.MagazineCapacity = 6
	assert.NoError(t, w.Validate())
}

func TestLoadArmors(t *testing.T) {
	dir := writeFiles(t, map[string]string{"vest.yaml": vestYAML})
	as, err := LoadArmors(dir)
	require.NoError(t, err)
	require.Len(t, as, 1)
	assert.Equal(t, 4, as[0].Defense)
	assert.Equal(t, 1, as[0].Penalty)
}

func TestLoadArmors_MissingDir(t *testing.T) {
	_, err := LoadArmors(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestBrawling(t *testing.T) {
	assert.Equal(t, 3, Brawling(combat.MovePunch).Damage)
	assert.Equal(t, 2, Brawling(combat.MoveJab).Damage)
	head := Brawling(combat.MoveHeadbutt)
	assert.True(t, head.InRange(combat.CloseQuarters))
	assert.False(t, head.InRange(combat.Melee))
	assert.Equal(t, Brawling(combat.MovePunch), Brawling(combat.MoveAttack))
}

func TestMagazine(t *testing.T) {
	m := NewMagazine(2)
	require.NoError(t, m.Consume())
	require.NoError(t, m.Consume())
	assert.True(t, m.IsEmpty())
	assert.ErrorIs(t, m.Consume(), ErrEmptyMagazine)
	assert.Equal(t, 0, m.Loaded)

	assert.Equal(t, 1, m.Reload(1))
	assert.Equal(t, 1, m.Reload(10))
	assert.Equal(t, 2, m.Loaded)
	assert.Equal(t, 0, m.Reload(10))
}

func TestNewMagazine_PanicsOnZero(t *testing.T) {
	assert.Panics(t, func() { NewMagazine(0) })
}

func TestMagazine_ReloadProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		capacity := rapid.IntRange(1, 30).Draw(rt, "capacity")
		fired := rapid.IntRange(0, capacity).Draw(rt, "fired")
		reserve := rapid.IntRange(0, 60).Draw(rt, "reserve")
		m := NewMagazine(capacity)
		for i := 0; i < fired; i++ {
			_ = m.Consume()
		}
		n := m.Reload(reserve)
		if n < 0 || n > reserve {
			rt.Fatalf("reload took %d of %d", n, reserve)
		}
		if m.Loaded > m.Capacity {
			rt.Fatalf("loaded %d exceeds capacity %d", m.Loaded, m.Capacity)
		}
	})
}

func TestRegistry_Equip(t *testing.T) {
	reg := NewRegistry()
	wdir := writeFiles(t, map[string]string{"katana.yaml": katanaYAML, "pistol.yaml": pistolYAML})
	adir := writeFiles(t, map[string]string{"vest.yaml": vestYAML})
	require.NoError(t, reg.Load(wdir, adir))

	ids := []string{}
	for _, w := range reg.AllWeapons() {
		ids = append(ids, w.ID)
	}
	assert.Equal(t, []string{"heavy_pistol", "katana"}, ids)

	eq, err := reg.Equip("heavy_pistol", "kevlar_vest", 5)
	require.NoError(t, err)
	assert.False(t, eq.EmptyHanded())
	require.NotNil(t, eq.MainHand.Magazine)
	assert.Equal(t, 8, eq.MainHand.Magazine.Loaded)
	def, pen := eq.ArmorValues()
	assert.Equal(t, 4, def)
	assert.Equal(t, 1, pen)

	for i := 0; i < 3; i++ {
		require.NoError(t, eq.MainHand.Magazine.Consume())
	}
	assert.Equal(t, 3, eq.Reload())
	assert.Equal(t, 2, eq.Reserve)

	_, err = reg.Equip("spork", "", 0)
	assert.Error(t, err)
	_, err = reg.Equip("", "tutu", 0)
	assert.Error(t, err)
}

func TestRegistry_DuplicateRejected(t *testing.T) {
	reg := NewRegistry()
	w := &WeaponDef{ID: "k", Name: "k"}
	require.NoError(t, reg.RegisterWeapon(w))
	assert.Error(t, reg.RegisterWeapon(w))
	a := &ArmorDef{ID: "a", Name: "a"}
	require.NoError(t, reg.RegisterArmor(a))
	assert.Error(t, reg.RegisterArmor(a))
}

func TestEquipment_EmptyHanded(t *testing.T) {
	var nilEq *Equipment
	assert.True(t, nilEq.EmptyHanded())
	assert.Equal(t, "fists", nilEq.WeaponName())
	d, p := nilEq.ArmorValues()
	assert.Zero(t, d)
	assert.Zero(t, p)

	eq := &Equipment{}
	assert.Nil(t, eq.Weapon())
	assert.Equal(t, 0, eq.Reload())
}
