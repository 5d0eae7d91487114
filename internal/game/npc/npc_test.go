package npc

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/mud-combat/internal/game/combat"
	"github.com/cory-johannsen/mud-combat/internal/game/entity"
	"github.com/cory-johannsen/mud-combat/internal/game/inventory"
	"github.com/cory-johannsen/mud-combat/internal/game/world"
)

const enforcerYAML = `id: yakuza_enforcer
name: a Yakuza enforcer
keywords: [yakuza, enforcer]
max_hp: 30
agility: 12
defense: 2
skills:
  katana: 4
allocation:
  evasion: 40
  parry: 40
weapon: katana
aggressive: true
stalking:
  - "%s circles you, blade low."
`

func registry(t *testing.T) *inventory.Registry {
	t.Helper()
	reg := inventory.NewRegistry()
	require.NoError(t, reg.RegisterWeapon(&inventory.WeaponDef{
		ID: "katana", Name: "a katana", Category: inventory.CategoryKatana, Damage: 8,
		Sync: combat.SyncDifficulty{Speed: 1, ZoneSize: 2}, MinTier: combat.Melee, MaxTier: combat.CloseQuarters, Roundtime: 3,
	}))
	return reg
}

func TestLoadTemplateFromBytes(t *testing.T) {
	tmpl, err := LoadTemplateFromBytes([]byte(enforcerYAML))
	require.NoError(t, err)
	assert.Equal(t, "yakuza_enforcer", tmpl.ID)
	assert.Equal(t, 20, tmpl.MaxFatigue)
	assert.Equal(t, 4, tmpl.Skills["katana"])
	assert.Equal(t, 40, tmpl.Allocation.Parry)
	assert.True(t, tmpl.Aggressive)
}

func TestTemplate_Validate(t *testing.T) {
	cases := map[string]string{
		"no id":          "name: x\nmax_hp: 1\n",
		"no name":        "id: x\nmax_hp: 1\n",
		"no hp":          "id: x\nname: x\n",
		"over allocated": "id: x\nname: x\nmax_hp: 1\nallocation: {evasion: 60, parry: 60}\n",
		"negative skill": "id: x\nname: x\nmax_hp: 1\nskills: {blade: -1}\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadTemplateFromBytes([]byte(body))
			assert.Error(t, err)
		})
	}
}

func TestLoadTemplates(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "enforcer.yaml"), []byte(enforcerYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("x"), 0o644))
	ts, err := LoadTemplates(dir)
	require.NoError(t, err)
	assert.Len(t, ts, 1)
}

func newSpawner(t *testing.T, arena *entity.Arena) *Spawner {
	t.Helper()
	tmpl, err := LoadTemplateFromBytes([]byte(enforcerYAML))
	require.NoError(t, err)
	s, err := NewSpawner(arena, registry(t), []*Template{tmpl}, zap.NewNop())
	require.NoError(t, err)
	n := 0
	s.newID = func() string {
		n++
		return fmt.Sprintf("%d", n)
	}
	return s
}

func TestSpawner_Spawn(t *testing.T) {
	arena := entity.NewArena()
	s := newSpawner(t, arena)
	room := &world.Room{ID: "noodle_bar", ZoneID: "neon_alley"}

	e, err := s.Spawn("yakuza_enforcer", room)
	require.NoError(t, err)
	assert.Equal(t, combat.EntityID("yakuza_enforcer-1"), e.ID)
	assert.True(t, e.IsNPC())
	assert.Equal(t, 30, e.Stats().HP)
	assert.Equal(t, 2, e.Stats().Defense)
	assert.Equal(t, 4, e.Skills().Level("katana"))
	assert.Equal(t, "a katana", e.Equipment().WeaponName())
	require.NotNil(t, e.Brain())
	assert.True(t, e.Brain().Aggressive)
	assert.Equal(t, "neon_alley", e.Position().ZoneID)
	assert.True(t, e.Matches("yakuza"))
	assert.Nil(t, e.Persona())

	_, err = s.Spawn("ghost", room)
	assert.Error(t, err)
}

func TestNewSpawner_RejectsUnknownGear(t *testing.T) {
	tmpl := &Template{ID: "x", Name: "x", MaxHP: 1, Weapon: "railgun"}
	_, err := NewSpawner(entity.NewArena(), registry(t), []*Template{tmpl}, zap.NewNop())
	assert.Error(t, err)
}

func TestSpawner_PopulateTopsUp(t *testing.T) {
	arena := entity.NewArena()
	s := newSpawner(t, arena)
	rooms := []*world.Room{{
		ID:     "noodle_bar",
		Spawns: []world.Spawn{{Template: "yakuza_enforcer", Count: 2}},
	}}

	ids, err := s.Populate(rooms)
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	arena.Remove(ids[0])
	ids, err = s.Populate(rooms)
	require.NoError(t, err)
	assert.Len(t, ids, 1)
	assert.Len(t, arena.InRoom("noodle_bar"), 2)
}
