package character_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/mud-combat/internal/game/character"
	"github.com/cory-johannsen/mud-combat/internal/game/combat"
)

func TestNew_Defaults(t *testing.T) {
	p, err := character.New("Kai")
	require.NoError(t, err)
	assert.Equal(t, character.DefaultAgility, p.Agility)
	assert.Equal(t, character.DefaultMaxHP, p.MaxHP)
	assert.Equal(t, 1, p.Skills.Level("brawling"))
	assert.NoError(t, p.Validate())
	assert.Nil(t, p.WoundTable())
}

func TestNew_EmptyNameError(t *testing.T) {
	_, err := character.New("")
	require.Error(t, err)
}

func TestValidate_Rejects(t *testing.T) {
	p, err := character.New("Kai")
	require.NoError(t, err)
	p.Allocation = combat.DefenseAllocation{Evasion: 80, Parry: 40}
	p.MaxHP = 0
	p.Wounds[combat.Head] = combat.Wound{Level: 11}
	err = p.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_hp")
	assert.Contains(t, err.Error(), "allocation")
	assert.Contains(t, err.Error(), "head")
}

func TestWounds_RoundTrip(t *testing.T) {
	p, err := character.New("Kai")
	require.NoError(t, err)

	live := combat.NewWoundTable()
	live.ApplyWound(combat.RightArm, 6, false)
	live.ApplyWound(combat.Chest, 2, false)
	p.CaptureWounds(live)

	rebuilt := p.WoundTable()
	require.NotNil(t, rebuilt)
	assert.Equal(t, 6, rebuilt.Level(combat.RightArm))
	assert.True(t, rebuilt.Parts[combat.RightArm].Bleeding)
	assert.Equal(t, 3.0, rebuilt.ArmPenalty())

	// The rebuilt table must not alias the profile.
	rebuilt.ApplyWound(combat.Chest, 1, false)
	assert.Equal(t, 2, p.Wounds[combat.Chest].Level)

	p.CaptureWounds(nil)
	assert.Empty(t, p.Wounds)
}

func TestCaptureSkills_Copies(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		p, err := character.New("Kai")
		if err != nil {
			rt.Fatal(err)
		}
		live := combat.Skills{}
		xp := rapid.IntRange(0, 500).Draw(rt, "xp")
		live.Gain("katana", xp)
		p.CaptureSkills(live)
		live.Gain("katana", 100)
		if p.Skills["katana"].XP > xp {
			rt.Fatalf("captured skills alias the live map")
		}
	})
}
