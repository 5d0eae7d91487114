package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/mud-combat/internal/game/dice"
)

// TestSource_Intn_InRange verifies the postcondition:
// every value returned by Intn(6) is in [0, 6).
func TestSource_Intn_InRange(t *testing.T) {
	src := dice.NewSource()
	for i := 0; i < 1000; i++ {
		v := src.Intn(6)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 6)
	}
}

// TestSource_Intn_PanicsOnZero verifies the precondition:
// Intn panics when called with n <= 0.
func TestSource_Intn_PanicsOnZero(t *testing.T) {
	src := dice.NewSource()
	assert.Panics(t, func() { src.Intn(0) })
}

func TestSeededSource_Deterministic(t *testing.T) {
	a := dice.NewSeededSource(42)
	b := dice.NewSeededSource(42)
	for i := 0; i < 50; i++ {
		assert.Equal(t, a.Intn(100), b.Intn(100))
	}
}

func TestFixedSource_ReplaysModulo(t *testing.T) {
	src := dice.NewFixedSource(7, 205)
	assert.Equal(t, 7, src.Intn(101))
	assert.Equal(t, 3, src.Intn(101))
	assert.Equal(t, 7, src.Intn(101))
}

func TestRoller_BetweenInRange_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		lo := rapid.IntRange(-50, 50).Draw(rt, "lo")
		hi := lo + rapid.IntRange(0, 50).Draw(rt, "span")
		seed := rapid.Int64().Draw(rt, "seed")
		r := dice.NewRoller(dice.NewSeededSource(seed), zap.NewNop())
		v := r.Between("test", lo, hi)
		if v < lo || v > hi {
			rt.Fatalf("%d outside [%d,%d]", v, lo, hi)
		}
	})
}

func TestRoller_ChanceBounds(t *testing.T) {
	r := dice.NewRoller(dice.NewFixedSource(0), zap.NewNop())
	assert.False(t, r.Chance("never", 0))
	assert.True(t, r.Chance("always", 1))
	assert.True(t, r.Chance("likely", 0.5))

	r = dice.NewRoller(dice.NewFixedSource(9999), zap.NewNop())
	assert.False(t, r.Chance("unlikely", 0.5))
}

func TestRoller_LogsAtDebug(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := dice.NewRoller(dice.NewFixedSource(12), zap.New(core))
	assert.Equal(t, 12, r.Percentile("maneuver"))

	entries := logs.FilterMessage("dice roll").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "maneuver", entries[0].ContextMap()["label"])
	}
}
