package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/mud-combat/internal/game/character"
	"github.com/cory-johannsen/mud-combat/internal/game/combat"
	"github.com/cory-johannsen/mud-combat/internal/storage/postgres"
	"github.com/cory-johannsen/mud-combat/internal/testutil"
)

func newRepo(t *testing.T) *postgres.ProfileRepository {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container tests skipped in -short mode")
	}
	pc := testutil.NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	return postgres.NewProfileRepository(pc.RawPool)
}

func TestProfileRepository(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	t.Run("missing profile", func(t *testing.T) {
		_, err := repo.LoadProfile(ctx, "nobody")
		assert.ErrorIs(t, err, postgres.ErrProfileNotFound)
	})

	t.Run("save then load round-trips jsonb columns", func(t *testing.T) {
		p, err := character.New("Kai")
		require.NoError(t, err)
		p.Skills["katana"] = combat.SkillProgress{Level: 3, XP: 12}
		p.Allocation = combat.DefenseAllocation{Evasion: 20, Parry: 60, Shield: 10}
		p.Wounds[combat.LeftArm] = combat.Wound{Level: 2, Bleeding: true}

		require.NoError(t, repo.SaveProfile(ctx, p))
		assert.NotZero(t, p.ID)
		assert.False(t, p.CreatedAt.IsZero())

		got, err := repo.LoadProfile(ctx, "Kai")
		require.NoError(t, err)
		assert.Equal(t, p.ID, got.ID)
		assert.Equal(t, 3, got.Skills.Level("katana"))
		assert.Equal(t, p.Allocation, got.Allocation)
		assert.Equal(t, combat.Wound{Level: 2, Bleeding: true}, got.Wounds[combat.LeftArm])
	})

	t.Run("save overwrites by name", func(t *testing.T) {
		p, err := repo.LoadProfile(ctx, "Kai")
		require.NoError(t, err)
		id := p.ID
		p.Agility = 15
		p.Wounds = nil

		require.NoError(t, repo.SaveProfile(ctx, p))
		got, err := repo.LoadProfile(ctx, "Kai")
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, 15, got.Agility)
		assert.Empty(t, got.Wounds)
	})

	t.Run("invalid profile rejected", func(t *testing.T) {
		p, err := character.New("Bad")
		require.NoError(t, err)
		p.MaxHP = 0
		assert.Error(t, repo.SaveProfile(ctx, p))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.DeleteProfile(ctx, "Kai"))
		assert.ErrorIs(t, repo.DeleteProfile(ctx, "Kai"), postgres.ErrProfileNotFound)
	})
}

func TestPool_HealthAndWatch(t *testing.T) {
	if testing.Short() {
		t.Skip("postgres container tests skipped in -short mode")
	}
	pc := testutil.NewPostgresContainer(t)
	require.NoError(t, pc.Pool.Health(context.Background(), 5*time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	changes := 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		pc.Pool.Watch(ctx, 20*time.Millisecond, time.Second, func(bool) { changes++ })
	}()
	time.Sleep(100 * time.Millisecond)
	cancel()
	<-done
	assert.Zero(t, changes, "a healthy database never changes state")
}
