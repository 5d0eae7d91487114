package gameserver

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/mud-combat/internal/game/character"
	"github.com/cory-johannsen/mud-combat/internal/game/combat"
	"github.com/cory-johannsen/mud-combat/internal/storage/postgres"
)

type memProfiles struct {
	mu      sync.Mutex
	byName  map[string]*character.Profile
	loadErr error
}

func newMemProfiles() *memProfiles {
	return &memProfiles{byName: make(map[string]*character.Profile)}
}

func (m *memProfiles) LoadProfile(_ context.Context, name string) (*character.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	p, ok := m.byName[name]
	if !ok {
		return nil, postgres.ErrProfileNotFound
	}
	out := *p
	return &out, nil
}

func (m *memProfiles) SaveProfile(_ context.Context, p *character.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := *p
	m.byName[p.Name] = &out
	return nil
}

func (m *memProfiles) get(name string) (*character.Profile, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byName[name]
	return p, ok
}

func TestJoin_NewPlayerGetsDefaultsAndRoom(t *testing.T) {
	h := newHarness(t, newCountingSource(50))
	store := newMemProfiles()
	h.profiles = store

	id, err := h.Join(context.Background(), "player-1", "Kai")
	require.NoError(t, err)
	assert.Equal(t, combat.EntityID("player-1"), id)

	e, ok := h.arena.Get(id)
	require.True(t, ok)
	assert.Equal(t, "dojo", e.Position().RoomID)
	assert.Equal(t, character.DefaultMaxHP, e.Stats().MaxHP)
	assert.Equal(t, character.DefaultAllocation, e.Stats().Allocation)
	assert.NotNil(t, e.Buffer())
	assert.NotNil(t, e.Persona())
	assert.True(t, h.emit.saw(id, "Welcome, Kai."))
	_, ok = h.emit.last(id, EventBufferUpdate)
	assert.True(t, ok)
}

func TestJoin_RestoresStoredProfile(t *testing.T) {
	h := newHarness(t, newCountingSource(50))
	store := newMemProfiles()
	h.profiles = store
	p, err := character.New("Kai")
	require.NoError(t, err)
	p.Agility = 17
	p.Wounds[combat.Head] = combat.Wound{Level: 2}
	require.NoError(t, store.SaveProfile(context.Background(), p))

	id, err := h.Join(context.Background(), "", "Kai")
	require.NoError(t, err)

	e, _ := h.arena.Get(id)
	assert.Equal(t, 17, e.Attributes().Agility)
	require.NotNil(t, e.Wounds())
	assert.Contains(t, string(id), "player-")
}

func TestJoin_RejectsDuplicateName(t *testing.T) {
	h := newHarness(t, newCountingSource(50))
	_, err := h.Join(context.Background(), "", "Kai")
	require.NoError(t, err)

	_, err = h.Join(context.Background(), "", "Kai")
	assert.ErrorIs(t, err, ErrAlreadyConnected)
}

func TestJoin_StoreFailureIsReturned(t *testing.T) {
	h := newHarness(t, newCountingSource(50))
	store := newMemProfiles()
	store.loadErr = errors.New("connection refused")
	h.profiles = store

	_, err := h.Join(context.Background(), "", "Kai")
	assert.ErrorContains(t, err, "connection refused")
}

func TestLeave_SavesCapturedProfile(t *testing.T) {
	h := newHarness(t, newCountingSource(50))
	store := newMemProfiles()
	h.profiles = store
	id, err := h.Join(context.Background(), "", "Kai")
	require.NoError(t, err)
	e, _ := h.arena.Get(id)
	e.Skills()["katana"] = combat.SkillProgress{Level: 4}

	require.NoError(t, h.Leave(context.Background(), id))

	_, ok := h.arena.Get(id)
	assert.False(t, ok)
	saved, ok := store.get("Kai")
	require.True(t, ok)
	assert.Equal(t, 4, saved.Skills.Level("katana"))
	assert.ErrorIs(t, h.Leave(context.Background(), id), ErrUnknownEntity)
}

func TestLeave_UnhooksPursuers(t *testing.T) {
	h := newHarness(t, newCountingSource(50))
	p := h.spawnPlayer(t, "p1", "Kai")
	npc := h.spawnNPC(t, "n1", "ganger", true)
	engaged(npc, p, combat.Melee)

	require.NoError(t, h.Leave(context.Background(), p.ID))

	assert.Empty(t, npc.Stats().TargetID)
	assert.Equal(t, combat.Disengaged, npc.Stats().Tier)
}

func TestSaveAll_PersistsEveryPlayer(t *testing.T) {
	h := newHarness(t, newCountingSource(50))
	store := newMemProfiles()
	h.profiles = store
	for _, name := range []string{"Kai", "Rin"} {
		_, err := h.Join(context.Background(), "", name)
		require.NoError(t, err)
	}

	require.NoError(t, h.SaveAll(context.Background()))

	for _, name := range []string{"Kai", "Rin"} {
		_, ok := store.get(name)
		assert.True(t, ok, name)
	}
}

func TestSnapshot_ListsInSpawnOrder(t *testing.T) {
	h := newHarness(t, newCountingSource(50))
	h.spawnPlayer(t, "p1", "Kai")
	npc := h.spawnNPC(t, "n1", "ganger", false)
	npc.EnsureMomentum().Gain(10)

	views := h.Snapshot()

	require.Len(t, views, 2)
	assert.Equal(t, combat.EntityID("p1"), views[0].ID)
	assert.Equal(t, combat.EntityID("n1"), views[1].ID)
	assert.Equal(t, 10.0, views[1].Momentum)
	assert.Empty(t, views[0].Challenge)
}

func TestSnapshot_ShowsOpenChallenge(t *testing.T) {
	h := newHarness(t, newCountingSource(50))
	p, _ := duelists(t, h)
	require.NoError(t, h.HandleCommand(p.ID, "attack thug"))

	views := h.Snapshot()

	require.Len(t, views, 2)
	assert.Equal(t, "attack", views[0].Challenge)
	assert.Empty(t, views[1].Challenge)
}

func TestNewService_RejectsUnknownActionDelay(t *testing.T) {
	_, err := actionDelays(map[string]time.Duration{"cartwheel": time.Second})
	assert.Error(t, err)

	got, err := actionDelays(map[string]time.Duration{"stumble": 2 * time.Second, "slash": time.Second})
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, got[combat.ActionStumble])
	assert.Equal(t, time.Second, got[combat.ActionSlash])
	assert.Equal(t, combat.DefaultDelays[combat.ActionThrust], got[combat.ActionThrust])
}
