package gameserver

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/mud-combat/internal/config"
	"github.com/cory-johannsen/mud-combat/internal/game/combat"
	"github.com/cory-johannsen/mud-combat/internal/game/dice"
	"github.com/cory-johannsen/mud-combat/internal/game/entity"
	"github.com/cory-johannsen/mud-combat/internal/game/inventory"
	"github.com/cory-johannsen/mud-combat/internal/game/world"
)

// recordingEmitter keeps everything the service sends.
type recordingEmitter struct {
	mu          sync.Mutex
	texts       map[combat.EntityID][]string
	events      map[combat.EntityID][]sentEvent
	disconnects map[combat.EntityID]string
}

type sentEvent struct {
	Name    string
	Payload any
}

func newRecordingEmitter() *recordingEmitter {
	return &recordingEmitter{
		texts:       make(map[combat.EntityID][]string),
		events:      make(map[combat.EntityID][]sentEvent),
		disconnects: make(map[combat.EntityID]string),
	}
}

func (r *recordingEmitter) SendText(id combat.EntityID, _ MessageKind, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts[id] = append(r.texts[id], text)
}

func (r *recordingEmitter) SendEvent(id combat.EntityID, event string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[id] = append(r.events[id], sentEvent{Name: event, Payload: payload})
}

func (r *recordingEmitter) Disconnect(id combat.EntityID, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disconnects[id] = reason
}

// saw reports whether id was sent a line containing substr.
func (r *recordingEmitter) saw(id combat.EntityID, substr string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.texts[id] {
		if strings.Contains(t, substr) {
			return true
		}
	}
	return false
}

// last returns the most recent event named name sent to id.
func (r *recordingEmitter) last(id combat.EntityID, name string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	evs := r.events[id]
	for i := len(evs) - 1; i >= 0; i-- {
		if evs[i].Name == name {
			return evs[i].Payload, true
		}
	}
	return nil, false
}

func (r *recordingEmitter) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = make(map[combat.EntityID][]string)
	r.events = make(map[combat.EntityID][]sentEvent)
}

// manualScheduler holds callbacks until the test fires them.
type manualScheduler struct {
	mu      sync.Mutex
	pending []*manualTimer
}

type manualTimer struct {
	d       time.Duration
	fn      func()
	stopped bool
}

func (t *manualTimer) Stop() { t.stopped = true }

func (m *manualScheduler) AfterFunc(d time.Duration, fn func()) combat.Stopper {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{d: d, fn: fn}
	m.pending = append(m.pending, t)
	return t
}

// fire runs the oldest live callback and reports its delay.
func (m *manualScheduler) fire() (time.Duration, bool) {
	m.mu.Lock()
	var next *manualTimer
	for len(m.pending) > 0 {
		t := m.pending[0]
		m.pending = m.pending[1:]
		if !t.stopped {
			next = t
			break
		}
	}
	m.mu.Unlock()
	if next == nil {
		return 0, false
	}
	next.fn()
	return next.d, true
}

// countingSource replays values and counts how many rolls were made.
type countingSource struct {
	mu     sync.Mutex
	values []int
	calls  int
}

func newCountingSource(values ...int) *countingSource {
	return &countingSource{values: values}
}

func (c *countingSource) Intn(n int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.values[c.calls%len(c.values)]
	c.calls++
	return v % n
}

func (c *countingSource) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

var (
	testKatana = &inventory.WeaponDef{
		ID: "katana", Name: "katana", Category: inventory.CategoryKatana, Damage: 8,
		Sync:    combat.SyncDifficulty{Speed: 1.2, ZoneSize: 2.5, Jitter: 0.1},
		MinTier: combat.Melee, MaxTier: combat.CloseQuarters, Roundtime: 3,
	}
	testPistol = &inventory.WeaponDef{
		ID: "pistol", Name: "pistol", Category: inventory.CategoryFirearm, Damage: 6, Range: 10, MagazineCapacity: 6,
		Sync:    combat.SyncDifficulty{Speed: 1.0, ZoneSize: 2.0, Jitter: 0.1},
		MinTier: combat.Missile, MaxTier: combat.Melee, Roundtime: 2,
	}
)

type harness struct {
	*Service
	emit  *recordingEmitter
	sched *manualScheduler
	clock time.Time
}

func (h *harness) advance(d time.Duration) { h.clock = h.clock.Add(d) }

// newHarness builds a service over two connected rooms: "dojo" and "alley".
func newHarness(t *testing.T, src dice.Source) *harness {
	t.Helper()
	zone := &world.Zone{
		ID:        "test",
		Name:      "Test",
		StartRoom: "dojo",
		Rooms: map[string]*world.Room{
			"dojo":  {ID: "dojo", ZoneID: "test", Title: "Dojo", Description: "Mats and paper walls.", Exits: []world.Exit{{Direction: world.North, TargetRoom: "alley"}}},
			"alley": {ID: "alley", ZoneID: "test", Title: "Alley", Description: "Wet concrete.", Exits: []world.Exit{{Direction: world.South, TargetRoom: "dojo"}}},
		},
	}
	mgr, err := world.NewManager([]*world.Zone{zone})
	require.NoError(t, err)
	items := inventory.NewRegistry()
	require.NoError(t, items.RegisterWeapon(testKatana))
	require.NoError(t, items.RegisterWeapon(testPistol))

	h := &harness{
		emit:  newRecordingEmitter(),
		sched: &manualScheduler{},
		clock: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	svc, err := NewService(Deps{
		Arena:     entity.NewArena(),
		World:     mgr,
		Items:     items,
		Roller:    dice.NewRoller(src, zap.NewNop()),
		Emitter:   h.emit,
		Scheduler: h.sched,
		Config: config.CombatConfig{
			TickInterval:     time.Second,
			ChallengeTimeout: 10 * time.Second,
			MomentumDecay:    combat.MomentumDecayPerSecond,
			BalanceRegen:     0.05,
			FatigueRegen:     1,
		},
		Logger: zap.NewNop(),
		Now:    func() time.Time { return h.clock },
	})
	require.NoError(t, err)
	h.Service = svc
	return h
}

type spawnOpt func(*entity.Spec)

func withWeapon(w *inventory.WeaponDef) spawnOpt {
	return func(s *entity.Spec) { s.Equipment = &inventory.Equipment{MainHand: inventory.NewWeaponInstance(w)} }
}

func withTier(t combat.Tier) spawnOpt {
	return func(s *entity.Spec) { s.Stats.Tier = t }
}

func withAgility(n int) spawnOpt {
	return func(s *entity.Spec) { s.Attributes.Agility = n }
}

func withHP(n int) spawnOpt {
	return func(s *entity.Spec) { s.Stats.HP, s.Stats.MaxHP = n, n }
}

func inRoom(room string) spawnOpt {
	return func(s *entity.Spec) { s.Position.RoomID = room }
}

func (h *harness) spawnPlayer(t *testing.T, id, name string, opts ...spawnOpt) *entity.Entity {
	t.Helper()
	spec := entity.Spec{
		Identity:   combat.Identity{ID: combat.EntityID(id), Name: name, Kind: combat.KindPlayer},
		Position:   combat.Position{RoomID: "dojo", ZoneID: "test"},
		Stats:      combat.NewCombatStats(30, 20),
		Attributes: combat.Attributes{Agility: 12, Strength: 10},
		Persona:    &combat.Persona{},
		Sequenced:  true,
	}
	for _, o := range opts {
		o(&spec)
	}
	e, err := h.arena.Spawn(spec)
	require.NoError(t, err)
	return e
}

func (h *harness) spawnNPC(t *testing.T, id, name string, aggressive bool, opts ...spawnOpt) *entity.Entity {
	t.Helper()
	spec := entity.Spec{
		Identity:   combat.Identity{ID: combat.EntityID(id), Name: name, Kind: combat.KindNPC},
		Position:   combat.Position{RoomID: "dojo", ZoneID: "test"},
		Stats:      combat.NewCombatStats(100, 20),
		Attributes: combat.Attributes{Agility: 12, Strength: 10},
		Brain:      &combat.NPCBrain{TemplateID: name, Aggressive: aggressive},
	}
	for _, o := range opts {
		o(&spec)
	}
	e, err := h.arena.Spawn(spec)
	require.NoError(t, err)
	return e
}
