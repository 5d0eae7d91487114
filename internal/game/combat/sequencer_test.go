package combat_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/mud-combat/internal/game/combat"
)

type manualTask struct {
	delay   time.Duration
	fn      func()
	stopped bool
}

func (t *manualTask) Stop() { t.stopped = true }

// manualScheduler queues callbacks until the test fires them.
type manualScheduler struct {
	mu    sync.Mutex
	tasks []*manualTask
}

func (s *manualScheduler) AfterFunc(d time.Duration, fn func()) combat.Stopper {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTask{delay: d, fn: fn}
	s.tasks = append(s.tasks, t)
	return t
}

func (s *manualScheduler) fireNext() bool {
	s.mu.Lock()
	var next *manualTask
	for len(s.tasks) > 0 {
		next, s.tasks = s.tasks[0], s.tasks[1:]
		if !next.stopped {
			break
		}
		next = nil
	}
	s.mu.Unlock()
	if next == nil {
		return false
	}
	next.fn()
	return true
}

func TestSequencer_BeginRejectsSecondRun(t *testing.T) {
	seq := combat.NewSequencer(&manualScheduler{})
	require.NoError(t, seq.Begin("p1", nil))
	assert.Equal(t, combat.StateExecuting, seq.State("p1"))
	assert.Error(t, seq.Begin("p1", nil))

	seq.Finish("p1")
	assert.Equal(t, combat.StateIdle, seq.State("p1"))
	assert.NoError(t, seq.Begin("p1", nil))
}

func TestSequencer_ComboMultiplier(t *testing.T) {
	seq := combat.NewSequencer(&manualScheduler{})
	assert.Equal(t, 1.0, seq.Multiplier("p1"))
	c := combat.Combos[0]
	require.NoError(t, seq.Begin("p1", &c))
	assert.Equal(t, 3.0, seq.Multiplier("p1"))
	seq.Finish("p1")
	assert.Equal(t, 1.0, seq.Multiplier("p1"))
}

func TestSequencer_ScheduleReplacesPendingStep(t *testing.T) {
	sched := &manualScheduler{}
	seq := combat.NewSequencer(sched)
	require.NoError(t, seq.Begin("p1", nil))

	var fired []string
	assert.True(t, seq.Schedule("p1", time.Second, func() { fired = append(fired, "first") }))
	assert.True(t, seq.Schedule("p1", time.Second, func() { fired = append(fired, "second") }))

	for sched.fireNext() {
	}
	assert.Equal(t, []string{"second"}, fired)
}

func TestSequencer_ScheduleRequiresExecuting(t *testing.T) {
	sched := &manualScheduler{}
	seq := combat.NewSequencer(sched)
	assert.False(t, seq.Schedule("p1", time.Second, func() {}))

	require.NoError(t, seq.Begin("p1", nil))
	called := false
	seq.Schedule("p1", time.Second, func() { called = true })
	seq.Finish("p1")
	for sched.fireNext() {
	}
	assert.False(t, called, "finished run must not fire its step")
}

func TestSequencer_Forget(t *testing.T) {
	seq := combat.NewSequencer(&manualScheduler{})
	require.NoError(t, seq.Begin("p1", nil))
	seq.Forget("p1")
	assert.Equal(t, combat.StateIdle, seq.State("p1"))
}
