package combat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/looplab/fsm"
)

// Sequencer run states.
const (
	StateIdle      = "idle"
	StateExecuting = "executing"
)

const (
	eventUpload   = "upload"
	eventComplete = "complete"
)

// run is one entity's execution state machine plus the single timer it owns.
type run struct {
	machine *fsm.FSM
	combo   *Combo
	pending Stopper
	// step increments on every schedule so a late callback from a replaced
	// timer can recognise itself as stale.
	step uint64
}

// Sequencer owns the Idle → Executing → Idle machine for every entity that
// uploads a buffer. At most one run per entity can be executing, and each run
// holds at most one pending timer.
type Sequencer struct {
	mu        sync.Mutex
	runs      map[EntityID]*run
	scheduler Scheduler
}

// NewSequencer creates a Sequencer that schedules steps on s.
//
// Precondition: s must not be nil.
func NewSequencer(s Scheduler) *Sequencer {
	return &Sequencer{runs: make(map[EntityID]*run), scheduler: s}
}

func newRunMachine() *fsm.FSM {
	return fsm.NewFSM(
		StateIdle,
		fsm.Events{
			{Name: eventUpload, Src: []string{StateIdle}, Dst: StateExecuting},
			{Name: eventComplete, Src: []string{StateExecuting}, Dst: StateIdle},
		},
		fsm.Callbacks{},
	)
}

// Begin moves id from idle to executing.
//
// Postcondition: Returns an error, and changes nothing, when id is already
// executing.
func (s *Sequencer) Begin(id EntityID, combo *Combo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runs[id]
	if !ok {
		r = &run{machine: newRunMachine()}
		s.runs[id] = r
	}
	if err := r.machine.Event(context.Background(), eventUpload); err != nil {
		return fmt.Errorf("sequencer %s: %w", id, err)
	}
	r.combo = combo
	return nil
}

// Schedule arranges for fn to run after d, replacing any step still pending
// for id. fn receives no arguments; it runs on the scheduler's goroutine.
//
// Postcondition: Returns false and schedules nothing when id is not executing.
func (s *Sequencer) Schedule(id EntityID, d time.Duration, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runs[id]
	if !ok || r.machine.Current() != StateExecuting {
		return false
	}
	if r.pending != nil {
		r.pending.Stop()
	}
	r.step++
	step := r.step
	r.pending = s.scheduler.AfterFunc(d, func() {
		if !s.owns(id, step) {
			return
		}
		fn()
	})
	return true
}

func (s *Sequencer) owns(id EntityID, step uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runs[id]
	return ok && r.step == step && r.machine.Current() == StateExecuting
}

// Finish returns id to idle and cancels its pending step.
func (s *Sequencer) Finish(id EntityID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runs[id]
	if !ok {
		return
	}
	if r.pending != nil {
		r.pending.Stop()
		r.pending = nil
	}
	r.step++
	r.combo = nil
	if r.machine.Current() == StateExecuting {
		_ = r.machine.Event(context.Background(), eventComplete)
	}
}

// Forget finishes id and drops its machine; used when the entity leaves the arena.
func (s *Sequencer) Forget(id EntityID) {
	s.Finish(id)
	s.mu.Lock()
	delete(s.runs, id)
	s.mu.Unlock()
}

// State returns StateIdle or StateExecuting.
func (s *Sequencer) State(id EntityID) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.runs[id]; ok {
		return r.machine.Current()
	}
	return StateIdle
}

// Combo returns the combo detected at upload, or nil.
func (s *Sequencer) Combo(id EntityID) *Combo {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.runs[id]; ok {
		return r.combo
	}
	return nil
}

// Multiplier returns the damage multiplier of id's current run.
func (s *Sequencer) Multiplier(id EntityID) float64 {
	if c := s.Combo(id); c != nil {
		return c.Multiplier
	}
	return 1.0
}
