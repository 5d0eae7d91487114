package combat

import (
	"sync"
	"time"
)

// Stopper cancels a scheduled callback.
type Stopper interface {
	Stop()
}

// Scheduler runs a callback after a delay on another goroutine.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Stopper
}

// ActionTimer fires a callback after a configurable duration unless stopped.
// It is safe for concurrent use.
type ActionTimer struct {
	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// NewActionTimer creates and starts a timer that calls onFire after duration.
// onFire is called in a separate goroutine.
//
// Precondition: duration >= 0; onFire must not be nil.
// Postcondition: onFire will be called unless Stop is called first.
func NewActionTimer(duration time.Duration, onFire func()) *ActionTimer {
	at := &ActionTimer{}
	at.mu.Lock()
	at.timer = time.AfterFunc(duration, func() {
		at.mu.Lock()
		stopped := at.stopped
		at.mu.Unlock()
		if !stopped {
			onFire()
		}
	})
	at.mu.Unlock()
	return at
}

// Stop prevents the callback from firing. Safe to call multiple times.
//
// Postcondition: onFire will not be called after Stop returns unless it had
// already started.
func (at *ActionTimer) Stop() {
	at.mu.Lock()
	defer at.mu.Unlock()
	at.stopped = true
	if at.timer != nil {
		at.timer.Stop()
	}
}

// WallClock schedules on real timers.
type WallClock struct{}

// AfterFunc starts an ActionTimer.
func (WallClock) AfterFunc(d time.Duration, fn func()) Stopper {
	return NewActionTimer(d, fn)
}
