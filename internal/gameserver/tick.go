package gameserver

import (
	"context"
	"sync"
	"time"
)

// Ticker drives the world tick: it calls fn once per interval with the time
// that actually elapsed since the previous call.
//
// Invariant: fn is never invoked concurrently with itself.
type Ticker struct {
	interval time.Duration
	fn       func(dt time.Duration)

	mu   sync.Mutex
	done chan struct{}
}

// NewTicker returns a ticker that calls fn every interval.
//
// Precondition: interval must be > 0 and fn non-nil.
func NewTicker(interval time.Duration, fn func(dt time.Duration)) *Ticker {
	if interval <= 0 {
		panic("gameserver.NewTicker: interval must be > 0")
	}
	if fn == nil {
		panic("gameserver.NewTicker: fn must not be nil")
	}
	return &Ticker{interval: interval, fn: fn}
}

// Start begins the tick loop. Runs until ctx is cancelled.
//
// Postcondition: A second Start while the loop runs does nothing.
func (t *Ticker) Start(ctx context.Context) {
	t.mu.Lock()
	if t.done != nil {
		t.mu.Unlock()
		return
	}
	done := make(chan struct{})
	t.done = done
	t.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		last := time.Now()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				t.fn(now.Sub(last))
				last = now
			}
		}
	}()
}

// Done is closed once the loop has exited. It is nil before Start.
func (t *Ticker) Done() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}
