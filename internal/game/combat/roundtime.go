package combat

import "math"

// Roundtime is a per-entity action lock measured in seconds.
//
// Invariant: Apply never lowers Remaining.
type Roundtime struct {
	Remaining float64
	Total     float64
}

// Active reports whether the entity is locked.
func (r *Roundtime) Active() bool {
	return r.Remaining > 0
}

// Apply raises the lock to seconds if that is longer than what remains.
//
// Postcondition: Remaining is max(previous Remaining, seconds). Returns true
// when the lock changed.
func (r *Roundtime) Apply(seconds float64) bool {
	if seconds <= r.Remaining {
		return false
	}
	r.Remaining = seconds
	r.Total = seconds
	return true
}

// Tick counts the lock down by dt seconds.
func (r *Roundtime) Tick(dt float64) {
	if r.Remaining <= 0 {
		return
	}
	r.Remaining -= dt
	if r.Remaining <= 0 {
		r.Remaining = 0
		r.Total = 0
	}
}

// Seconds returns the remaining lock rounded up to whole seconds.
func (r *Roundtime) Seconds() int {
	return int(math.Ceil(r.Remaining))
}
