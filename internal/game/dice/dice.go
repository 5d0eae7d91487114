// Package dice provides the randomness abstraction behind hit rolls,
// maneuver contests and NPC decisions.
package dice

import (
	"math/rand"
	"sync"
)

// Source is the randomness provider for every roll.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// seededSource is a deterministic Source for tests and replays.
type seededSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeededSource returns a deterministic Source.
//
// Postcondition: Two sources built from the same seed yield the same sequence.
func NewSeededSource(seed int64) Source {
	return &seededSource{rng: rand.New(rand.NewSource(seed))}
}

// Intn returns a pseudo-random int in [0, n).
//
// Precondition: n > 0. Panics otherwise.
func (s *seededSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

// fixedSource replays a script of values, cycling when exhausted.
type fixedSource struct {
	mu     sync.Mutex
	values []int
	next   int
}

// NewFixedSource returns a Source that replays values in order, each reduced
// modulo n. Used by tests to force specific outcomes.
//
// Precondition: len(values) > 0.
func NewFixedSource(values ...int) Source {
	return &fixedSource{values: values}
}

// Intn returns the next scripted value modulo n.
func (s *fixedSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.values[s.next%len(s.values)]
	s.next++
	if v < 0 {
		v = -v
	}
	return v % n
}
