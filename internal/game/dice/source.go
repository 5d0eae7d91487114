package dice

import (
	crand "crypto/rand"
	"math/rand/v2"
	"sync"
)

// liveSource is the production Source: a ChaCha8 stream keyed from the
// operating system's entropy pool.
type liveSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSource returns an unpredictable Source for a running server.
//
// Postcondition: Every value returned by Intn is in [0, n).
func NewSource() Source {
	var seed [32]byte
	if _, err := crand.Read(seed[:]); err != nil {
		panic("dice: reading entropy: " + err.Error())
	}
	return &liveSource{rng: rand.New(rand.NewChaCha8(seed))}
}

// Intn returns a uniformly distributed int in [0, n).
//
// Precondition: n > 0. Panics otherwise.
func (s *liveSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}
