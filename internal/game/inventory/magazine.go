package inventory

import (
	"errors"
	"fmt"
)

// ErrEmptyMagazine is returned when a firearm is fired dry.
var ErrEmptyMagazine = errors.New("inventory: magazine empty")

// Magazine tracks loaded round count for one firearm instance.
// Invariant: 0 <= Loaded <= Capacity.
type Magazine struct {
	Loaded   int
	Capacity int
}

// NewMagazine returns a fully loaded Magazine.
//
// Precondition:  capacity > 0 (panics otherwise).
// Postcondition: Loaded == Capacity == capacity.
func NewMagazine(capacity int) *Magazine {
	if capacity <= 0 {
		panic(fmt.Sprintf("inventory: NewMagazine: capacity must be > 0, got %d", capacity))
	}
	return &Magazine{Loaded: capacity, Capacity: capacity}
}

// IsEmpty returns true when Loaded <= 0.
func (m *Magazine) IsEmpty() bool {
	return m.Loaded <= 0
}

// Consume removes one round.
//
// Postcondition: Returns ErrEmptyMagazine and changes nothing when empty.
func (m *Magazine) Consume() error {
	if m.Loaded <= 0 {
		return ErrEmptyMagazine
	}
	m.Loaded--
	return nil
}

// Reload tops the magazine up from reserve.
//
// Postcondition: Returns the rounds taken; Loaded <= Capacity.
func (m *Magazine) Reload(reserve int) int {
	need := m.Capacity - m.Loaded
	if need > reserve {
		need = reserve
	}
	if need < 0 {
		need = 0
	}
	m.Loaded += need
	return need
}
