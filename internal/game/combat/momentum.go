package combat

const (
	// MomentumMax is the ceiling of the momentum pool.
	MomentumMax = 50.0
	// MomentumDecayPerSecond is the default drain when momentum is not maintained.
	MomentumDecayPerSecond = 5.0
	// MomentumGrace is how long momentum holds after a gain before decaying.
	MomentumGrace = 1.0
	// MomentumPerAction is awarded for a katana slice or a mitigated blow.
	MomentumPerAction = 5.0
)

// MomentumState is the band momentum currently sits in.
type MomentumState int

const (
	MomentumEmpty MomentumState = iota
	MomentumBuilding
	MomentumFlowing
	MomentumPeak
)

// String returns the state name.
func (s MomentumState) String() string {
	switch s {
	case MomentumBuilding:
		return "building"
	case MomentumFlowing:
		return "flowing"
	case MomentumPeak:
		return "peak"
	default:
		return "empty"
	}
}

// Momentum is the katana wielder's flow-state resource.
//
// Invariant: 0 <= Current <= Max.
type Momentum struct {
	Current float64
	Max     float64
	// Idle counts seconds since the last gain.
	Idle float64
}

// NewMomentum returns an empty pool with MomentumMax capacity.
func NewMomentum() *Momentum {
	return &Momentum{Max: MomentumMax}
}

// State derives the band from Current.
func (m *Momentum) State() MomentumState {
	switch {
	case m.Current <= 0:
		return MomentumEmpty
	case m.Current < 15:
		return MomentumBuilding
	case m.Current < 30:
		return MomentumFlowing
	default:
		return MomentumPeak
	}
}

// Gain adds n and restarts the grace window.
func (m *Momentum) Gain(n float64) {
	m.Current += n
	if m.Current > m.Max {
		m.Current = m.Max
	}
	m.Idle = 0
}

// Decay drains rate per second once the grace window has passed.
func (m *Momentum) Decay(dt, rate float64) {
	m.Idle += dt
	if m.Idle <= MomentumGrace || m.Current <= 0 {
		return
	}
	m.Current -= rate * dt
	if m.Current < 0 {
		m.Current = 0
	}
}

// Spend empties the pool and returns the state it was in.
func (m *Momentum) Spend() MomentumState {
	state := m.State()
	m.Current = 0
	m.Idle = 0
	return state
}
