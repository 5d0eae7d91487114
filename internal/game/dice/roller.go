package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger so every combat roll is audited at
// debug level with its label and result.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Intn returns a value in [0, n) and logs it under label.
//
// Precondition: n > 0.
func (r *Roller) Intn(label string, n int) int {
	v := r.src.Intn(n)
	r.logger.Debug("dice roll",
		zap.String("label", label),
		zap.Int("sides", n),
		zap.Int("result", v),
	)
	return v
}

// Percentile returns a uniform value in [0, 100].
func (r *Roller) Percentile(label string) int {
	return r.Intn(label, 101)
}

// Between returns a uniform value in [lo, hi].
//
// Precondition: lo <= hi.
func (r *Roller) Between(label string, lo, hi int) int {
	return lo + r.Intn(label, hi-lo+1)
}

// Chance succeeds with probability p. Values outside [0,1] always fail or
// always succeed without consuming a roll.
func (r *Roller) Chance(label string, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return r.Intn(label, 10000) < int(p*10000)
}

// Pick returns a uniform index into a collection of size n.
//
// Precondition: n > 0.
func (r *Roller) Pick(label string, n int) int {
	return r.Intn(label, n)
}
