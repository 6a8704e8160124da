package animator

import "math/rand/v2"

// Jitter supplies uniform random numbers in [0,1) for hinge drift.
// *rand.Rand satisfies it.
type Jitter interface {
	Float64() float64
}

// NewJitter returns a seeded PCG source, so a run can be replayed exactly.
func NewJitter(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

type constJitter float64

func (c constJitter) Float64() float64 { return float64(c) }

// NoJitter always yields 0.5, which maps to zero drift.
var NoJitter Jitter = constJitter(0.5)
