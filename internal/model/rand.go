package model

import "math/rand/v2"

// Rand is the single randomness source for all behavioral decisions. A
// seeded implementation makes a whole simulation run reproducible.
type Rand interface {
	// Between returns a uniform draw in [min, max]. min > max returns min.
	Between(min, max int32) int32
	// Bool returns a fair coin flip.
	Bool() bool
}

type pcgRand struct {
	rng *rand.Rand
}

// NewRand creates a Rand seeded with the two given values.
func NewRand(seed1, seed2 uint64) Rand {
	return &pcgRand{rng: rand.New(rand.NewPCG(seed1, seed2))}
}

func (r *pcgRand) Between(min, max int32) int32 {
	if min >= max {
		return min
	}
	return min + r.rng.Int32N(max-min+1)
}

func (r *pcgRand) Bool() bool {
	return r.rng.Uint64()&1 == 1
}
