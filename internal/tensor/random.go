package tensor

import (
	"math/rand"
)

// NewRand returns a generator seeded with seed.
//
//nolint:gosec // Weight initialisation and dropout masks are not security sensitive.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Normal draws from N(0, 1) using rng.
func Normal(rng *rand.Rand) float64 {
	return rng.NormFloat64()
}

// Shuffle permutes xs in place using rng.
func Shuffle(rng *rand.Rand, xs []int) {
	rng.Shuffle(len(xs), func(i, j int) {
		xs[i], xs[j] = xs[j], xs[i]
	})
}
