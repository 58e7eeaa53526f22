package nn

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/DuncanWalter/combobulate/internal/tensor"
)

// VectorSeed returns the initial value of element i of a vector layer of the
// given size.
type VectorSeed func(size int, rng *rand.Rand) func(i int) float64

// MatrixSeed returns the initial weight at (row, col) of an
// outputSize×inputSize weight matrix.
type MatrixSeed func(inputSize, outputSize int, rng *rand.Rand) func(row, col int) float64

// LaconicSeed returns the initial weight at (row, col) of a laconic layer's
// bandwidth×inputSize weight matrix.
type LaconicSeed func(inputSize, outputSize, bandwidth int, rng *rand.Rand) func(row, col int) float64

// FanInNormal draws unit normal weights divided by sqrt(inputSize), which
// keeps the variance of each output near the variance of the inputs.
func FanInNormal(inputSize, _ int, rng *rand.Rand) func(row, col int) float64 {
	scale := 1 / math.Sqrt(float64(inputSize))
	return func(_, _ int) float64 {
		return tensor.Normal(rng) * scale
	}
}

// AlternatingUniform draws uniform magnitudes in [0, 1/sqrt(size)) with
// alternating signs.
func AlternatingUniform(size int, rng *rand.Rand) func(i int) float64 {
	scale := 1 / math.Sqrt(float64(size))
	return func(i int) float64 {
		sign := 1.0
		if i%2 != 0 {
			sign = -1
		}
		return sign * scale * rng.Float64()
	}
}

// SparseFanInNormal scales unit normal weights by the expected fan-in of a
// laconic output, inputSize*bandwidth/outputSize.
func SparseFanInNormal(inputSize, outputSize, bandwidth int, rng *rand.Rand) func(row, col int) float64 {
	scale := 1 / math.Sqrt(float64(inputSize*bandwidth)/float64(outputSize))
	return func(_, _ int) float64 {
		return tensor.Normal(rng) * scale
	}
}

var (
	fallbackOnce sync.Once
	fallbackRand *rand.Rand
)

// defaultRand is used when a factory is built without an explicit generator.
func defaultRand() *rand.Rand {
	fallbackOnce.Do(func() {
		fallbackRand = tensor.NewRand(time.Now().UnixNano())
	})
	return fallbackRand
}
