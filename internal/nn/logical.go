package nn

import (
	"math"
)

// Logical is a building block for stable, expressive nets: a split of a wide
// leaky branch and a narrow saturating branch, each a dense layer with bias.
// About 85% of the outputs come from the leaky branch.
func Logical(outputSize int) Factory {
	leaky := int(math.Floor(float64(outputSize) * 0.85))
	return Split(
		Pipe(Dense(leaky), Bias(), LeakyReLU(LeakyReLUSlope)),
		Pipe(Dense(outputSize-leaky), Bias(), SharpTanh(LeakyReLUSlope)),
	)
}
