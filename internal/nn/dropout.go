package nn

import (
	"fmt"
	"math/rand"

	"github.com/DuncanWalter/combobulate/internal/tensor"
)

// Dropout zeroes each element with probability frequency while training and
// scales survivors by 1/(1-frequency), so the expected output equals the
// input. Outside training it is the identity.
//
// The backward pass is only defined while training; calling it with
// Training false panics with ErrInferenceBackward.
func Dropout(frequency float64) Factory {
	return DropoutWithTotality(frequency, 1)
}

// DropoutWithTotality is Dropout where dropped elements keep a
// (1-totality) fraction of their value instead of vanishing. Survivors are
// scaled by 1/(1-frequency·totality) to preserve the expectation.
func DropoutWithTotality(frequency, totality float64) Factory {
	return func(info Info) (Transformation, error) {
		if frequency < 0 || frequency >= 1 {
			return nil, invalid("dropout", "frequency %v outside [0, 1)", frequency)
		}
		if totality < 0 || totality > 1 {
			return nil, invalid("dropout", "totality %v outside [0, 1]", totality)
		}
		return &DropoutLayer{
			size:      info.Size,
			frequency: frequency,
			keep:      1 - totality,
			scale:     1 / (1 - frequency*totality),
			rng:       info.rng(),
		}, nil
	}
}

// DropoutLayer is the Simplified layer built by Dropout.
type DropoutLayer struct {
	size      int
	frequency float64
	keep      float64 // Factor applied to dropped elements
	scale     float64 // Factor applied to survivors
	rng       *rand.Rand
}

// Size returns the number of outputs, equal to the number of inputs.
func (d *DropoutLayer) Size() int {
	return d.size
}

// Forward drops and rescales elements while training.
func (d *DropoutLayer) Forward(input tensor.Vector, cfg Config) tensor.Vector {
	if len(input) != d.size {
		panic(fmt.Sprintf("Dropout.Forward: expected input of size %d, got %d", d.size, len(input)))
	}
	if !cfg.Training {
		return input
	}
	return tensor.Map(input, func(x float64, _ int) float64 {
		if d.rng.Float64() < d.frequency {
			return d.keep * x
		}
		return d.scale * x
	})
}

// Backward recovers which elements survived from the stored input and
// output. A survivor's output is exactly scale·x; anything else was dropped.
func (d *DropoutLayer) Backward(err, input, output tensor.Vector, cfg Config) tensor.Vector {
	if !cfg.Training {
		usage(ErrInferenceBackward, "dropout of size %d", d.size)
	}
	return tensor.Map(err, func(e float64, i int) float64 {
		if output[i] == d.scale*input[i] {
			return e * d.scale
		}
		return e * d.keep
	})
}
