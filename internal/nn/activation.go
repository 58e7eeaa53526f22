package nn

import (
	"fmt"
	"math"

	"github.com/DuncanWalter/combobulate/internal/tensor"
)

// ActivationLayer applies a scalar function to every input element.
//
// Activations have no parameters. The derivative is computed from the
// element's input and output alone, which the regularized trace already
// carries.
type ActivationLayer struct {
	name       string
	size       int
	activate   func(x float64) float64
	derivative func(x, y float64) float64
}

func activation(name string, activate func(float64) float64, derivative func(x, y float64) float64) Factory {
	return func(info Info) (Transformation, error) {
		return &ActivationLayer{
			name:       name,
			size:       info.Size,
			activate:   activate,
			derivative: derivative,
		}, nil
	}
}

// Name returns the activation's name.
func (a *ActivationLayer) Name() string {
	return a.name
}

// Size returns the number of outputs, equal to the number of inputs.
func (a *ActivationLayer) Size() int {
	return a.size
}

// Forward applies the activation elementwise.
func (a *ActivationLayer) Forward(input tensor.Vector, _ Config) tensor.Vector {
	if len(input) != a.size {
		panic(fmt.Sprintf("%s.Forward: expected input of size %d, got %d", a.name, a.size, len(input)))
	}
	return tensor.Map(input, func(x float64, _ int) float64 {
		return a.activate(x)
	})
}

// Backward scales err by the derivative at each element.
func (a *ActivationLayer) Backward(err, input, output tensor.Vector, _ Config) tensor.Vector {
	return tensor.Map(err, func(e float64, i int) float64 {
		return e * a.derivative(input[i], output[i])
	})
}

// Identity passes its input through unchanged.
func Identity() Factory {
	return activation("Identity",
		func(x float64) float64 { return x },
		func(_, _ float64) float64 { return 1 },
	)
}

// LeakyReLUSlope is the default negative slope of LeakyReLU.
const LeakyReLUSlope = 0.05

// LeakyReLU applies f(x) = x for x > 0 and slope*x otherwise.
func LeakyReLU(slope float64) Factory {
	return activation("LeakyReLU",
		func(x float64) float64 {
			if x > 0 {
				return x
			}
			return slope * x
		},
		func(x, _ float64) float64 {
			if x > 0 {
				return 1
			}
			return slope
		},
	)
}

// SharpTanh is a piecewise linear tanh: the identity on [-1, 1] and lines of
// the given slope beyond it.
func SharpTanh(slope float64) Factory {
	return activation("SharpTanh",
		func(x float64) float64 {
			switch {
			case x < -1:
				return slope*(x+1) - 1
			case x > 1:
				return slope*(x-1) + 1
			default:
				return x
			}
		},
		func(x, _ float64) float64 {
			if math.Abs(x) > 1 {
				return slope
			}
			return 1
		},
	)
}

// Constants fitted so that Swoop keeps unit normal inputs near zero mean and
// unit variance.
const (
	swoopSlope = 0.03567
	swoopReach = 2.7844
	swoopZoom  = 0.47787
)

// Swoop is a smooth self-normalising activation: a saturating hyperbola with
// a small linear leak.
func Swoop() Factory {
	inv := 1 / swoopReach
	return activation("Swoop",
		zoom(swoopZoom, func(u float64) float64 {
			if u >= 0 {
				return swoopSlope*u - (1/(inv+u) - swoopReach)
			}
			return swoopSlope*u + (1/(inv-u) - swoopReach)
		}),
		func(x, _ float64) float64 {
			d := 1 / (inv + math.Abs(x/swoopZoom))
			return swoopSlope + d*d
		},
	)
}

const (
	zedInner = 1.4
	zedOuter = 0.05
	zedZoom  = 0.65
)

// SelfNormalizingZed is a zoomed sharp tanh with a steeper centre.
func SelfNormalizingZed() Factory {
	return activation("SelfNormalizingZed",
		zoom(zedZoom, func(u float64) float64 {
			switch {
			case u > 1:
				return (u-1)*zedOuter + zedInner
			case u < -1:
				return (u+1)*zedOuter - zedInner
			default:
				return u * zedInner
			}
		}),
		func(x, _ float64) float64 {
			if math.Abs(x/zedZoom) < 1 {
				return zedInner
			}
			return zedOuter
		},
	)
}

// Sigmoid is the bipolar logistic function 2/(1+exp(-x)) - 1 with range
// (-1, 1).
func Sigmoid() Factory {
	return activation("Sigmoid",
		func(x float64) float64 {
			return 2/(1+math.Exp(-x)) - 1
		},
		func(_, y float64) float64 {
			return (1 - y*y) / 2
		},
	)
}

// Gaussian is the bump exp(-(x-mean)²/(2·variance)).
func Gaussian(mean, variance float64) Factory {
	return activation("Gaussian",
		func(x float64) float64 {
			d := x - mean
			return math.Exp(-d * d / (2 * variance))
		},
		func(x, y float64) float64 {
			return -(x - mean) / variance * y
		},
	)
}

// zoom rescales f about the origin: zoom(c, f)(x) = c·f(x/c). The derivative
// of the result at x is f'(x/c).
func zoom(c float64, f func(float64) float64) func(float64) float64 {
	return func(x float64) float64 {
		return c * f(x/c)
	}
}
