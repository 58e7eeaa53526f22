package train

import (
	"math"
)

// Loss scores a single output element.
//
// Derivative returns the error fed back to the net for that element. It
// follows the target minus prediction sign, so a positive error pushes the
// prediction up.
type Loss struct {
	Name       string
	Value      func(target, prediction float64) float64
	Derivative func(target, prediction float64) float64
}

// AbsoluteError is |target - prediction|. Its error is the sign of the
// difference, so every element pulls with the same strength.
var AbsoluteError = Loss{
	Name: "absolute",
	Value: func(target, prediction float64) float64 {
		return math.Abs(target - prediction)
	},
	Derivative: func(target, prediction float64) float64 {
		switch {
		case target > prediction:
			return 1
		case target < prediction:
			return -1
		default:
			return 0
		}
	},
}

// SquaredError is (target - prediction)²/2. Its error is the plain
// difference.
var SquaredError = Loss{
	Name: "squared",
	Value: func(target, prediction float64) float64 {
		d := target - prediction
		return d * d / 2
	},
	Derivative: func(target, prediction float64) float64 {
		return target - prediction
	},
}

// LossByName returns the loss registered under name.
func LossByName(name string) (Loss, bool) {
	switch name {
	case AbsoluteError.Name:
		return AbsoluteError, true
	case SquaredError.Name:
		return SquaredError, true
	}
	return Loss{}, false
}
