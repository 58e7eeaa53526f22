package nn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"

	"github.com/DuncanWalter/combobulate/internal/tensor"
)

func activationLayer(t *testing.T, f Factory, size int) *ActivationLayer {
	t.Helper()
	layer, err := f(Info{Size: size})
	require.NoError(t, err)
	return layer.(*ActivationLayer)
}

// TestActivationDerivatives compares every backward pass against a central
// difference, away from the kinks of the piecewise activations.
func TestActivationDerivatives(t *testing.T) {
	points := tensor.Vector{-3.1, -1.7, -0.9, -0.4, -0.1, 0.2, 0.55, 0.8, 1.3, 2.6}
	settings := &fd.Settings{Formula: fd.Central, Step: 1e-6}

	tests := []struct {
		name    string
		factory Factory
	}{
		{"Identity", Identity()},
		{"LeakyReLU", LeakyReLU(LeakyReLUSlope)},
		{"SharpTanh", SharpTanh(0.05)},
		{"Swoop", Swoop()},
		{"SelfNormalizingZed", SelfNormalizingZed()},
		{"Sigmoid", Sigmoid()},
		{"Gaussian", Gaussian(0.5, 2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layer := activationLayer(t, tt.factory, len(points))
			assert.Equal(t, tt.name, layer.Name())

			output := layer.Forward(points, Config{})
			back := layer.Backward(tensor.NewVector(len(points), func(int) float64 { return 1 }), points, output, Config{})

			for i, x := range points {
				want := fd.Derivative(layer.activate, x, settings)
				assert.InDelta(t, want, back[i], 1e-4, "x=%v", x)
			}
		})
	}
}

func TestActivationValues(t *testing.T) {
	tests := []struct {
		name    string
		factory Factory
		x, y    float64
	}{
		{"leaky positive", LeakyReLU(0.05), 2, 2},
		{"leaky negative", LeakyReLU(0.05), -2, -0.1},
		{"sharp tanh inside", SharpTanh(0.05), 0.5, 0.5},
		{"sharp tanh above", SharpTanh(0.05), 3, 1.1},
		{"sharp tanh below", SharpTanh(0.05), -3, -1.1},
		{"swoop origin", Swoop(), 0, 0},
		{"zed origin", SelfNormalizingZed(), 0, 0},
		{"zed inner", SelfNormalizingZed(), 0.5, 0.7},
		{"sigmoid origin", Sigmoid(), 0, 0},
		{"gaussian peak", Gaussian(1, 3), 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layer := activationLayer(t, tt.factory, 1)
			assert.InDelta(t, tt.y, layer.Forward(tensor.Vector{tt.x}, Config{})[0], 1e-12)
		})
	}
}

func TestSwoopIsOddAndSaturating(t *testing.T) {
	layer := activationLayer(t, Swoop(), 1)
	for _, x := range []float64{0.3, 1, 4, 20} {
		pos := layer.activate(x)
		neg := layer.activate(-x)
		assert.InDelta(t, -pos, neg, 1e-12)
	}
	// the leak keeps the output growing, slowly
	assert.Greater(t, layer.activate(100), layer.activate(50))
	assert.Less(t, layer.activate(100)-layer.activate(50), 0.05*50)
}

func TestSigmoidRange(t *testing.T) {
	layer := activationLayer(t, Sigmoid(), 1)
	for _, x := range []float64{-50, -2, 2, 50} {
		y := layer.activate(x)
		assert.LessOrEqual(t, math.Abs(y), 1.0)
	}
}

func TestActivationRejectsWrongSize(t *testing.T) {
	layer := activationLayer(t, Sigmoid(), 2)
	assert.Panics(t, func() {
		layer.Forward(tensor.Vector{1}, Config{})
	})
}
