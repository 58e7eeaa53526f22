// Package nn implements composable, differentiable transformations and the
// Net facade that trains them.
//
// This package provides building blocks for constructing neural networks:
//   - Transformation: the Simplified and Uniform layer contracts
//   - Regularize: lifts a Simplified layer into the Uniform contract
//   - Pipe and Split: sequential and parallel composition
//   - Layers: Dense, Bias, Laconic, Temporal, Dropout, Guard
//   - Activations: LeakyReLU, SharpTanh, Swoop, SelfNormalizingZed, Sigmoid, Gaussian
//   - Net: owns a composed transformation and guards traces against mutation
//
// A forward pass returns an output and a Trace. The Trace is handed back,
// together with an error vector, to compute gradients. Gradients accumulate
// as deltas inside each layer and are only committed by ApplyLearning.
package nn

import (
	"fmt"
	"math/rand"

	"github.com/DuncanWalter/combobulate/internal/tensor"
)

// Config is the per-call configuration threaded through every layer.
type Config struct {
	LearningRate float64 // Step size applied when deltas are committed
	Inertia      float64 // Fraction of deltas retained after a commit, in [0, 1)
	Training     bool    // Enables training-only behaviour such as dropout
}

// Rate returns the effective update rate: the learning rate divided by the
// inertia dilation 1/(1-Inertia).
func (c Config) Rate() float64 {
	return c.LearningRate * (1 - c.Inertia)
}

// History is the opaque linkage a composite hands to its children on the
// forward pass. Children return it unchanged through their Handoff.
type History any

// Trace is the record a forward pass leaves behind for its backward pass.
// A trace is consumed once, by the backward call matching its forward call.
type Trace interface {
	// History returns the linkage the issuing caller supplied.
	History() History
}

// Handoff receives the error propagated to a layer's input, along with the
// history the layer was given on the forward pass.
type Handoff func(history History, err tensor.Vector)

// Transformation is either a Simplified or a Uniform layer.
type Transformation interface {
	// Size returns the length of the layer's output.
	Size() int
}

// Simplified is the minimal per-call layer contract. It only sees its own
// input, output and error; Regularize supplies the trace bookkeeping.
type Simplified interface {
	Transformation

	// Forward computes the output for input.
	Forward(input tensor.Vector, cfg Config) tensor.Vector

	// Backward accumulates deltas and returns the error for the input.
	Backward(err, input, output tensor.Vector, cfg Config) tensor.Vector
}

// Learner is implemented by Simplified layers that own parameters.
type Learner interface {
	ApplyLearning(cfg Config)
}

// Cleaner is implemented by Simplified layers with discardable state.
type Cleaner interface {
	Clean()
}

// Serializer is implemented by Simplified layers with persistent state.
type Serializer interface {
	Serialize() (string, error)
}

// Uniform is the full contract used by composition.
type Uniform interface {
	Transformation

	// PassForward computes the output for input and records a trace whose
	// History is history.
	PassForward(input tensor.Vector, history History, cfg Config) (tensor.Vector, Trace)

	// PassBack consumes trace, accumulates deltas, and delivers the error for
	// the input to handoff together with the trace's history.
	PassBack(trace Trace, err tensor.Vector, handoff Handoff, cfg Config)

	// ApplyLearning commits accumulated deltas.
	ApplyLearning(cfg Config)

	// Clean discards accumulated deltas without committing them.
	Clean()

	// Serialize returns the layer's persistent state.
	Serialize() (string, error)
}

// Info describes where a layer sits when it is constructed.
type Info struct {
	Size    int        // Input size
	Content string     // Serialized state; empty means fresh initialisation
	Rand    *rand.Rand // Source for seeding and stochastic layers
}

// rng returns the configured generator, or a fresh time-seeded one.
func (i Info) rng() *rand.Rand {
	if i.Rand != nil {
		return i.Rand
	}
	return defaultRand()
}

// Factory constructs a layer for a given input size and content.
type Factory func(info Info) (Transformation, error)

// Regularize lifts t into the Uniform contract.
//
// Uniform layers are returned unchanged. Simplified layers are wrapped so
// their traces carry input, output and history. Any other variant panics.
func Regularize(t Transformation) Uniform {
	switch t := t.(type) {
	case Uniform:
		return t
	case Simplified:
		return newRegularized(t)
	default:
		panic(fmt.Sprintf("nn.Regularize: unsupported transformation %T", t))
	}
}
