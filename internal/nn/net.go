package nn

import (
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/DuncanWalter/combobulate/internal/tensor"
)

// State counts the weight mutations a net has gone through.
type State uint64

// stamp is the history a net hands to its root transformation. It names the
// issuing net and the state its weights were in.
type stamp struct {
	net   uint64
	state State
}

var netSequence atomic.Uint64

// NetConfig holds the configuration for NewNet.
type NetConfig struct {
	InputSize int        // Length of every input vector
	Content   string     // Serialized state from Net.Serialize; empty for fresh weights
	Rand      *rand.Rand // Seeding source (default: seeded from the clock)
	Layers    []Factory  // Layers, composed with Pipe
}

// Feedback pairs a trace with the error observed for its output.
type Feedback struct {
	Trace Trace
	Error tensor.Vector
}

// Net is a thin facade over a Pipe of layers.
//
// It stamps every trace with the net's current State and refuses traces
// whose state is out of date, so gradients are never computed against
// weights that changed after the forward pass.
//
// Example:
//
//	net, err := nn.NewNet(nn.NetConfig{
//	    InputSize: 2,
//	    Layers: []nn.Factory{
//	        nn.Guard(0, 1),
//	        nn.Dense(16),
//	        nn.LeakyReLU(nn.LeakyReLUSlope),
//	        nn.Dense(1),
//	    },
//	})
//
//	output, trace := net.PassForward(input, cfg)
//	err = net.PassBack([]nn.Feedback{{Trace: trace, Error: tensor.Sub(target, output)}}, cfg)
//
// A Net is not safe for concurrent use.
type Net struct {
	id        uint64
	inputSize int
	layers    []Factory
	rng       *rand.Rand
	transform Uniform
	state     State
	consumed  map[Trace]struct{}
}

// NewNet builds a net from its configuration.
func NewNet(config NetConfig) (*Net, error) {
	if config.InputSize < 0 {
		return nil, invalid("net", "negative input size %d", config.InputSize)
	}
	rng := config.Rand
	if rng == nil {
		rng = tensor.NewRand(time.Now().UnixNano())
	}

	t, err := Pipe(config.Layers...)(Info{
		Size:    config.InputSize,
		Content: config.Content,
		Rand:    rng,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build net: %w", err)
	}

	return &Net{
		id:        netSequence.Add(1),
		inputSize: config.InputSize,
		layers:    config.Layers,
		rng:       rng,
		transform: Regularize(t),
		consumed:  make(map[Trace]struct{}),
	}, nil
}

// InputSize returns the expected input length.
func (n *Net) InputSize() int {
	return n.inputSize
}

// OutputSize returns the output length.
func (n *Net) OutputSize() int {
	return n.transform.Size()
}

// State returns the number of weight mutations so far.
func (n *Net) State() State {
	return n.state
}

// PassForward computes the output for input and a trace for PassBack.
func (n *Net) PassForward(input tensor.Vector, cfg Config) (tensor.Vector, Trace) {
	if len(input) != n.inputSize {
		panic(fmt.Sprintf("Net.PassForward: expected input of size %d, got %d", n.inputSize, len(input)))
	}
	return n.transform.PassForward(input, stamp{net: n.id, state: n.state}, cfg)
}

// Accumulate runs the backward pass for every feedback in batch without
// committing the resulting deltas. Each error is scaled by 1/len(batch).
//
// Every trace is checked before any gradient is computed; on error no layer
// has been touched.
func (n *Net) Accumulate(batch []Feedback, cfg Config) error {
	seen := make(map[Trace]struct{}, len(batch))
	for i, fb := range batch {
		if err := n.check(fb, seen); err != nil {
			return fmt.Errorf("feedback %d: %w", i, err)
		}
		seen[fb.Trace] = struct{}{}
	}

	scale := 1 / float64(len(batch))
	discard := func(History, tensor.Vector) {}
	for _, fb := range batch {
		n.transform.PassBack(fb.Trace, tensor.Scale(fb.Error, scale), discard, cfg)
		n.consumed[fb.Trace] = struct{}{}
	}
	return nil
}

func (n *Net) check(fb Feedback, seen map[Trace]struct{}) error {
	if fb.Trace == nil {
		return ErrForeignTrace
	}
	s, ok := fb.Trace.History().(stamp)
	if !ok || s.net != n.id {
		return ErrForeignTrace
	}
	if s.state != n.state {
		return fmt.Errorf("%w: issued at state %d, net is at state %d", ErrStaleTrace, s.state, n.state)
	}
	if _, ok := n.consumed[fb.Trace]; ok {
		return ErrTraceConsumed
	}
	if _, ok := seen[fb.Trace]; ok {
		return ErrTraceConsumed
	}
	if len(fb.Error) != n.OutputSize() {
		return fmt.Errorf("%w: got %d, want %d", ErrErrorSize, len(fb.Error), n.OutputSize())
	}
	return nil
}

// ApplyLearning commits accumulated deltas and advances the net's state,
// invalidating every trace issued before the call.
func (n *Net) ApplyLearning(cfg Config) {
	n.transform.ApplyLearning(cfg)
	n.state++
	clear(n.consumed)
}

// PassBack accumulates the batch and commits it with one ApplyLearning.
func (n *Net) PassBack(batch []Feedback, cfg Config) error {
	if err := n.Accumulate(batch, cfg); err != nil {
		return err
	}
	n.ApplyLearning(cfg)
	return nil
}

// Clean discards accumulated deltas without committing them.
func (n *Net) Clean() {
	n.transform.Clean()
}

// Serialize returns the net's content, accepted by NetConfig.Content.
func (n *Net) Serialize() (string, error) {
	return n.transform.Serialize()
}

// Clone builds an independent net with the same layers and weights.
func (n *Net) Clone() (*Net, error) {
	content, err := n.Serialize()
	if err != nil {
		return nil, err
	}
	return NewNet(NetConfig{
		InputSize: n.inputSize,
		Content:   content,
		Rand:      tensor.NewRand(n.rng.Int63()),
		Layers:    n.layers,
	})
}

// Predictor returns a function computing outputs with a fixed config.
// Traces are discarded.
func (n *Net) Predictor(cfg Config) func(input tensor.Vector) tensor.Vector {
	return func(input tensor.Vector) tensor.Vector {
		output, _ := n.PassForward(input, cfg)
		return output
	}
}
