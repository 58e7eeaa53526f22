package nn

import (
	"github.com/DuncanWalter/combobulate/internal/serialization"
	"github.com/DuncanWalter/combobulate/internal/tensor"
)

// LeafTrace is the trace of a regularized Simplified layer.
type LeafTrace struct {
	history History
	input   tensor.Vector
	output  tensor.Vector
}

// History implements Trace.
func (t *LeafTrace) History() History {
	return t.history
}

// regularized adapts a Simplified layer to the Uniform contract.
type regularized struct {
	layer Simplified
}

func newRegularized(layer Simplified) *regularized {
	return &regularized{layer: layer}
}

func (r *regularized) Size() int {
	return r.layer.Size()
}

func (r *regularized) PassForward(input tensor.Vector, history History, cfg Config) (tensor.Vector, Trace) {
	output := r.layer.Forward(input, cfg)
	return output, &LeafTrace{history: history, input: input, output: output}
}

func (r *regularized) PassBack(trace Trace, err tensor.Vector, handoff Handoff, cfg Config) {
	leaf, ok := trace.(*LeafTrace)
	if !ok {
		usage(ErrForeignTrace, "leaf layer %T received %T", r.layer, trace)
	}
	handoff(leaf.history, r.layer.Backward(err, leaf.input, leaf.output, cfg))
}

func (r *regularized) ApplyLearning(cfg Config) {
	if l, ok := r.layer.(Learner); ok {
		l.ApplyLearning(cfg)
	}
}

func (r *regularized) Clean() {
	if c, ok := r.layer.(Cleaner); ok {
		c.Clean()
	}
}

func (r *regularized) Serialize() (string, error) {
	if s, ok := r.layer.(Serializer); ok {
		return s.Serialize()
	}
	return serialization.Null, nil
}
