package nn

import (
	"fmt"

	"github.com/DuncanWalter/combobulate/internal/serialization"
	"github.com/DuncanWalter/combobulate/internal/tensor"
)

// PipeTrace is the trace of a pipe: its history and one trace per layer, in
// layer order.
type PipeTrace struct {
	history History
	traces  []Trace
}

// History implements Trace.
func (t *PipeTrace) History() History {
	return t.history
}

// Pipe chains layers so each layer's output becomes the next layer's input.
//
// Sizes are threaded left to right: layer i+1 is built with the output size
// of layer i, and the pipe's size is the size of its last layer.
//
// Example:
//
//	net := nn.Pipe(
//	    nn.Dense(16),
//	    nn.LeakyReLU(0.05),
//	    nn.Dense(1),
//	)
//
// A pipe of no layers passes its input through unchanged.
func Pipe(factories ...Factory) Factory {
	if len(factories) == 0 {
		return Identity()
	}
	return func(info Info) (Transformation, error) {
		children, err := serialization.DecodeArray(info.Content, "pipe")
		if err != nil {
			return nil, err
		}
		if len(children) > len(factories) {
			return nil, &serialization.ContentError{
				Layer:   "pipe",
				Details: fmt.Sprintf("content holds %d layers, pipe has %d", len(children), len(factories)),
				Err:     serialization.ErrShapeMismatch,
			}
		}

		layers := make([]Uniform, len(factories))
		size := info.Size
		for i, factory := range factories {
			t, err := factory(Info{Size: size, Content: serialization.At(children, i), Rand: info.Rand})
			if err != nil {
				return nil, fmt.Errorf("pipe layer %d: %w", i, err)
			}
			layers[i] = Regularize(t)
			size = layers[i].Size()
		}
		return &pipe{layers: layers, size: size}, nil
	}
}

type pipe struct {
	layers []Uniform
	size   int
}

func (p *pipe) Size() int {
	return p.size
}

// PassForward applies every layer in order. Each layer receives the pipe's
// trace as its history.
func (p *pipe) PassForward(input tensor.Vector, history History, cfg Config) (tensor.Vector, Trace) {
	trace := &PipeTrace{
		history: history,
		traces:  make([]Trace, len(p.layers)),
	}
	output := input
	for i, layer := range p.layers {
		var t Trace
		output, t = layer.PassForward(output, trace, cfg)
		trace.traces[i] = t
	}
	return output, trace
}

// PassBack runs the layers in reverse order. The continuation chain is
// folded from the first layer to the last, so invoking it starts at the last
// layer and each handoff steps one layer towards the input.
func (p *pipe) PassBack(trace Trace, err tensor.Vector, handoff Handoff, cfg Config) {
	pt, ok := trace.(*PipeTrace)
	if !ok {
		usage(ErrForeignTrace, "pipe received %T", trace)
	}

	next := func(h History, e tensor.Vector) {
		handoff(p.own(h).history, e)
	}
	for i, layer := range p.layers {
		prev := next
		next = func(h History, e tensor.Vector) {
			layer.PassBack(p.own(h).traces[i], e, prev, cfg)
		}
	}
	next(pt, err)
}

// own recovers the pipe trace a child handed back.
func (p *pipe) own(h History) *PipeTrace {
	pt, ok := h.(*PipeTrace)
	if !ok {
		usage(ErrForeignTrace, "pipe layer handed off %T", h)
	}
	return pt
}

func (p *pipe) ApplyLearning(cfg Config) {
	for _, layer := range p.layers {
		layer.ApplyLearning(cfg)
	}
}

func (p *pipe) Clean() {
	for _, layer := range p.layers {
		layer.Clean()
	}
}

func (p *pipe) Serialize() (string, error) {
	return serializeAll("pipe", p.layers)
}

func serializeAll(kind string, layers []Uniform) (string, error) {
	children := make([]string, len(layers))
	for i, layer := range layers {
		content, err := layer.Serialize()
		if err != nil {
			return "", fmt.Errorf("%s layer %d: %w", kind, i, err)
		}
		children[i] = content
	}
	return serialization.EncodeArray(children)
}
