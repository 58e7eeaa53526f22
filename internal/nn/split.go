package nn

import (
	"fmt"
	"sync/atomic"

	"github.com/DuncanWalter/combobulate/internal/serialization"
	"github.com/DuncanWalter/combobulate/internal/tensor"
)

// callSequence numbers split forward calls. A branch handing off must return
// the history carrying its own call's number.
var callSequence atomic.Uint64

// SplitTrace is the trace of a split: its history, the call number of the
// forward pass that produced it, and one trace per branch.
type SplitTrace struct {
	history History
	call    uint64
	traces  []Trace
}

// History implements Trace.
func (t *SplitTrace) History() History {
	return t.history
}

// Split feeds the same input to every branch and concatenates their outputs.
//
// Branch i owns the output segment starting at the sum of the sizes of
// branches 0..i-1. On the way back the error is sliced into the same
// segments, and since every branch read the same input, the branches' input
// errors are summed before being handed off once.
//
// Branches must be trees: each branch hands off exactly once, through the
// history it was given. Anything else panics with ErrDuplicateHandoff or
// ErrMissingHandoff.
//
// A split of no branches passes its input through unchanged.
func Split(factories ...Factory) Factory {
	if len(factories) == 0 {
		return Identity()
	}
	return func(info Info) (Transformation, error) {
		children, err := serialization.DecodeArray(info.Content, "split")
		if err != nil {
			return nil, err
		}
		if len(children) > len(factories) {
			return nil, &serialization.ContentError{
				Layer:   "split",
				Details: fmt.Sprintf("content holds %d branches, split has %d", len(children), len(factories)),
				Err:     serialization.ErrShapeMismatch,
			}
		}

		branches := make([]Uniform, len(factories))
		size := 0
		for i, factory := range factories {
			t, err := factory(Info{Size: info.Size, Content: serialization.At(children, i), Rand: info.Rand})
			if err != nil {
				return nil, fmt.Errorf("split branch %d: %w", i, err)
			}
			branches[i] = Regularize(t)
			size += branches[i].Size()
		}
		return &split{branches: branches, inputSize: info.Size, size: size}, nil
	}
}

type split struct {
	branches  []Uniform
	inputSize int
	size      int
}

func (s *split) Size() int {
	return s.size
}

func (s *split) PassForward(input tensor.Vector, history History, cfg Config) (tensor.Vector, Trace) {
	trace := &SplitTrace{
		history: history,
		call:    callSequence.Add(1),
		traces:  make([]Trace, len(s.branches)),
	}
	output := make(tensor.Vector, 0, s.size)
	for i, branch := range s.branches {
		out, t := branch.PassForward(input, trace, cfg)
		trace.traces[i] = t
		output = append(output, out...)
	}
	return output, trace
}

func (s *split) PassBack(trace Trace, err tensor.Vector, handoff Handoff, cfg Config) {
	st, ok := trace.(*SplitTrace)
	if !ok {
		usage(ErrForeignTrace, "split received %T", trace)
	}
	if len(err) != s.size {
		panic(fmt.Sprintf("Split.PassBack: expected error of size %d, got %d", s.size, len(err)))
	}

	merged := tensor.Zeros(s.inputSize)
	offset := 0
	for i, branch := range s.branches {
		handed := 0
		receive := func(h History, e tensor.Vector) {
			ht, ok := h.(*SplitTrace)
			if !ok || ht.call != st.call {
				usage(ErrDuplicateHandoff, "branch %d handed off a foreign history", i)
			}
			handed++
			if handed > 1 {
				usage(ErrDuplicateHandoff, "branch %d handed off %d times", i, handed)
			}
			tensor.AddInto(merged, merged, e)
		}

		end := offset + branch.Size()
		branch.PassBack(st.traces[i], err[offset:end], receive, cfg)
		if handed == 0 {
			usage(ErrMissingHandoff, "branch %d", i)
		}
		offset = end
	}
	handoff(st.history, merged)
}

func (s *split) ApplyLearning(cfg Config) {
	for _, branch := range s.branches {
		branch.ApplyLearning(cfg)
	}
}

func (s *split) Clean() {
	for _, branch := range s.branches {
		branch.Clean()
	}
}

func (s *split) Serialize() (string, error) {
	return serializeAll("split", s.branches)
}
