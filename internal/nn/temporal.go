package nn

import (
	"fmt"

	"github.com/DuncanWalter/combobulate/internal/serialization"
	"github.com/DuncanWalter/combobulate/internal/tensor"
)

// ringHistory is a fixed-size ring of past inputs.
type ringHistory struct {
	buffer []tensor.Vector
	offset int
}

func newRingHistory(length, width int) *ringHistory {
	r := &ringHistory{buffer: make([]tensor.Vector, length)}
	for i := range r.buffer {
		r.buffer[i] = tensor.Zeros(width)
	}
	return r
}

// write stores item as the most recent entry.
func (r *ringHistory) write(item tensor.Vector) {
	r.offset = (r.offset + 1) % len(r.buffer)
	r.buffer[r.offset] = item
}

// recall returns the entry written stepsBack writes ago; 0 is the latest.
func (r *ringHistory) recall(stepsBack int) tensor.Vector {
	n := len(r.buffer)
	return r.buffer[(r.offset+n-stepsBack%n)%n]
}

// Temporal caches past inputs and appends samples-1 of them, spaced span
// steps apart, to the current input. This gives a one dimensional
// convolution over a stream without recomputing history.
//
// Output layout is [current, t-span, t-2·span, ...], each block the input
// size. Only the current block propagates error; gradients do not flow back
// through time.
func Temporal(samples, span int) Factory {
	return func(info Info) (Transformation, error) {
		if samples < 1 {
			return nil, invalid("temporal", "samples %d < 1", samples)
		}
		if span < 1 {
			return nil, invalid("temporal", "span %d < 1", span)
		}
		t := &TemporalLayer{inputSize: info.Size, samples: samples, span: span}
		t.Clean()
		return t, nil
	}
}

// TemporalLayer is the Simplified layer built by Temporal.
type TemporalLayer struct {
	inputSize int
	samples   int
	span      int
	cache     *ringHistory
}

// Size returns inputSize·samples.
func (t *TemporalLayer) Size() int {
	return t.inputSize * t.samples
}

// Forward emits the current input followed by the sampled history, then
// records the input.
func (t *TemporalLayer) Forward(input tensor.Vector, _ Config) tensor.Vector {
	if len(input) != t.inputSize {
		panic(fmt.Sprintf("Temporal.Forward: expected input of size %d, got %d", t.inputSize, len(input)))
	}
	output := make(tensor.Vector, t.Size())
	copy(output, input)
	for s := 1; s < t.samples; s++ {
		copy(output[s*t.inputSize:], t.cache.recall(s*t.span-1))
	}
	t.cache.write(input.Clone())
	return output
}

// Backward returns the error of the current block.
func (t *TemporalLayer) Backward(err, _, _ tensor.Vector, _ Config) tensor.Vector {
	return err[:t.inputSize].Clone()
}

// Clean forgets the cached history.
func (t *TemporalLayer) Clean() {
	t.cache = newRingHistory((t.samples-1)*t.span+1, t.inputSize)
}

// Serialize returns null; the cache is transient.
func (t *TemporalLayer) Serialize() (string, error) {
	return serialization.Null, nil
}
