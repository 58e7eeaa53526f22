package nn

import (
	"fmt"

	"github.com/DuncanWalter/combobulate/internal/serialization"
	"github.com/DuncanWalter/combobulate/internal/tensor"
)

// Bias adds a learned offset to every input element.
//
// Offsets are drawn with AlternatingUniform unless content restores them.
func Bias() Factory {
	return BiasWithSeed(AlternatingUniform)
}

// BiasWithSeed is Bias with a custom offset seed.
func BiasWithSeed(seed VectorSeed) Factory {
	return func(info Info) (Transformation, error) {
		var offsets tensor.Vector
		if serialization.IsEmpty(info.Content) {
			offsets = tensor.NewVector(info.Size, seed(info.Size, info.rng()))
		} else {
			if err := serialization.Decode(info.Content, "bias", &offsets); err != nil {
				return nil, err
			}
			if err := serialization.ValidateVector("bias", offsets, info.Size); err != nil {
				return nil, err
			}
		}
		return &BiasLayer{offset: NewVectorParameter(offsets)}, nil
	}
}

// BiasLayer is the Simplified layer built by Bias.
type BiasLayer struct {
	offset *VectorParameter
}

// Size returns the number of outputs, equal to the number of inputs.
func (b *BiasLayer) Size() int {
	return len(b.offset.Value)
}

// Offset returns the offset parameter.
func (b *BiasLayer) Offset() *VectorParameter {
	return b.offset
}

// Forward computes x + b.
func (b *BiasLayer) Forward(input tensor.Vector, _ Config) tensor.Vector {
	if len(input) != b.Size() {
		panic(fmt.Sprintf("Bias.Forward: expected input of size %d, got %d", b.Size(), len(input)))
	}
	return tensor.Add(input, b.offset.Value)
}

// Backward accumulates err into the offset delta and passes err through.
func (b *BiasLayer) Backward(err, _, _ tensor.Vector, _ Config) tensor.Vector {
	tensor.AddInto(b.offset.Delta, b.offset.Delta, err)
	return err
}

// ApplyLearning commits the offset delta.
func (b *BiasLayer) ApplyLearning(cfg Config) {
	b.offset.ApplyLearning(cfg)
}

// Clean discards the offset delta.
func (b *BiasLayer) Clean() {
	b.offset.Clean()
}

// Serialize returns the offsets as a JSON array.
func (b *BiasLayer) Serialize() (string, error) {
	return serialization.Encode(b.offset.Value)
}
