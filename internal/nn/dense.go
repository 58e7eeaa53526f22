package nn

import (
	"fmt"
	"math/rand"

	"github.com/DuncanWalter/combobulate/internal/serialization"
	"github.com/DuncanWalter/combobulate/internal/tensor"
)

// Dense implements a fully connected layer.
//
// Performs the transformation y = W·x where:
//   - x is the input with inputSize entries
//   - W is the weight matrix with shape [outputSize, inputSize]
//   - y is the output with outputSize entries
//
// Weights are drawn with FanInNormal unless content restores them.
//
// Example:
//
//	layer := nn.Dense(128)
func Dense(outputSize int) Factory {
	return DenseWithSeed(outputSize, FanInNormal)
}

// DenseWithSeed is Dense with a custom weight seed.
func DenseWithSeed(outputSize int, seed MatrixSeed) Factory {
	return func(info Info) (Transformation, error) {
		return newDense(info.Size, outputSize, info.Content, seed, info.rng())
	}
}

// DenseLayer is the Simplified layer built by Dense.
type DenseLayer struct {
	inputSize  int
	outputSize int
	weight     *MatrixParameter // [outputSize, inputSize]
}

func newDense(inputSize, outputSize int, content string, seed MatrixSeed, rng *rand.Rand) (*DenseLayer, error) {
	if outputSize < 0 {
		return nil, invalid("dense", "negative output size %d", outputSize)
	}

	var weights tensor.Matrix
	if serialization.IsEmpty(content) {
		weights = tensor.NewMatrix(outputSize, inputSize, seed(inputSize, outputSize, rng))
	} else {
		if err := serialization.Decode(content, "dense", &weights); err != nil {
			return nil, err
		}
		if err := serialization.ValidateMatrix("dense", []tensor.Vector(weights), outputSize, inputSize); err != nil {
			return nil, err
		}
	}

	return &DenseLayer{
		inputSize:  inputSize,
		outputSize: outputSize,
		weight:     NewMatrixParameter(weights),
	}, nil
}

// Size returns the number of outputs.
func (d *DenseLayer) Size() int {
	return d.outputSize
}

// Weight returns the weight parameter.
func (d *DenseLayer) Weight() *MatrixParameter {
	return d.weight
}

// Forward computes y = W·x.
func (d *DenseLayer) Forward(input tensor.Vector, _ Config) tensor.Vector {
	if len(input) != d.inputSize {
		panic(fmt.Sprintf("Dense.Forward: expected input of size %d, got %d", d.inputSize, len(input)))
	}
	return tensor.MatVec(d.weight.Value, input)
}

// Backward accumulates err⊗x into the weight delta and returns Wᵀ·err.
func (d *DenseLayer) Backward(err, input, _ tensor.Vector, _ Config) tensor.Vector {
	tensor.AddOuter(d.weight.Delta, err, input)
	return tensor.VecMat(err, d.weight.Value)
}

// ApplyLearning commits the weight delta.
func (d *DenseLayer) ApplyLearning(cfg Config) {
	d.weight.ApplyLearning(cfg)
}

// Clean discards the weight delta.
func (d *DenseLayer) Clean() {
	d.weight.Clean()
}

// Serialize returns the weight matrix as JSON rows.
func (d *DenseLayer) Serialize() (string, error) {
	return serialization.Encode(d.weight.Value)
}
