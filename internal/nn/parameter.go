package nn

import (
	"github.com/DuncanWalter/combobulate/internal/tensor"
)

// VectorParameter is a trainable vector together with its delta accumulator.
//
// Backward passes add to Delta. ApplyLearning moves Delta into Value scaled
// by the effective rate and keeps the Inertia fraction of Delta for the next
// batch:
//
//	value += rate * delta
//	delta *= inertia
type VectorParameter struct {
	Value tensor.Vector
	Delta tensor.Vector
}

// NewVectorParameter wraps value with a zero delta.
func NewVectorParameter(value tensor.Vector) *VectorParameter {
	return &VectorParameter{
		Value: value,
		Delta: tensor.Zeros(len(value)),
	}
}

// ApplyLearning commits the accumulated delta.
func (p *VectorParameter) ApplyLearning(cfg Config) {
	tensor.AddScaledInto(p.Value, p.Delta, cfg.Rate())
	tensor.ScaleInto(p.Delta, p.Delta, cfg.Inertia)
}

// Clean zeroes the delta without committing it.
func (p *VectorParameter) Clean() {
	p.Delta.Fill(0)
}

// MatrixParameter is a trainable matrix together with its delta accumulator.
// It follows the same update rule as VectorParameter.
type MatrixParameter struct {
	Value tensor.Matrix
	Delta tensor.Matrix
}

// NewMatrixParameter wraps value with a zero delta of the same shape.
func NewMatrixParameter(value tensor.Matrix) *MatrixParameter {
	return &MatrixParameter{
		Value: value,
		Delta: tensor.ZerosMatrix(value.Rows(), value.Cols()),
	}
}

// ApplyLearning commits the accumulated delta.
func (p *MatrixParameter) ApplyLearning(cfg Config) {
	tensor.AddScaledMatrix(p.Value, p.Delta, cfg.Rate())
	tensor.ScaleMatrixInPlace(p.Delta, cfg.Inertia)
}

// Clean zeroes the delta without committing it.
func (p *MatrixParameter) Clean() {
	p.Delta.Zero()
}
