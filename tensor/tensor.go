// Copyright 2025 Combobulate Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"math/rand"

	"github.com/DuncanWalter/combobulate/internal/tensor"
)

// Vector is a one dimensional row of values.
type Vector = tensor.Vector

// Matrix is a row-major matrix.
type Matrix = tensor.Matrix

// NewVector creates a vector of n values filled by fill(i).
func NewVector(n int, fill func(i int) float64) Vector {
	return tensor.NewVector(n, fill)
}

// Zeros creates a zero vector of length n.
func Zeros(n int) Vector {
	return tensor.Zeros(n)
}

// NewMatrix creates a rows×cols matrix filled by fill(r, c).
func NewMatrix(rows, cols int, fill func(r, c int) float64) Matrix {
	return tensor.NewMatrix(rows, cols, fill)
}

// Elementwise operations. Operands must have equal lengths.
var (
	Map   = tensor.Map
	Zip   = tensor.Zip
	Add   = tensor.Add
	Sub   = tensor.Sub
	Mul   = tensor.Mul
	Scale = tensor.Scale
)

// Reductions and products.
var (
	Dot    = tensor.Dot
	Sum    = tensor.Sum
	Mean   = tensor.Mean
	Concat = tensor.Concat
	MatVec = tensor.MatVec
	VecMat = tensor.VecMat
)

// NewRand returns a random source seeded with seed.
func NewRand(seed int64) *rand.Rand {
	return tensor.NewRand(seed)
}
