// Copyright 2025 Combobulate Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the vectors and matrices nets compute with.
//
// Vectors are plain float64 slices and matrices are row-major slices of
// vectors, so values can be built with ordinary literals:
//
//	input := tensor.Vector{0, 1}
//	weights := tensor.Matrix{{0.5, -0.5}, {1, 1}}
//	output := tensor.MatVec(weights, input)
//
// All randomness flows through an explicit *rand.Rand; NewRand makes runs
// reproducible.
package tensor
