package tensor

import "github.com/DuncanWalter/combobulate/internal/parallel"

// Parallel controls how MatVec and AddOuter spread rows across goroutines.
// Results do not depend on it: every row is computed by one goroutine.
var Parallel = parallel.DefaultConfig()

// Matrix is a row-major matrix. Every row has the same length.
type Matrix []Vector

// NewMatrix creates a rows×cols matrix filled by fill(r, c).
func NewMatrix(rows, cols int, fill func(r, c int) float64) Matrix {
	m := make(Matrix, rows)
	for r := range m {
		row := make(Vector, cols)
		for c := range row {
			row[c] = fill(r, c)
		}
		m[r] = row
	}
	return m
}

// ZerosMatrix creates a rows×cols zero matrix.
func ZerosMatrix(rows, cols int) Matrix {
	m := make(Matrix, rows)
	for r := range m {
		m[r] = make(Vector, cols)
	}
	return m
}

// Rows returns the number of rows.
func (m Matrix) Rows() int {
	return len(m)
}

// Cols returns the number of columns, or 0 for an empty matrix.
func (m Matrix) Cols() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// Clone returns a deep copy of m.
func (m Matrix) Clone() Matrix {
	c := make(Matrix, len(m))
	for r, row := range m {
		c[r] = row.Clone()
	}
	return c
}

// Zero sets every element of m to 0 without reallocating.
func (m Matrix) Zero() {
	for _, row := range m {
		row.Fill(0)
	}
}

// MatVec returns m·v, one entry per row of m.
func MatVec(m Matrix, v Vector) Vector {
	if len(m) > 0 {
		checkLen("tensor.MatVec", len(v), m.Cols())
	}
	out := make(Vector, len(m))
	parallel.For(len(m), len(v), func(r int) {
		out[r] = Dot(m[r], v)
	}, Parallel)
	return out
}

// VecMat returns v·m, the product of the row vector v with m.
// len(v) must equal m.Rows(); the result has m.Cols() entries.
func VecMat(v Vector, m Matrix) Vector {
	checkLen("tensor.VecMat", len(v), len(m))
	out := make(Vector, m.Cols())
	for r, row := range m {
		AddScaledInto(out, row, v[r])
	}
	return out
}

// AddOuter accumulates the outer product col⊗row into dst:
// dst[r][c] += col[r] * row[c].
func AddOuter(dst Matrix, col, row Vector) Matrix {
	checkLen("tensor.AddOuter", len(dst), len(col))
	if len(dst) > 0 {
		checkLen("tensor.AddOuter", len(row), dst.Cols())
	}
	parallel.For(len(col), len(row), func(r int) {
		AddScaledInto(dst[r], row, col[r])
	}, Parallel)
	return dst
}

// AddScaledMatrix performs dst += s * src.
func AddScaledMatrix(dst, src Matrix, s float64) Matrix {
	checkLen("tensor.AddScaledMatrix", len(dst), len(src))
	for r := range dst {
		AddScaledInto(dst[r], src[r], s)
	}
	return dst
}

// ScaleMatrixInPlace multiplies every element of m by s.
func ScaleMatrixInPlace(m Matrix, s float64) Matrix {
	for _, row := range m {
		ScaleInto(row, row, s)
	}
	return m
}
