// Package tensor implements the dense vector and matrix primitives every layer
// is built from.
//
// Vectors are plain float64 slices and matrices are row-major slices of rows.
// Nothing here allocates behind the caller's back: functions ending in Into
// write to a destination the caller owns, the rest return fresh storage.
//
// Length mismatches are programming errors and panic.
package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Vector is a one dimensional row of values.
type Vector []float64

// NewVector creates a vector of length n filled by fill(i).
func NewVector(n int, fill func(i int) float64) Vector {
	v := make(Vector, n)
	for i := range v {
		v[i] = fill(i)
	}
	return v
}

// Zeros creates a zero vector of length n.
func Zeros(n int) Vector {
	return make(Vector, n)
}

// Clone returns a copy of v.
func (v Vector) Clone() Vector {
	c := make(Vector, len(v))
	copy(c, v)
	return c
}

// Fill sets every element of v to x.
func (v Vector) Fill(x float64) {
	for i := range v {
		v[i] = x
	}
}

// Map applies f to every element of v and returns the results.
func Map(v Vector, f func(x float64, i int) float64) Vector {
	out := make(Vector, len(v))
	for i, x := range v {
		out[i] = f(x, i)
	}
	return out
}

// Zip combines a and b elementwise with f.
func Zip(a, b Vector, f func(x, y float64, i int) float64) Vector {
	return ZipInto(make(Vector, len(a)), a, b, f)
}

// ZipInto combines a and b elementwise with f, writing to dst.
// dst may alias a or b.
func ZipInto(dst, a, b Vector, f func(x, y float64, i int) float64) Vector {
	checkLen("tensor.Zip", len(a), len(b))
	checkLen("tensor.Zip", len(dst), len(a))
	for i := range a {
		dst[i] = f(a[i], b[i], i)
	}
	return dst
}

// Add returns a + b.
func Add(a, b Vector) Vector {
	return AddInto(make(Vector, len(a)), a, b)
}

// AddInto writes a + b to dst.
func AddInto(dst, a, b Vector) Vector {
	checkLen("tensor.Add", len(a), len(b))
	checkLen("tensor.Add", len(dst), len(a))
	return floats.AddTo(dst, a, b)
}

// Sub returns a - b.
func Sub(a, b Vector) Vector {
	checkLen("tensor.Sub", len(a), len(b))
	return floats.SubTo(make(Vector, len(a)), a, b)
}

// Mul returns the elementwise product of a and b.
func Mul(a, b Vector) Vector {
	checkLen("tensor.Mul", len(a), len(b))
	return floats.MulTo(make(Vector, len(a)), a, b)
}

// Scale returns s * v.
func Scale(v Vector, s float64) Vector {
	return ScaleInto(make(Vector, len(v)), v, s)
}

// ScaleInto writes s * v to dst.
func ScaleInto(dst, v Vector, s float64) Vector {
	checkLen("tensor.Scale", len(dst), len(v))
	return floats.ScaleTo(dst, s, v)
}

// AddScaledInto performs dst += s * v.
func AddScaledInto(dst, v Vector, s float64) Vector {
	checkLen("tensor.AddScaled", len(dst), len(v))
	floats.AddScaled(dst, s, v)
	return dst
}

// Dot returns the inner product of a and b.
func Dot(a, b Vector) float64 {
	checkLen("tensor.Dot", len(a), len(b))
	return floats.Dot(a, b)
}

// Sum returns the sum of the elements of v.
func Sum(v Vector) float64 {
	return floats.Sum(v)
}

// Mean returns the arithmetic mean of v, or 0 for an empty vector.
func Mean(v Vector) float64 {
	if len(v) == 0 {
		return 0
	}
	return Sum(v) / float64(len(v))
}

// Concat joins vectors end to end.
func Concat(vs ...Vector) Vector {
	n := 0
	for _, v := range vs {
		n += len(v)
	}
	out := make(Vector, 0, n)
	for _, v := range vs {
		out = append(out, v...)
	}
	return out
}

func checkLen(op string, got, want int) {
	if got != want {
		panic(fmt.Sprintf("%s: length mismatch %d != %d", op, got, want))
	}
}
