package serialization

import (
	"fmt"
	"math"
)

// ValidateVector checks that a restored vector has the expected length and
// only finite entries.
func ValidateVector[V ~[]float64](layer string, v V, size int) error {
	if len(v) != size {
		return &ContentError{
			Layer:   layer,
			Details: fmt.Sprintf("expected %d values, got %d", size, len(v)),
			Err:     ErrShapeMismatch,
		}
	}
	for i, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return &ContentError{
				Layer:   layer,
				Details: fmt.Sprintf("entry %d is %v", i, x),
				Err:     ErrNotFinite,
			}
		}
	}
	return nil
}

// ValidateMatrix checks that a restored matrix is rows×cols with finite entries.
func ValidateMatrix[V ~[]float64](layer string, m []V, rows, cols int) error {
	if len(m) != rows {
		return &ContentError{
			Layer:   layer,
			Details: fmt.Sprintf("expected %d rows, got %d", rows, len(m)),
			Err:     ErrShapeMismatch,
		}
	}
	for r, row := range m {
		if err := ValidateVector(layer, row, cols); err != nil {
			return fmt.Errorf("row %d: %w", r, err)
		}
	}
	return nil
}
