package serialization

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrMalformedContent = errors.New("malformed serialized content")
	ErrShapeMismatch    = errors.New("serialized shape does not match layer")
	ErrNotFinite        = errors.New("value is not finite")
)

// ContentError provides detailed information about content that could not be
// restored into a layer.
type ContentError struct {
	Layer   string // Layer kind (e.g. "dense", "pipe")
	Details string // Additional details
	Err     error  // Sentinel describing the failure class
}

// Error implements the error interface.
func (e *ContentError) Error() string {
	if e.Layer != "" {
		return fmt.Sprintf("%s: layer %q: %s", e.Err, e.Layer, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Err, e.Details)
}

// Unwrap returns the sentinel error so callers can use errors.Is.
func (e *ContentError) Unwrap() error {
	return e.Err
}

func malformed(layer, format string, args ...any) error {
	return &ContentError{Layer: layer, Details: fmt.Sprintf(format, args...), Err: ErrMalformedContent}
}
