package nn

import (
	"errors"
	"fmt"
)

// Usage errors. They mean a caller broke the forward/backward protocol and
// the gradients of the call can no longer be trusted.
var (
	ErrStaleTrace        = errors.New("net has been mutated since trace was issued")
	ErrTraceConsumed     = errors.New("trace has already been passed back")
	ErrForeignTrace      = errors.New("trace was not issued by this transformation")
	ErrDuplicateHandoff  = errors.New("split branches cannot invoke multiple or cached backward passes")
	ErrMissingHandoff    = errors.New("split branch did not hand off its error")
	ErrInferenceBackward = errors.New("dropout backward pass invoked outside training")
	ErrErrorSize         = errors.New("error size does not match net output")
)

// Construction errors.
var (
	ErrSolverDiverged = errors.New("bandwidth solver failed in laconic layer")
	ErrInvalidLayer   = errors.New("invalid layer configuration")
)

// usage panics with err wrapped in context. Protocol violations inside a
// continuation cannot be returned, so they unwind the whole call.
func usage(err error, format string, args ...any) {
	panic(fmt.Errorf("%w: %s", err, fmt.Sprintf(format, args...)))
}

func invalid(layer, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidLayer, layer, fmt.Sprintf(format, args...))
}
