package logstore

import (
	"errors"
)

// Common errors.
var (
	ErrNotFound      = errors.New("log not found")
	ErrInvalidName   = errors.New("session name has no valid characters")
	ErrInvalidUpdate = errors.New("invalid log update")
	ErrMismatch      = errors.New("log does not match update")
	ErrMalformedLog  = errors.New("malformed log file")
)
