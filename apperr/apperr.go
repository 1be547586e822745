// Package apperr defines the error taxonomy shared by the validator,
// service, and repository layers. Callers classify failures with
// errors.Is against the sentinels below; the HTTP layer maps each
// sentinel to a status code.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingField indicates a required field was absent from a payload.
	ErrMissingField = errors.New("missing required field")
	// ErrOutOfRange indicates a numeric field fell outside its allowed range.
	ErrOutOfRange = errors.New("value out of range")
	// ErrWrongCardinality indicates a collection had the wrong number of elements.
	ErrWrongCardinality = errors.New("wrong cardinality")
	// ErrInvalidValue indicates a field could not be coerced to its expected type.
	ErrInvalidValue = errors.New("invalid value")
	// ErrConflict indicates a unique-constraint violation (duplicate email or session id).
	ErrConflict = errors.New("conflict")
	// ErrNotFound indicates a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
)

// Wrap attaches a human-readable message to one of the sentinel kinds.
func Wrap(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}
