package economy

import (
	"errors"
	"fmt"
)

// ErrInvariantViolation is returned whenever an economic state cannot be
// priced. Callers match it with errors.Is.
var ErrInvariantViolation = errors.New("economic invariant violated")

// InvariantError describes which field broke an invariant.
type InvariantError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: %s=%g (%s)", ErrInvariantViolation, e.Field, e.Value, e.Reason)
}

func (e *InvariantError) Unwrap() error {
	return ErrInvariantViolation
}

func violation(field string, value float64, reason string) error {
	return &InvariantError{Field: field, Value: value, Reason: reason}
}
