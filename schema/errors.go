package schema

import (
	"errors"
	"fmt"
)

// ErrValidation is matched by every *ValidationError
var ErrValidation = errors.New("validation error")

// ValidationError reports a call rejected before any request was made
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.Reason)
}

// Is reports whether target is ErrValidation
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}
