package permissions

import "fmt"

// ValidationError reports a configuration mistake the invoking user can
// fix (bad rank range, restricted command, unknown rank reference). It
// is surfaced verbatim and never retried; database failures use plain
// wrapped errors instead.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
