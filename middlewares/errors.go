package middlewares

import (
	"errors"
	"fmt"
)

// ErrRateLimited is returned when a client exceeds its request budget.
var ErrRateLimited = errors.New("middlewares: rate limit exceeded")

// PanicError is a recovered panic.
type PanicError struct {
	Value any
	Stack []byte // nil when stack capture is disabled
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// AsPanicError extracts the PanicError from err if present.
func AsPanicError(err error) (*PanicError, bool) {
	var pe *PanicError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
