package site

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is satisfied by every resolution failure.
	ErrNotFound = errors.New("site: not found")
	// ErrUnavailable marks failures caused by the backend rather than the slug.
	ErrUnavailable = errors.New("site: backend unavailable")
)

// ResolveError is a resolution that failed for a reason other than an
// unknown slug. It matches both ErrNotFound and ErrUnavailable.
type ResolveError struct {
	Slug string
	Err  error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("site: resolve %q: %v", e.Slug, e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }

func (e *ResolveError) Is(target error) bool {
	return target == ErrNotFound || target == ErrUnavailable
}
