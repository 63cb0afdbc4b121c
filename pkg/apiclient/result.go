package apiclient

import (
	"context"
	"errors"
)

// ErrorKind classifies failures for presentation.
type ErrorKind uint8

const (
	KindNone ErrorKind = iota
	KindNetwork
	KindUnauthorized
	KindNotFound
	KindTransport
	KindInvalid
	KindUnknown
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNetwork:
		return "network"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindTransport:
		return "transport"
	case KindInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Kind classifies err.
func Kind(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case IsUnauthorized(err):
		return KindUnauthorized
	case IsNotFound(err):
		return KindNotFound
	case errors.Is(err, ErrInvalidInput):
		return KindInvalid
	case IsNetwork(err):
		return KindNetwork
	}
	if _, ok := AsError(err); ok {
		return KindTransport
	}
	return KindUnknown
}

// Message returns a human-readable message for err, or fallback when err
// carries none.
func Message(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	if e, ok := AsError(err); ok && e.Message != "" {
		return e.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}

// Result is the tagged outcome of a call: a value or a classified error.
type Result[T any] struct {
	Value T
	Err   error
}

// Capture wraps a (value, error) pair.
func Capture[T any](v T, err error) Result[T] {
	if err != nil {
		var zero T
		return Result[T]{Value: zero, Err: err}
	}
	return Result[T]{Value: v}
}

// Ok reports whether the call succeeded.
func (r Result[T]) Ok() bool { return r.Err == nil }

// Kind classifies the error.
func (r Result[T]) Kind() ErrorKind { return Kind(r.Err) }

// Message returns the error message, or fallback.
func (r Result[T]) Message(fallback string) string { return Message(r.Err, fallback) }

// Call executes req and decodes the body into a T.
// Empty responses yield the zero T.
func Call[T any](ctx context.Context, c *Client, req *Request) (T, error) {
	var out T
	if err := c.Do(ctx, req, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
