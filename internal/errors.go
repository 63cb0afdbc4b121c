package internal

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/sitekit/pkg/apiclient"
	"github.com/dmitrymomot/sitekit/pkg/site"
)

// HTTPError is an error carrying everything an error page or toast needs.
type HTTPError struct {
	// Err is the cause. Logged, never shown.
	Err error

	// Message is the user-facing message.
	Message string

	// Title defaults to the status text.
	Title string

	// ErrorCode is a stable machine-readable code ("site_not_found").
	ErrorCode string

	// RequestID is filled in by the error handler when known.
	RequestID string

	Code int
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func (e *HTTPError) StatusCode() int {
	return e.Code
}

func (e *HTTPError) StatusText() string {
	if e.Title != "" {
		return e.Title
	}
	return http.StatusText(e.Code)
}

// HTTPErrorOption configures an HTTPError.
type HTTPErrorOption func(*HTTPError)

// NewHTTPError creates an HTTPError with the given status code and message.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	e := &HTTPError{Code: code, Message: message}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func WithTitle(title string) HTTPErrorOption {
	return func(e *HTTPError) { e.Title = title }
}

func WithErrorCode(code string) HTTPErrorOption {
	return func(e *HTTPError) { e.ErrorCode = code }
}

func WithRequestID(id string) HTTPErrorOption {
	return func(e *HTTPError) { e.RequestID = id }
}

func WithError(err error) HTTPErrorOption {
	return func(e *HTTPError) { e.Err = err }
}

// Convenience constructors for common HTTP errors.

func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message, opts...)
}

func ErrUnauthorized(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusUnauthorized, message, opts...)
}

func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusForbidden, message, opts...)
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message, opts...)
}

func ErrUnprocessable(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusUnprocessableEntity, message, opts...)
}

func ErrTooManyRequests(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusTooManyRequests, message, opts...)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, message, opts...)
}

func ErrBadGateway(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusBadGateway, message, opts...)
}

func ErrServiceUnavailable(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusServiceUnavailable, message, opts...)
}

// IsHTTPError reports whether err wraps an HTTPError.
func IsHTTPError(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr)
}

// AsHTTPError extracts the HTTPError from err, or returns nil.
func AsHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return nil
}

// MapError converts any handler error into an HTTPError.
// Site resolution failures always present as 404, whatever their cause.
// Unauthorized maps to 401; the default error handler turns that into a
// login redirect before anything is rendered.
func MapError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	if httpErr := AsHTTPError(err); httpErr != nil {
		return httpErr
	}
	if errors.Is(err, site.ErrNotFound) {
		return ErrNotFound("Site not found", WithError(err), WithErrorCode("site_not_found"))
	}

	switch apiclient.Kind(err) {
	case apiclient.KindUnauthorized:
		return ErrUnauthorized("Please sign in to continue", WithError(err), WithErrorCode("unauthorized"))
	case apiclient.KindNotFound:
		return ErrNotFound(apiclient.Message(err, "Not found"), WithError(err), WithErrorCode("not_found"))
	case apiclient.KindInvalid:
		return ErrUnprocessable(apiclient.Message(err, "Invalid input"), WithError(err), WithErrorCode("invalid_input"))
	case apiclient.KindNetwork:
		return ErrServiceUnavailable("The service is temporarily unavailable", WithError(err), WithErrorCode("backend_unavailable"))
	case apiclient.KindTransport:
		return ErrBadGateway(apiclient.Message(err, "Upstream request failed"), WithError(err), WithErrorCode("backend_error"))
	}
	return ErrInternal("Internal Server Error", WithError(err))
}
