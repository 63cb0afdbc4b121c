package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// Sentinel errors.
var (
	// ErrUnauthorized matches any *Error with status 401.
	ErrUnauthorized = errors.New("apiclient: unauthorized")

	// ErrNotFound matches any *Error with status 404.
	ErrNotFound = errors.New("apiclient: not found")

	// ErrInvalidInput is matched by client-side validation failures
	// that stop a call before it reaches the network.
	ErrInvalidInput = errors.New("apiclient: invalid input")

	// ErrInvalidRequest is returned by NewRequest for an unusable descriptor.
	ErrInvalidRequest = errors.New("apiclient: invalid request")

	// ErrInvalidBaseURL is returned by New when the origin is malformed.
	ErrInvalidBaseURL = errors.New("apiclient: invalid base URL")

	// ErrEncodeBody is returned when a request body cannot be serialized.
	ErrEncodeBody = errors.New("apiclient: failed to encode request body")

	// ErrDecodeResponse is returned when a non-empty success body is not valid JSON.
	ErrDecodeResponse = errors.New("apiclient: failed to decode response body")
)

// fallbackMessage is used when neither the payload nor the status text has a message.
const fallbackMessage = "API request failed"

// Error is returned for every non-2xx response.
type Error struct {
	// Payload is the best-effort parsed error body. Nil when the body is empty or not JSON.
	Payload any

	// Message is resolved from payload.message, then StatusText, then a generic fallback.
	Message string

	// StatusText is the transport status text ("Not Found").
	StatusText string

	// Status is the numeric HTTP status code.
	Status int
}

func (e *Error) Error() string {
	return e.Message
}

// Is lets errors.Is match ErrUnauthorized and ErrNotFound by status.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// newError builds an *Error from a failed response.
func newError(status int, statusText string, body []byte) *Error {
	e := &Error{Status: status, StatusText: statusText}

	if len(body) > 0 && gjson.ValidBytes(body) {
		var payload any
		if err := json.Unmarshal(body, &payload); err == nil {
			e.Payload = payload
		}
		e.Message = payloadMessage(gjson.GetBytes(body, "message"))
	}

	switch {
	case e.Message != "":
	case statusText != "":
		e.Message = statusText
	default:
		e.Message = fallbackMessage
	}
	return e
}

// payloadMessage reads the message field. Validation errors from the backend
// may carry a list of messages; those are joined.
func payloadMessage(v gjson.Result) string {
	switch {
	case v.Type == gjson.String:
		return strings.TrimSpace(v.Str)
	case v.IsArray():
		parts := make([]string, 0, len(v.Array()))
		for _, item := range v.Array() {
			if item.Type == gjson.String && item.Str != "" {
				parts = append(parts, item.Str)
			}
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

// NetworkError is returned when no response was obtained at all:
// connection failure, timeout or cancellation. It carries no status.
type NetworkError struct {
	Err    error
	Method string
	URL    string
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("apiclient: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the call exceeded its deadline.
func (e *NetworkError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

// IsUnauthorized reports whether err is an authentication-denied response.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsNetwork reports whether err is a network-level failure.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

// AsError extracts the *Error from err if present.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
