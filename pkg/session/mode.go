package session

import (
	"errors"
	"net/http"
	"net/http/cookiejar"

	"golang.org/x/net/publicsuffix"
)

// Mode is the execution context of a backend client.
type Mode uint8

const (
	// ServerContext forwards the incoming request's cookies explicitly.
	ServerContext Mode = iota
	// ClientContext relies on the client's own cookie jar.
	ClientContext
)

func (m Mode) String() string {
	if m == ClientContext {
		return "client"
	}
	return "server"
}

// Permit checks that c may be used in this execution context.
func (m Mode) Permit(c Credential) error {
	switch m {
	case ServerContext:
		if c.IsAmbient() {
			return ErrAmbientUnavailable
		}
	case ClientContext:
		if c.IsExplicit() {
			return ErrExplicitForbidden
		}
	}
	return nil
}

// NewJar creates the cookie jar used by client-context calls.
func NewJar() (http.CookieJar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, errors.Join(ErrJar, err)
	}
	return jar, nil
}
