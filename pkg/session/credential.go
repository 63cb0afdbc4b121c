package session

import (
	"log/slog"
	"net/http"
	"strings"
)

type kind uint8

const (
	kindAnonymous kind = iota
	kindExplicit
	kindAmbient
)

// Credential describes how a backend call authenticates.
// The zero value is anonymous: no cookies are sent.
type Credential struct {
	cookie string
	kind   kind
}

// Explicit returns a credential that injects cookieHeader as the Cookie header.
// Used by server rendering to forward the originating caller's session.
// An empty or blank header yields an anonymous credential.
func Explicit(cookieHeader string) Credential {
	cookieHeader = strings.TrimSpace(cookieHeader)
	if cookieHeader == "" {
		return Credential{}
	}
	return Credential{kind: kindExplicit, cookie: cookieHeader}
}

// Ambient returns a credential that relies on the client's cookie jar.
func Ambient() Credential {
	return Credential{kind: kindAmbient}
}

// Anonymous returns a credential that sends no cookies.
func Anonymous() Credential {
	return Credential{}
}

// FromRequest serializes the cookies of an incoming request into an explicit
// credential ("name=value; name2=value2").
// A request without cookies yields an anonymous credential.
func FromRequest(r *http.Request) Credential {
	if r == nil {
		return Credential{}
	}
	cookies := r.Cookies()
	if len(cookies) == 0 {
		return Credential{}
	}

	var b strings.Builder
	for i, c := range cookies {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(c.Name)
		b.WriteByte('=')
		b.WriteString(c.Value)
	}
	return Explicit(b.String())
}

// IsExplicit reports whether the credential carries a cookie string.
func (c Credential) IsExplicit() bool { return c.kind == kindExplicit }

// IsAmbient reports whether the credential relies on the cookie jar.
func (c Credential) IsAmbient() bool { return c.kind == kindAmbient }

// IsAnonymous reports whether no credential is attached.
func (c Credential) IsAnonymous() bool { return c.kind == kindAnonymous }

// Apply attaches the credential to an outbound request.
// Only explicit credentials touch the request; ambient ones are handled
// by the http.Client's jar.
func (c Credential) Apply(r *http.Request) {
	if c.kind == kindExplicit {
		r.Header.Set("Cookie", c.cookie)
	}
}

// String never exposes the cookie value.
func (c Credential) String() string {
	switch c.kind {
	case kindExplicit:
		return "explicit[redacted]"
	case kindAmbient:
		return "ambient"
	default:
		return "anonymous"
	}
}

// LogValue implements slog.LogValuer so credentials are always logged redacted.
func (c Credential) LogValue() slog.Value {
	return slog.StringValue(c.String())
}

var _ slog.LogValuer = Credential{}
