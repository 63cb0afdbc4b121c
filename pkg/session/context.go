package session

import (
	"context"
	"net/http"
)

type credentialKey struct{}

// WithCredential returns a copy of ctx carrying c.
func WithCredential(ctx context.Context, c Credential) context.Context {
	return context.WithValue(ctx, credentialKey{}, c)
}

// FromContext returns the credential stored in ctx, or an anonymous one.
func FromContext(ctx context.Context) Credential {
	if c, ok := ctx.Value(credentialKey{}).(Credential); ok {
		return c
	}
	return Credential{}
}

// ForwardSetCookies relays backend Set-Cookie headers to the browser.
// The Domain attribute is dropped so the cookie binds to the host that
// served the page rather than the backend's host.
func ForwardSetCookies(w http.ResponseWriter, from http.Header) int {
	n := 0
	for _, line := range from.Values("Set-Cookie") {
		c, err := http.ParseSetCookie(line)
		if err != nil {
			continue
		}
		c.Domain = ""
		http.SetCookie(w, c)
		n++
	}
	return n
}
