package backend

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/sitekit/pkg/apiclient"
	"github.com/dmitrymomot/sitekit/pkg/session"
)

// Auth wraps the backend's session endpoints.
type Auth struct {
	client *apiclient.Client
	logger *slog.Logger
}

// Login exchanges credentials for a session. The returned header carries the
// backend's Set-Cookie values so a server can relay them to the browser.
// In client context the cookie jar stores them on its own.
func (a Auth) Login(ctx context.Context, in LoginInput) (LoginResult, http.Header, error) {
	if err := Validate(in); err != nil {
		return LoginResult{}, nil, err
	}

	cred := session.Anonymous()
	if a.client.Mode() == session.ClientContext {
		cred = session.Ambient()
	}

	req, err := apiclient.NewRequest(http.MethodPost, PathLogin,
		apiclient.WithBody(in), apiclient.WithCredential(cred))
	if err != nil {
		return LoginResult{}, nil, err
	}

	resp, err := a.client.Send(ctx, req)
	if err != nil {
		return LoginResult{}, nil, err
	}

	var out LoginResult
	if err := resp.Decode(&out); err != nil {
		return LoginResult{}, resp.Header, err
	}
	return out, resp.Header, nil
}

// Me returns the principal of cred.
func (a Auth) Me(ctx context.Context, cred session.Credential) (*User, error) {
	return call[*User](ctx, a.client, http.MethodGet, PathMe, apiclient.WithCredential(cred))
}

// Logout ends the session. The returned header carries the cookie-clearing
// Set-Cookie values.
func (a Auth) Logout(ctx context.Context, cred session.Credential) (http.Header, error) {
	req, err := apiclient.NewRequest(http.MethodPost, PathLogout,
		apiclient.WithCredential(cred), apiclient.WithoutResponseBody())
	if err != nil {
		return nil, err
	}
	resp, err := a.client.Send(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.Header, nil
}

// CurrentUser is Me with every failure mapped to nil.
func (a Auth) CurrentUser(ctx context.Context, cred session.Credential) *User {
	u, err := a.Me(ctx, cred)
	if err != nil {
		if !apiclient.IsUnauthorized(err) {
			a.logger.DebugContext(ctx, "current user lookup failed", slog.Any("error", err))
		}
		return nil
	}
	return u
}
