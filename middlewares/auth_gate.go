package middlewares

import (
	"net/http"

	"github.com/dmitrymomot/sitekit/internal"
	"github.com/dmitrymomot/sitekit/pkg/apiclient"
	"github.com/dmitrymomot/sitekit/pkg/authgate"
	"github.com/dmitrymomot/sitekit/pkg/htmx"
)

// principalKey is the context key for the authenticated principal.
type principalKey struct{}

// AuthGateConfig configures the auth gate middleware.
type AuthGateConfig struct {
	LoginPath string
	Skip      func(c internal.Context) bool
}

// AuthGateOption configures AuthGateConfig.
type AuthGateOption func(*AuthGateConfig)

// WithAuthLoginPath sets the login surface. It is never gated.
func WithAuthLoginPath(path string) AuthGateOption {
	return func(cfg *AuthGateConfig) {
		if path != "" {
			cfg.LoginPath = path
		}
	}
}

// WithAuthSkip bypasses the identity check for matching requests.
func WithAuthSkip(skip func(c internal.Context) bool) AuthGateOption {
	return func(cfg *AuthGateConfig) {
		cfg.Skip = skip
	}
}

// AuthGate resolves the principal of the request before the handler runs.
// It mounts an authgate.Gate on the request-scoped store, with a coordinator
// that records its one redirect instead of performing it; the middleware
// then answers with that redirect. identity builds the identity read for the
// request, typically backend Auth.Me bound to c.Credential().
//
// A backend that cannot be reached fails the request with 503 rather than
// sending a signed-in user to the login page.
func AuthGate[P any](identity func(c internal.Context) authgate.Identity[P], opts ...AuthGateOption) internal.Middleware {
	cfg := &AuthGateConfig{LoginPath: authgate.DefaultLoginPath}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			store := c.Store()
			nav := &authgate.DeferredNavigator{}
			coord := authgate.NewCoordinator(nav,
				authgate.WithLoginPath(cfg.LoginPath),
				authgate.WithLogger(c.Logger()),
			)
			detach := coord.Attach(store)
			defer detach()

			gate := authgate.New(store, coord, identity(c))
			defer gate.Unmount()

			skip := c.Request().URL.Path == cfg.LoginPath || (cfg.Skip != nil && cfg.Skip(c))
			gate.Mount(c, htmx.CurrentPath(c.Request()), authgate.Skip(skip))

			status, err := gate.Wait(c)
			if err != nil {
				return err
			}

			switch status {
			case authgate.Skipped:
				return next(c)
			case authgate.Authenticated:
				c.Set(principalKey{}, gate.View().Principal)
				return next(c)
			}

			if gerr := gate.Err(); apiclient.IsNetwork(gerr) {
				return gerr
			}
			target, ok := nav.Target()
			if !ok {
				target = internal.LoginRedirect(c, cfg.LoginPath)
			}
			c.LogDebug("identity check failed, redirecting", "target", target)
			return c.Redirect(http.StatusSeeOther, target)
		}
	}
}

// Principal returns the principal AuthGate stored for this request.
func Principal[P any](c internal.Context) (P, bool) {
	p, ok := c.Get(principalKey{}).(P)
	return p, ok
}
