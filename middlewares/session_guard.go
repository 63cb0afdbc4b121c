package middlewares

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrymomot/sitekit/internal"
	"github.com/dmitrymomot/sitekit/pkg/authgate"
)

// Defaults for SessionGuard.
const (
	DefaultSessionCookie = "token"
	DefaultProtectedPath = "/admin"
	DefaultHomePath      = "/admin/dashboard"
)

// SessionGuardConfig configures the session guard.
type SessionGuardConfig struct {
	Now        func() time.Time
	CookieName string
	Protected  string // path prefix that requires a session
	LoginPath  string
	HomePath   string // where a signed-in visitor of the login page goes
}

// SessionGuardOption configures SessionGuardConfig.
type SessionGuardOption func(*SessionGuardConfig)

// WithSessionCookie sets the name of the backend session cookie.
func WithSessionCookie(name string) SessionGuardOption {
	return func(cfg *SessionGuardConfig) {
		if name != "" {
			cfg.CookieName = name
		}
	}
}

// WithGuardPaths overrides the protected prefix, login and home paths.
// Empty values keep the defaults.
func WithGuardPaths(protected, login, home string) SessionGuardOption {
	return func(cfg *SessionGuardConfig) {
		if protected != "" {
			cfg.Protected = protected
		}
		if login != "" {
			cfg.LoginPath = login
		}
		if home != "" {
			cfg.HomePath = home
		}
	}
}

// WithGuardClock sets the clock used for the expiry check.
func WithGuardClock(now func() time.Time) SessionGuardOption {
	return func(cfg *SessionGuardConfig) {
		if now != nil {
			cfg.Now = now
		}
	}
}

// SessionGuard is a cheap pre-check that runs before any backend call.
// Protected pages without a session cookie redirect to the login page with
// the page as return target; the login page with a session cookie redirects
// home. A cookie holding a JWT whose exp has passed counts as absent. The
// token is parsed without verification: the backend stays the authority
// and a forged token only gets as far as the first 401.
func SessionGuard(opts ...SessionGuardOption) internal.Middleware {
	cfg := &SessionGuardConfig{
		Now:        time.Now,
		CookieName: DefaultSessionCookie,
		Protected:  DefaultProtectedPath,
		LoginPath:  authgate.DefaultLoginPath,
		HomePath:   DefaultHomePath,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			path := c.Request().URL.Path
			if !underPrefix(path, cfg.Protected) {
				return next(c)
			}

			hasSession := false
			if token, err := c.Cookie(cfg.CookieName); err == nil && token != "" {
				hasSession = !expired(parser, token, cfg.Now())
			}

			switch {
			case path == cfg.LoginPath && hasSession:
				return c.Redirect(http.StatusSeeOther, cfg.HomePath)
			case path != cfg.LoginPath && !hasSession:
				return c.Redirect(http.StatusSeeOther, internal.LoginRedirect(c, cfg.LoginPath))
			}
			return next(c)
		}
	}
}

func underPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, strings.TrimSuffix(prefix, "/")+"/")
}

// expired reports whether token is a JWT with an exp in the past. Opaque
// tokens are never treated as expired.
func expired(parser *jwt.Parser, token string, now time.Time) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && !now.Before(claims.ExpiresAt.Time)
}
