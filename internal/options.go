package internal

import (
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmitrymomot/sitekit/pkg/cookie"
	"github.com/dmitrymomot/sitekit/pkg/swr"
)

// Option configures the application.
type Option func(*App)

// WithBaseDomain sets the domain tenants are subdomains of, enabling
// Context.Tenant.
func WithBaseDomain(domain string) Option {
	return func(a *App) {
		a.baseDomain = strings.ToLower(strings.TrimSpace(domain))
	}
}

// WithLoginPath overrides DefaultLoginPath.
func WithLoginPath(path string) Option {
	return func(a *App) {
		if strings.HasPrefix(path, "/") {
			a.loginPath = path
		}
	}
}

// WithMiddleware adds global middleware, applied in the order given.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithHandlers registers handlers that declare routes.
func WithHandlers(h ...Handler) Option {
	return func(a *App) {
		a.handlers = append(a.handlers, h...)
	}
}

// WithMount attaches a plain http.Handler, such as the metrics endpoint.
func WithMount(pattern string, h http.Handler) Option {
	return func(a *App) {
		if h != nil {
			a.mounts = append(a.mounts, mount{handler: h, pattern: pattern})
		}
	}
}

// WithStaticFiles mounts a static file handler at the given pattern.
// Directory listings are disabled.
//
// Example:
//
//	//go:embed public
//	var assets embed.FS
//
//	internal.WithStaticFiles("/static", assets, "public")
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return func(a *App) {
		subFS, err := fs.Sub(fsys, subDir)
		if err != nil {
			panic(err)
		}

		fileServer := http.StripPrefix(strings.TrimSuffix(pattern, "/"), http.FileServerFS(subFS))

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasSuffix(r.URL.Path, "/") {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Cache-Control", "public, max-age=3600")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			fileServer.ServeHTTP(w, r)
		})

		a.mounts = append(a.mounts, mount{handler: handler, pattern: pattern})
	}
}

// WithErrorHandler replaces DefaultErrorHandler.
//
// Example:
//
//	internal.WithErrorHandler(func(c internal.Context, err error) error {
//	    e := internal.MapError(err)
//	    return c.Render(e.Code, views.ErrorPage(e))
//	})
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		a.errorHandler = h
	}
}

// WithNotFoundHandler sets a custom 404 handler.
func WithNotFoundHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.notFoundHandler = h
	}
}

// WithMethodNotAllowedHandler sets a custom 405 handler.
func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.methodNotAllowedHandler = h
	}
}

// WithHealthChecks enables /health/live and /health/ready.
//
// Example:
//
//	internal.WithHealthChecks(
//	    internal.WithReadinessCheck("backend", health.Reachable(origin, nil)),
//	    internal.WithReadinessCheck("redis", redis.Ping(client)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.healthConfig = cfg
	}
}

// WithLogger sets the application logger, tagged with a component name.
//
// Example:
//
//	internal.WithLogger(log, "console")
func WithLogger(l *slog.Logger, component string) Option {
	return func(a *App) {
		if l == nil {
			return
		}
		if component != "" {
			l = l.With(slog.String("component", component))
		}
		a.logger = l
	}
}

// WithCookieOptions configures the cookie manager used for flash notices.
//
// Example:
//
//	internal.WithCookieOptions(
//	    cookie.WithSecret(cfg.CookieSecret),
//	    cookie.WithSecure(cfg.IsProduction()),
//	)
func WithCookieOptions(opts ...cookie.Option) Option {
	return func(a *App) {
		a.cookieManager = cookie.New(opts...)
	}
}

// WithStoreOptions configures every request-scoped store.
//
// Example:
//
//	internal.WithStoreOptions(
//	    swr.WithPolicy(policy),
//	    swr.WithRecorder(m.Recorder()),
//	)
func WithStoreOptions(opts ...swr.Option) Option {
	return func(a *App) {
		a.storeOptions = append(a.storeOptions, opts...)
	}
}
