package apiclient

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/sitekit/pkg/session"
)

// DefaultTimeout bounds one call when no timeout is configured.
const DefaultTimeout = 15 * time.Second

// Observer receives one measurement per completed call.
// status is 0 for network failures.
type Observer interface {
	ObserveRequest(method string, status int, d time.Duration)
}

// Option configures the Client.
type Option func(*options)

type options struct {
	httpClient *http.Client
	jar        http.CookieJar
	logger     *slog.Logger
	observer   Observer
	userAgent  string
	timeout    time.Duration
	mode       session.Mode
}

func defaultOptions() *options {
	return &options{
		timeout:   DefaultTimeout,
		mode:      session.ServerContext,
		userAgent: "sitekit",
	}
}

// WithTimeout sets the per-call timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithHTTPClient sets the underlying HTTP client. It is copied, never mutated.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.httpClient = c
		}
	}
}

// WithMode sets the execution context. Defaults to session.ServerContext.
func WithMode(m session.Mode) Option {
	return func(o *options) {
		o.mode = m
	}
}

// WithCookieJar sets the jar used in client context.
// If omitted in client context, a jar is created by session.NewJar.
func WithCookieJar(jar http.CookieJar) Option {
	return func(o *options) {
		o.jar = jar
	}
}

// WithLogger sets the logger. Defaults to a discarding logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver registers a per-call metrics observer.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		if ua != "" {
			o.userAgent = ua
		}
	}
}
