package internal

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/sitekit/pkg/hostrouter"
)

// ErrNoApps is returned by Run when neither a domain nor a fallback is set.
var ErrNoApps = errors.New("internal: no domains or fallback configured")

// Run serves several Apps by host and blocks until shutdown.
//
// Example:
//
//	err := internal.Run(
//	    internal.Domain("*."+cfg.BaseDomain, storefrontApp),
//	    internal.Fallback(consoleApp),
//	    internal.Address(cfg.HTTPAddr),
//	    internal.Logger(log),
//	)
func Run(opts ...RunOption) error {
	cfg := buildRunConfig(opts...)

	handler, err := cfg.handler()
	if err != nil {
		return err
	}

	return runServer(runtimeConfig{
		handler:         handler,
		address:         cfg.address,
		logger:          cfg.logger,
		shutdownTimeout: cfg.shutdownTimeout,
		shutdownHooks:   cfg.shutdownHooks,
		onListen:        cfg.onListen,
		baseCtx:         cfg.baseCtx,
	})
}

// handler composes the configured Apps behind a host router.
func (c *runConfig) handler() (http.Handler, error) {
	switch {
	case len(c.domains) > 0:
		routes := make(hostrouter.Routes, len(c.domains))
		for pattern, app := range c.domains {
			routes[pattern] = app
		}
		var fallback http.Handler = http.NotFoundHandler()
		if c.fallback != nil {
			fallback = c.fallback
		}
		return hostrouter.New(routes, fallback), nil
	case c.fallback != nil:
		return c.fallback, nil
	}
	return nil, ErrNoApps
}
