package middlewares

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/sitekit/internal"
)

// HTTPObserver records served requests. *metrics.Metrics implements it.
type HTTPObserver interface {
	ObserveHTTP(method, route string, status int, d time.Duration)
}

// Metrics reports method, route pattern, status and duration of every
// request. The status is the one the handler chose, also for htmx requests
// that were answered with 200.
func Metrics(obs HTTPObserver) internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			start := time.Now()
			err := next(c)

			status := c.ResponseWriter().Status()
			if err != nil && !c.Written() {
				status = internal.MapError(err).Code
			}

			route := ""
			if rctx := chi.RouteContext(c.Request().Context()); rctx != nil {
				route = rctx.RoutePattern()
			}
			obs.ObserveHTTP(c.Request().Method, route, status, time.Since(start))
			return err
		}
	}
}
