// Package middlewares holds the HTTP middleware of the sitekit servers.
//
// Each middleware follows the same shape: a constructor taking functional
// options over a Config struct and returning an internal.Middleware.
//
//   - RequestID assigns a UUIDv7 per request; RequestIDExtractor logs it.
//   - Recover turns panics into 500 responses.
//   - SessionGuard redirects admin pages without a session cookie to the
//     login page, and the login page with one to the dashboard.
//   - AuthGate resolves the principal through an authgate.Gate on the
//     request-scoped store, redirecting once when the backend says 401.
//   - Tenant resolves the site from the route or subdomain.
//   - RateLimit throttles per client IP.
//   - Metrics reports request counts and latencies.
//
// Typical console wiring:
//
//	internal.New(
//	    internal.WithMiddleware(
//	        middlewares.RequestID(),
//	        middlewares.Recover(),
//	        middlewares.Metrics(m),
//	        middlewares.SessionGuard(),
//	    ),
//	)
package middlewares
