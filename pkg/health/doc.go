// Package health serves liveness and readiness probes.
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//	    "backend": health.Reachable(api.Origin(), nil),
//	    "redis":   redis.Ping(client),
//	}))
//
// Responses are plain text ("OK" or "Service Unavailable") unless the client
// asks for JSON with ?format=json or an Accept header.
//
// [Reachable] doubles as the connectivity probe of the connected client.
package health
