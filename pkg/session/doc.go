// Package session decides how backend calls carry the caller's session.
//
// Two execution contexts exist. Server rendering forwards the originating
// request's cookies as an explicit Cookie header:
//
//	cred := session.FromRequest(r)
//	ctx := session.WithCredential(r.Context(), cred)
//
// A connected client (a CLI or any long-lived process with its own login)
// never touches cookie values. It calls the backend with [Ambient] and lets
// the cookie jar from [NewJar] include credentials automatically.
//
// [Mode.Permit] enforces the split: server-context clients reject ambient
// credentials and client-context clients reject explicit ones. [Anonymous]
// is valid in both and never carries cookies, so a client-context call made
// with it bypasses the jar.
//
// Credentials implement [log/slog.LogValuer] and always log redacted.
package session
