package swr

import "github.com/dmitrymomot/sitekit/pkg/apiclient"

// Key returns the canonical cache key for a path and query:
// the path followed by "?" and the query encoded in insertion order.
// Two reads of the same path with the same parameters share one key.
func Key(path string, q *apiclient.Query) string {
	if path == "" {
		return ""
	}
	if encoded := q.Encode(); encoded != "" {
		return path + "?" + encoded
	}
	return path
}

// KeyIf returns Key(path, q) when cond holds and the idle key otherwise.
// Use it for conditional reads such as a detail page without an id.
func KeyIf(cond bool, path string, q *apiclient.Query) string {
	if !cond {
		return ""
	}
	return Key(path, q)
}
