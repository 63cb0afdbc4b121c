// Package redis opens the optional Redis connection that backs the shared
// site cache and reports its readiness.
//
// The connection is configured through [Config], parsed from the environment
// with the rest of the server settings. An empty REDIS_URL keeps the server on
// the in-process cache.
package redis
