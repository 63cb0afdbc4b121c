// Package cache provides a generic TTL cache with an in-process LRU
// implementation and a Redis implementation behind one [Cache] interface.
//
// [GetOrSet] loads a value on a miss. Concurrent misses for one key in one
// cache share a single load:
//
//	site, err := cache.GetOrSet(ctx, sites, slug, func(ctx context.Context) (*backend.Site, time.Duration, error) {
//	    s, err := api.SiteBySlug(ctx, cred, slug)
//	    return s, time.Minute, err
//	})
//
// Load errors are never cached. Callers that want negative caching store a
// value that represents the absence.
package cache
