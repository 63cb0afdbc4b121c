// Package site resolves tenant slugs to site records for the storefront.
//
// Resolutions are cached through pkg/cache, in process by default or in Redis
// when configured, and concurrent resolutions of one slug share a backend
// call. Presentation treats every failure as not found:
//
//	s, err := resolver.Resolve(ctx, chi.URLParam(r, "siteSlug"))
//	if errors.Is(err, site.ErrNotFound) {
//	    return internal.ErrNotFound("site not found")
//	}
//
// Errors that also match [ErrUnavailable] come from the backend, are logged at
// error level and are never cached.
package site
