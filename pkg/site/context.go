package site

import (
	"context"

	"github.com/dmitrymomot/sitekit/pkg/backend"
	"github.com/dmitrymomot/sitekit/pkg/logger"
)

// ContextKey is the context key the resolved *backend.Site is stored under.
type ContextKey struct{}

// WithContext returns a copy of ctx carrying the resolved site.
func WithContext(ctx context.Context, s *backend.Site) context.Context {
	return context.WithValue(ctx, ContextKey{}, s)
}

// FromContext returns the site resolved for the current request.
func FromContext(ctx context.Context) (*backend.Site, bool) {
	s, ok := ctx.Value(ContextKey{}).(*backend.Site)
	return s, ok && s != nil
}

// SlugExtractor logs the resolved site's slug as "site".
func SlugExtractor() logger.ContextExtractor {
	return logger.StringExtractor("site", func(ctx context.Context) (string, bool) {
		s, ok := FromContext(ctx)
		if !ok {
			return "", false
		}
		return s.Slug, true
	})
}
