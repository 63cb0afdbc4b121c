package middlewares

import (
	"context"

	"github.com/dmitrymomot/sitekit/internal"
	"github.com/dmitrymomot/sitekit/pkg/backend"
	"github.com/dmitrymomot/sitekit/pkg/site"
)

// SiteResolver resolves a slug to a site. *site.Resolver implements it.
type SiteResolver interface {
	Resolve(ctx context.Context, slug string) (*backend.Site, error)
}

// DefaultSlugParam is the route parameter holding the site slug.
const DefaultSlugParam = "siteSlug"

// TenantConfig configures the tenant middleware.
type TenantConfig struct {
	Param string
	// FromHost takes the slug from the subdomain under the app's base
	// domain before looking at the route parameter.
	FromHost bool
}

// TenantOption configures TenantConfig.
type TenantOption func(*TenantConfig)

// WithSlugParam sets the route parameter holding the slug.
func WithSlugParam(name string) TenantOption {
	return func(cfg *TenantConfig) {
		if name != "" {
			cfg.Param = name
		}
	}
}

// WithSlugFromHost enables subdomain tenants ("acme.example.com").
func WithSlugFromHost() TenantOption {
	return func(cfg *TenantConfig) {
		cfg.FromHost = true
	}
}

// Tenant resolves the site of the request and stores it under
// site.ContextKey. Every resolution failure, including an unreachable
// backend, answers 404; the resolver has already logged the cause.
//
// It reads a route parameter, so mount it inside the route that declares it:
//
//	r.Route("/{siteSlug}", func(r internal.Router) {
//	    r.Use(middlewares.Tenant(resolver))
//	    r.GET("/", h.home)
//	})
func Tenant(resolver SiteResolver, opts ...TenantOption) internal.Middleware {
	cfg := &TenantConfig{Param: DefaultSlugParam}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			slug := ""
			if cfg.FromHost {
				slug, _ = c.Tenant()
			}
			if slug == "" {
				slug = c.Param(cfg.Param)
			}

			s, err := resolver.Resolve(c, slug)
			if err != nil {
				return internal.ErrNotFound("Site not found",
					internal.WithError(err),
					internal.WithErrorCode("site_not_found"),
				)
			}

			c.Set(site.ContextKey{}, s)
			return next(c)
		}
	}
}

// CurrentSite returns the site stored by Tenant.
func CurrentSite(c internal.Context) (*backend.Site, bool) {
	return site.FromContext(c)
}
