package storefront

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/dmitrymomot/sitekit/internal"
	"github.com/dmitrymomot/sitekit/middlewares"
	"github.com/dmitrymomot/sitekit/pkg/apiclient"
	"github.com/dmitrymomot/sitekit/pkg/backend"
	"github.com/dmitrymomot/sitekit/pkg/logger"
	"github.com/dmitrymomot/sitekit/pkg/session"
	"github.com/dmitrymomot/sitekit/pkg/swr"
)

// Defaults.
const (
	DefaultProductLimit = 12
	DefaultPostLimit    = 12
	FeaturedLimit       = 6
)

// Storefront serves the public pages of every tenant site.
// Implements internal.Handler.
type Storefront struct {
	api      *backend.API
	store    *swr.Store
	resolver middlewares.SiteResolver
	logger   *slog.Logger

	productLimit int
	contactLimit rate.Limit
	contactBurst int
	fromHost     bool
}

// Option configures the Storefront.
type Option func(*Storefront)

// WithProductLimit sets the products page size.
func WithProductLimit(n int) Option {
	return func(s *Storefront) {
		if n > 0 {
			s.productLimit = n
		}
	}
}

// WithContactRateLimit sets how many contact messages one client may send.
func WithContactRateLimit(limit rate.Limit, burst int) Option {
	return func(s *Storefront) {
		if limit > 0 && burst > 0 {
			s.contactLimit = limit
			s.contactBurst = burst
		}
	}
}

// WithHostTenants serves sites from their subdomain ("acme.example.com/")
// instead of a path prefix ("/acme/").
func WithHostTenants() Option {
	return func(s *Storefront) {
		s.fromHost = true
	}
}

// WithLogger sets the logger used for tolerated failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Storefront) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates the storefront. store is the process-wide cache; every read
// through it is anonymous so cached pages are the same for all visitors.
func New(api *backend.API, store *swr.Store, resolver middlewares.SiteResolver, opts ...Option) *Storefront {
	s := &Storefront{
		api:          api,
		store:        store,
		resolver:     resolver,
		logger:       logger.NewNope(),
		productLimit: DefaultProductLimit,
		contactLimit: rate.Every(time.Minute / 5),
		contactBurst: 5,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes declares the storefront routes.
func (s *Storefront) Routes(r internal.Router) {
	if s.fromHost {
		r.Group(func(r internal.Router) {
			r.Use(middlewares.Tenant(s.resolver, middlewares.WithSlugFromHost()))
			s.siteRoutes(r)
		})
		return
	}
	r.Route("/{"+middlewares.DefaultSlugParam+"}", func(r internal.Router) {
		r.Use(middlewares.Tenant(s.resolver))
		s.siteRoutes(r)
	})
}

func (s *Storefront) siteRoutes(r internal.Router) {
	r.GET("/", s.home)
	r.GET("/products", s.products)
	r.GET("/products/{id}", s.product)
	r.GET("/services", s.services)
	r.GET("/posts", s.posts)
	r.GET("/posts/{id}", s.post)
	r.GET("/contact", s.contactForm)
	r.POST("/contact", s.contact, middlewares.RateLimit(s.contactLimit, s.contactBurst))
}

// base returns the path prefix of the current site's pages.
func (s *Storefront) base(siteSlug string) string {
	if s.fromHost {
		return ""
	}
	return "/" + siteSlug
}

// load reads a public resource through the shared store.
func load[T any](ctx context.Context, s *Storefront, path string, q *apiclient.Query, fetch func(ctx context.Context, cred session.Credential) (T, error)) (T, error) {
	return swr.Load(ctx, s.store, swr.Key(path, q), func(ctx context.Context) (T, error) {
		return fetch(ctx, session.Anonymous())
	})
}

// optional logs a failed secondary read and reports whether it succeeded.
// Page sections such as banners and SEO never fail the page.
func (s *Storefront) optional(c internal.Context, what string, err error) bool {
	if err == nil {
		return true
	}
	if !errors.Is(err, context.Canceled) && !apiclient.IsNotFound(err) {
		s.logger.WarnContext(c, "storefront section unavailable",
			slog.String("section", what),
			slog.String("kind", apiclient.Kind(err).String()),
			slog.Any("error", err),
		)
	}
	return false
}

// notFound turns a missing record into a 404 and leaves other failures to
// the error handler.
func notFound(message string, err error) error {
	if apiclient.IsNotFound(err) || errors.Is(err, backend.ErrMissingID) {
		return internal.ErrNotFound(message, internal.WithError(err))
	}
	return err
}
