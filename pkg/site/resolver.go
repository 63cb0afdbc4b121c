package site

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/dmitrymomot/sitekit/pkg/apiclient"
	"github.com/dmitrymomot/sitekit/pkg/backend"
	"github.com/dmitrymomot/sitekit/pkg/cache"
	"github.com/dmitrymomot/sitekit/pkg/logger"
	"github.com/dmitrymomot/sitekit/pkg/session"
)

const (
	DefaultTTL        = time.Minute
	DefaultMissingTTL = 15 * time.Second
)

// Source looks a site up by slug. *backend.API implements it.
type Source interface {
	SiteBySlug(ctx context.Context, cred session.Credential, slug string) (*backend.Site, error)
}

// Entry is a cached resolution. Missing entries remember unknown slugs.
type Entry struct {
	Site    *backend.Site `json:"site,omitempty"`
	Missing bool          `json:"missing,omitempty"`
}

// Option configures the Resolver.
type Option func(*Resolver)

// WithCache replaces the in-process cache, typically with a cache.Redis.
func WithCache(c cache.Cache[Entry]) Option {
	return func(r *Resolver) {
		if c != nil {
			r.cache = c
		}
	}
}

// WithTTL sets how long found and missing sites are remembered.
func WithTTL(found, missing time.Duration) Option {
	return func(r *Resolver) {
		if found > 0 {
			r.ttl = found
		}
		if missing > 0 {
			r.missingTTL = missing
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// Resolver maps tenant slugs to site records.
type Resolver struct {
	source     Source
	cache      cache.Cache[Entry]
	logger     *slog.Logger
	ttl        time.Duration
	missingTTL time.Duration
}

// NewResolver creates a resolver reading from source.
func NewResolver(source Source, opts ...Option) *Resolver {
	r := &Resolver{
		source:     source,
		logger:     logger.NewNope(),
		ttl:        DefaultTTL,
		missingTTL: DefaultMissingTTL,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.cache == nil {
		r.cache = cache.NewMemory[Entry](cache.WithDefaultTTL(r.ttl), cache.WithMaxEntries(1024))
	}
	return r
}

// Resolve returns the site for slug using the credential carried by ctx.
// Every failure satisfies errors.Is(err, ErrNotFound). Unknown slugs are
// remembered briefly; backend failures are not remembered and also satisfy
// ErrUnavailable.
func (r *Resolver) Resolve(ctx context.Context, slug string) (*backend.Site, error) {
	slug = strings.TrimSpace(slug)
	if !Valid(slug) {
		return nil, ErrNotFound
	}

	cred := session.FromContext(ctx)
	e, err := cache.GetOrSet(ctx, r.cache, slug, func(ctx context.Context) (Entry, time.Duration, error) {
		s, err := r.source.SiteBySlug(ctx, cred, slug)
		switch {
		case err == nil && s != nil:
			return Entry{Site: s}, r.ttl, nil
		case err == nil, apiclient.IsNotFound(err):
			return Entry{Missing: true}, r.missingTTL, nil
		default:
			return Entry{}, 0, err
		}
	})
	if err != nil {
		if ctx.Err() == nil {
			r.logger.ErrorContext(ctx, "site resolution failed",
				slog.String("slug", slug),
				slog.String("kind", apiclient.Kind(err).String()),
				slog.Any("error", err),
			)
		}
		return nil, &ResolveError{Slug: slug, Err: err}
	}
	if e.Missing || e.Site == nil {
		return nil, ErrNotFound
	}
	return e.Site, nil
}

// Forget drops the cached resolution of slug.
func (r *Resolver) Forget(ctx context.Context, slug string) error {
	return r.cache.Delete(ctx, strings.TrimSpace(slug))
}

// Purge drops every cached resolution.
func (r *Resolver) Purge(ctx context.Context) error {
	return r.cache.Clear(ctx)
}

// Close releases the cache.
func (r *Resolver) Close() error {
	return r.cache.Close()
}

// Valid reports whether slug can name a site.
func Valid(slug string) bool {
	return slug != "" && backend.SlugPattern.MatchString(slug)
}
