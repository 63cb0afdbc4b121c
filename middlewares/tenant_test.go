package middlewares_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sitekit/internal"
	"github.com/dmitrymomot/sitekit/middlewares"
	"github.com/dmitrymomot/sitekit/pkg/backend"
	"github.com/dmitrymomot/sitekit/pkg/site"
)

type fakeResolver struct {
	mu    sync.Mutex
	sites map[string]*backend.Site
	asked []string
}

func (f *fakeResolver) Resolve(_ context.Context, slug string) (*backend.Site, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.asked = append(f.asked, slug)
	if s, ok := f.sites[slug]; ok {
		return s, nil
	}
	return nil, site.ErrNotFound
}

func TestTenant(t *testing.T) {
	t.Parallel()

	resolver := &fakeResolver{sites: map[string]*backend.Site{
		"acme": {ID: "s1", Slug: "acme", Name: "Acme"},
	}}
	show := func(c internal.Context) error {
		s, found := middlewares.CurrentSite(c)
		require.True(t, found)
		return c.String(http.StatusOK, s.Name)
	}

	t.Run("slug from route", func(t *testing.T) {
		t.Parallel()

		app := internal.New(internal.WithHandlers(routes(func(r internal.Router) {
			r.Route("/{siteSlug}", func(r internal.Router) {
				r.Use(middlewares.Tenant(resolver))
				r.GET("/", show)
			})
		})))

		rec := serve(app, httptest.NewRequest(http.MethodGet, "/acme/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Acme", rec.Body.String())

		assert.Equal(t, http.StatusNotFound, serve(app, httptest.NewRequest(http.MethodGet, "/unknown-tenant/", nil)).Code)
	})

	t.Run("slug from subdomain", func(t *testing.T) {
		t.Parallel()

		app := internal.New(
			internal.WithBaseDomain("example.com"),
			internal.WithMiddleware(middlewares.Tenant(resolver, middlewares.WithSlugFromHost())),
			internal.WithHandlers(routes(func(r internal.Router) { r.GET("/", show) })),
		)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Host = "acme.example.com"
		rec := serve(app, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Acme", rec.Body.String())
	})

	t.Run("backend failures present as not found", func(t *testing.T) {
		t.Parallel()

		failing := middlewares.SiteResolver(resolverFunc(func(context.Context, string) (*backend.Site, error) {
			return nil, &site.ResolveError{Slug: "acme", Err: context.DeadlineExceeded}
		}))
		app := internal.New(internal.WithHandlers(routes(func(r internal.Router) {
			r.GET("/{siteSlug}", ok, middlewares.Tenant(failing))
		})))

		assert.Equal(t, http.StatusNotFound, serve(app, httptest.NewRequest(http.MethodGet, "/acme", nil)).Code)
	})
}

type resolverFunc func(ctx context.Context, slug string) (*backend.Site, error)

func (f resolverFunc) Resolve(ctx context.Context, slug string) (*backend.Site, error) {
	return f(ctx, slug)
}
