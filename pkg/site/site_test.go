package site_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sitekit/pkg/apiclient"
	"github.com/dmitrymomot/sitekit/pkg/backend"
	"github.com/dmitrymomot/sitekit/pkg/cache"
	"github.com/dmitrymomot/sitekit/pkg/session"
	"github.com/dmitrymomot/sitekit/pkg/site"
)

func newAPI(t *testing.T, handler http.HandlerFunc) (*backend.API, *atomic.Int64) {
	t.Helper()

	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := apiclient.New(srv.URL)
	require.NoError(t, err)
	return backend.New(client), &calls
}

func found(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"id":"s1","slug":"acme","name":"Acme","template":"petshop","theme":{}}`))
}

type sourceFunc func(ctx context.Context, cred session.Credential, slug string) (*backend.Site, error)

func (f sourceFunc) SiteBySlug(ctx context.Context, cred session.Credential, slug string) (*backend.Site, error) {
	return f(ctx, cred, slug)
}

// --- Resolve ---

func TestResolver_Resolve(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("resolves and caches", func(t *testing.T) {
		t.Parallel()

		api, calls := newAPI(t, found)
		r := site.NewResolver(api)
		defer r.Close()

		for range 3 {
			s, err := r.Resolve(ctx, "acme")
			require.NoError(t, err)
			assert.Equal(t, "s1", s.ID)
			assert.Equal(t, "petshop", s.Template)
		}
		assert.Equal(t, int64(1), calls.Load())
	})

	t.Run("unknown tenant is not found and remembered", func(t *testing.T) {
		t.Parallel()

		api, calls := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		r := site.NewResolver(api)
		defer r.Close()

		for range 2 {
			_, err := r.Resolve(ctx, "unknown-tenant")
			require.ErrorIs(t, err, site.ErrNotFound)
			require.NotErrorIs(t, err, site.ErrUnavailable)
		}
		assert.Equal(t, int64(1), calls.Load())
	})

	t.Run("invalid slugs never reach the backend", func(t *testing.T) {
		t.Parallel()

		api, calls := newAPI(t, found)
		r := site.NewResolver(api)
		defer r.Close()

		for _, slug := range []string{"", "  ", "Acme", "-acme", "a/b", "acme_1"} {
			_, err := r.Resolve(ctx, slug)
			require.ErrorIs(t, err, site.ErrNotFound, slug)
		}
		assert.Zero(t, calls.Load())
	})

	t.Run("server errors are unavailable and not cached", func(t *testing.T) {
		t.Parallel()

		api, calls := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		var buf bytes.Buffer
		r := site.NewResolver(api, site.WithLogger(slog.New(slog.NewJSONHandler(&buf, nil))))
		defer r.Close()

		for range 2 {
			_, err := r.Resolve(ctx, "acme")
			require.ErrorIs(t, err, site.ErrNotFound)
			require.ErrorIs(t, err, site.ErrUnavailable)

			var re *site.ResolveError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, "acme", re.Slug)
			assert.Equal(t, http.StatusInternalServerError, apiclient.StatusOf(err))
		}
		assert.Equal(t, int64(2), calls.Load())
		assert.Contains(t, buf.String(), `"level":"ERROR"`)
		assert.Contains(t, buf.String(), `"slug":"acme"`)
	})

	t.Run("network errors are unavailable", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.NotFoundHandler())
		client, err := apiclient.New(srv.URL)
		require.NoError(t, err)
		srv.Close()

		r := site.NewResolver(backend.New(client))
		defer r.Close()

		_, err = r.Resolve(ctx, "acme")
		require.ErrorIs(t, err, site.ErrUnavailable)
		assert.True(t, apiclient.IsNetwork(err))
	})

	t.Run("concurrent resolutions share one call", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64
		release := make(chan struct{})
		r := site.NewResolver(sourceFunc(func(context.Context, session.Credential, string) (*backend.Site, error) {
			calls.Add(1)
			<-release
			return &backend.Site{ID: "s1", Slug: "acme"}, nil
		}))
		defer r.Close()

		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				s, err := r.Resolve(ctx, "acme")
				assert.NoError(t, err)
				assert.Equal(t, "s1", s.ID)
			}()
		}
		require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
		time.Sleep(10 * time.Millisecond)
		close(release)
		wg.Wait()
		assert.Equal(t, int64(1), calls.Load())
	})

	t.Run("uses the credential from context", func(t *testing.T) {
		t.Parallel()

		var got session.Credential
		r := site.NewResolver(sourceFunc(func(_ context.Context, cred session.Credential, _ string) (*backend.Site, error) {
			got = cred
			return &backend.Site{ID: "s1"}, nil
		}))
		defer r.Close()

		cctx := session.WithCredential(ctx, session.Explicit("token=abc"))
		_, err := r.Resolve(cctx, "acme")
		require.NoError(t, err)
		assert.True(t, got.IsExplicit())
	})

	t.Run("forget and purge drop entries", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64
		mem := cache.NewMemory[site.Entry](cache.WithCleanupInterval(0))
		r := site.NewResolver(sourceFunc(func(context.Context, session.Credential, string) (*backend.Site, error) {
			calls.Add(1)
			return &backend.Site{ID: "s1"}, nil
		}), site.WithCache(mem))
		defer r.Close()

		_, err := r.Resolve(ctx, "acme")
		require.NoError(t, err)
		require.NoError(t, r.Forget(ctx, "acme"))
		_, err = r.Resolve(ctx, "acme")
		require.NoError(t, err)
		assert.Equal(t, int64(2), calls.Load())

		_, err = r.Resolve(ctx, "other")
		require.NoError(t, err)
		require.Equal(t, 2, mem.Len())
		require.NoError(t, r.Purge(ctx))
		assert.Zero(t, mem.Len())
	})

	t.Run("missing ttl expires", func(t *testing.T) {
		t.Parallel()

		now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		var mu sync.Mutex
		clock := func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			return now
		}

		var calls atomic.Int64
		mem := cache.NewMemory[site.Entry](cache.WithCleanupInterval(0), cache.WithClock(clock))
		r := site.NewResolver(sourceFunc(func(context.Context, session.Credential, string) (*backend.Site, error) {
			calls.Add(1)
			return nil, &apiclient.Error{Status: http.StatusNotFound}
		}), site.WithCache(mem), site.WithTTL(time.Minute, 10*time.Second))
		defer r.Close()

		_, err := r.Resolve(ctx, "ghost")
		require.ErrorIs(t, err, site.ErrNotFound)

		mu.Lock()
		now = now.Add(10 * time.Second)
		mu.Unlock()

		_, err = r.Resolve(ctx, "ghost")
		require.ErrorIs(t, err, site.ErrNotFound)
		assert.Equal(t, int64(2), calls.Load())
	})
}

// --- Context ---

func TestContext(t *testing.T) {
	t.Parallel()

	_, ok := site.FromContext(context.Background())
	assert.False(t, ok)

	ctx := site.WithContext(context.Background(), &backend.Site{Slug: "acme"})
	s, ok := site.FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "acme", s.Slug)

	attr, ok := site.SlugExtractor()(ctx)
	require.True(t, ok)
	assert.Equal(t, "site", attr.Key)
	assert.Equal(t, "acme", attr.Value.String())

	_, ok = site.SlugExtractor()(context.Background())
	assert.False(t, ok)
}

func TestTemplate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, site.TemplateShoeCleaning, site.Template("shoe-cleaning"))
	assert.Equal(t, site.TemplatePetshop, site.Template(" Petshop "))
	assert.Equal(t, site.TemplateDefault, site.Template("bakery"))
	assert.Equal(t, site.TemplateDefault, site.Template(""))
}

func TestValid(t *testing.T) {
	t.Parallel()

	assert.True(t, site.Valid("acme-2"))
	assert.True(t, site.Valid("a"))
	assert.False(t, site.Valid(""))
	assert.False(t, site.Valid("acme.com"))
}
