package storefront_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/dmitrymomot/sitekit/internal"
	"github.com/dmitrymomot/sitekit/internal/storefront"
	"github.com/dmitrymomot/sitekit/pkg/apiclient"
	"github.com/dmitrymomot/sitekit/pkg/backend"
	"github.com/dmitrymomot/sitekit/pkg/htmx"
	"github.com/dmitrymomot/sitekit/pkg/site"
	"github.com/dmitrymomot/sitekit/pkg/swr"
)

const siteJSON = `{"id":"s1","slug":"acme","name":"Acme","template":"%s","theme":{}}`

// fakeBackend serves the public API of one site and counts calls per path.
type fakeBackend struct {
	template string

	mu    sync.Mutex
	calls map[string]int
	posts []string
}

func (b *fakeBackend) count(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[path]
}

func (b *fakeBackend) submitted() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.posts...)
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.calls[r.URL.RequestURI()]++
	b.mu.Unlock()

	write := func(status int, body string) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}

	switch {
	case r.URL.Path == "/api/sites/slug/acme":
		write(http.StatusOK, strings.Replace(siteJSON, "%s", b.template, 1))
	case strings.HasPrefix(r.URL.Path, "/api/sites/slug/"):
		write(http.StatusNotFound, `{"message":"Site not found"}`)
	case r.URL.Path == "/api/public/sites/s1/products":
		write(http.StatusOK, `{"data":[{"id":"p1","name":"Leash","price":9.5,"images":["https://cdn.example.com/leash.png"]}],"meta":{"page":1,"limit":12,"total":13,"totalPages":2}}`)
	case r.URL.Path == "/api/public/sites/s1/products/p1":
		write(http.StatusOK, `{"id":"p1","name":"Leash","price":9.5,"description":"<b>Strong</b><script>x()</script>"}`)
	case r.URL.Path == "/api/public/sites/s1/services":
		write(http.StatusOK, `{"data":[{"id":"v1","name":"Deep clean","price":20}],"meta":{"page":1,"limit":6,"total":1,"totalPages":1}}`)
	case r.URL.Path == "/api/public/sites/s1/headers":
		write(http.StatusOK, `[]`)
	case r.URL.Path == "/api/public/sites/s1/seo":
		write(http.StatusOK, `{"metaTitle":"Acme Pets","metaDescription":"Pet shop","keywords":["pets"]}`)
	case r.URL.Path == "/api/public/sites/s1/posts":
		write(http.StatusOK, `{"data":[{"id":"n1","title":"Hello","content":"<p>World</p>"}],"meta":{"page":1,"limit":12,"total":1,"totalPages":1}}`)
	case r.URL.Path == "/api/public/sites/s1/posts/n1":
		write(http.StatusOK, `{"id":"n1","title":"Hello","content":"<p onclick=\"evil()\">World</p><script>alert(1)</script>"}`)
	case r.URL.Path == "/api/public/sites/s1/contact-settings":
		write(http.StatusOK, `{"email":"hi@acme.test","phone":"+100"}`)
	case r.URL.Path == "/api/public/sites/s1/contact-messages" && r.Method == http.MethodPost:
		var in map[string]any
		_ = json.NewDecoder(r.Body).Decode(&in)
		b.mu.Lock()
		b.posts = append(b.posts, in["email"].(string))
		b.mu.Unlock()
		write(http.StatusCreated, `{"data":{"id":"m1","status":"new"}}`)
	default:
		write(http.StatusNotFound, `{"message":"Not found"}`)
	}
}

const storeBound = 32

type harness struct {
	app     *internal.App
	backend *fakeBackend
	store   *swr.Store
}

func setup(t *testing.T, template string, opts ...storefront.Option) *harness {
	t.Helper()

	fb := &fakeBackend{template: template, calls: make(map[string]int)}
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)

	client, err := apiclient.New(srv.URL)
	require.NoError(t, err)
	api := backend.New(client)

	store := swr.New(swr.WithMaxEntries(storeBound))
	t.Cleanup(store.Close)
	resolver := site.NewResolver(api)
	t.Cleanup(func() { _ = resolver.Close() })

	sf := storefront.New(api, store, resolver, opts...)
	app := internal.New(
		internal.WithHandlers(sf),
		internal.WithErrorHandler(storefront.ErrorHandler(internal.DefaultErrorHandler(internal.DefaultLoginPath))),
	)
	return &harness{app: app, backend: fb, store: store}
}

func (h *harness) get(target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

// --- Pages ---

func TestStorefront_Home(t *testing.T) {
	t.Parallel()

	t.Run("petshop shows featured products", func(t *testing.T) {
		t.Parallel()
		h := setup(t, "petshop")

		rec := h.get("/acme")
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, `class="tpl-petshop"`)
		assert.Contains(t, body, "<title>Acme Pets</title>")
		assert.Contains(t, body, "Everything your pet needs in one place")
		assert.Contains(t, body, `href="/acme/products/p1"`)
		assert.Equal(t, 1, h.backend.count("/api/public/sites/s1/products?page=1&limit=6"))
	})

	t.Run("shoe-cleaning shows services", func(t *testing.T) {
		t.Parallel()
		h := setup(t, "shoe-cleaning")

		rec := h.get("/acme/")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Deep clean")
	})

	t.Run("unknown template falls back to default", func(t *testing.T) {
		t.Parallel()
		h := setup(t, "brutalist")

		rec := h.get("/acme")
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, `class="tpl-default"`)
		assert.Contains(t, body, "Welcome to Acme")
		assert.Zero(t, h.backend.count("/api/public/sites/s1/products?page=1&limit=6"))
	})

	t.Run("unknown tenant is not found", func(t *testing.T) {
		t.Parallel()
		h := setup(t, "petshop")

		rec := h.get("/unknown-tenant")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "Site not found")
	})
}

func TestStorefront_Products(t *testing.T) {
	t.Parallel()

	t.Run("repeated pages share one call", func(t *testing.T) {
		t.Parallel()
		h := setup(t, "default")

		for range 2 {
			rec := h.get("/acme/products?page=1")
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), "Leash")
			assert.Contains(t, rec.Body.String(), `href="/acme/products?page=2"`)
		}
		assert.Equal(t, 1, h.backend.count("/api/public/sites/s1/products?page=1&limit=12"))
	})

	t.Run("htmx gets the grid only", func(t *testing.T) {
		t.Parallel()
		h := setup(t, "default")

		req := httptest.NewRequest(http.MethodGet, "/acme/products", nil)
		req.Header.Set(htmx.HeaderHXRequest, "true")
		rec := httptest.NewRecorder()
		h.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, strings.HasPrefix(rec.Body.String(), `<div id="products"`))
	})

	t.Run("product detail is sanitized", func(t *testing.T) {
		t.Parallel()
		h := setup(t, "default")

		rec := h.get("/acme/products/p1")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "<b>Strong</b>")
		assert.NotContains(t, rec.Body.String(), "<script>x()")
	})

	t.Run("missing product", func(t *testing.T) {
		t.Parallel()
		h := setup(t, "default")

		rec := h.get("/acme/products/zzz")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "Product not found")
	})

	t.Run("distinct pages keep the store bounded", func(t *testing.T) {
		t.Parallel()
		h := setup(t, "default")

		for i := range 300 {
			h.get("/acme/products/x" + strconv.Itoa(i))
			h.get("/acme/products?page=" + strconv.Itoa(i+1))
		}
		assert.LessOrEqual(t, h.store.Len(), storeBound)

		rec := h.get("/acme/products/p1")
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestStorefront_Posts(t *testing.T) {
	t.Parallel()

	h := setup(t, "default")

	t.Run("list", func(t *testing.T) {
		t.Parallel()
		rec := h.get("/acme/posts")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `href="/acme/posts/n1"`)
	})

	t.Run("invalid filter", func(t *testing.T) {
		t.Parallel()
		rec := h.get("/acme/posts?type=rumor")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("content is sanitized", func(t *testing.T) {
		t.Parallel()
		rec := h.get("/acme/posts/n1")
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "<p>World</p>")
		assert.NotContains(t, body, "onclick")
		assert.NotContains(t, body, "<script>alert")
	})
}

// --- Contact ---

func TestStorefront_Contact(t *testing.T) {
	t.Parallel()

	post := func(h *harness, form url.Values, hx bool) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/acme/contact", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.RemoteAddr = "203.0.113.7:5555"
		if hx {
			req.Header.Set(htmx.HeaderHXRequest, "true")
		}
		rec := httptest.NewRecorder()
		h.app.ServeHTTP(rec, req)
		return rec
	}
	valid := url.Values{"name": {"Ann"}, "email": {"ann@example.com"}, "message": {"Hi"}}

	t.Run("form shows contact details", func(t *testing.T) {
		t.Parallel()
		h := setup(t, "default")
		rec := h.get("/acme/contact")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "hi@acme.test")
	})

	t.Run("submits and redirects", func(t *testing.T) {
		t.Parallel()
		h := setup(t, "default")

		rec := post(h, valid, false)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/acme/contact", rec.Header().Get("Location"))
		assert.Equal(t, []string{"ann@example.com"}, h.backend.submitted())
	})

	t.Run("htmx gets a thank-you fragment", func(t *testing.T) {
		t.Parallel()
		h := setup(t, "default")

		rec := post(h, valid, true)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Thank you")
	})

	t.Run("invalid input never reaches the backend", func(t *testing.T) {
		t.Parallel()
		h := setup(t, "default")

		rec := post(h, url.Values{"name": {"Ann"}, "email": {"nope"}}, false)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "email must be a valid email")
		assert.Contains(t, rec.Body.String(), "message is required")
		assert.Empty(t, h.backend.submitted())
	})

	t.Run("rate limited per client", func(t *testing.T) {
		t.Parallel()
		h := setup(t, "default", storefront.WithContactRateLimit(rate.Every(time.Hour), 1))

		assert.Equal(t, http.StatusSeeOther, post(h, valid, false).Code)
		rec := post(h, valid, false)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("Retry-After"))
		assert.Len(t, h.backend.submitted(), 1)
	})
}

// --- Host tenants ---

func TestStorefront_HostTenants(t *testing.T) {
	t.Parallel()

	fb := &fakeBackend{template: "default", calls: make(map[string]int)}
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)
	client, err := apiclient.New(srv.URL)
	require.NoError(t, err)
	api := backend.New(client)
	store := swr.New()
	t.Cleanup(store.Close)

	app := internal.New(
		internal.WithBaseDomain("example.com"),
		internal.WithHandlers(storefront.New(api, store, site.NewResolver(api), storefront.WithHostTenants())),
	)

	req := httptest.NewRequest(http.MethodGet, "http://acme.example.com/products", nil)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `href="/products/p1"`)

	req = httptest.NewRequest(http.MethodGet, "http://example.com/products", nil)
	rec = httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
