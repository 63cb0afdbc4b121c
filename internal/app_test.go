package internal_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sitekit/internal"
	"github.com/dmitrymomot/sitekit/pkg/apiclient"
	"github.com/dmitrymomot/sitekit/pkg/cookie"
	"github.com/dmitrymomot/sitekit/pkg/htmx"
	"github.com/dmitrymomot/sitekit/pkg/swr"
)

const secret = "0123456789abcdef0123456789abcdef"

type routes func(r internal.Router)

func (f routes) Routes(r internal.Router) { f(r) }

func serve(app http.Handler, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, r)
	return rec
}

// --- Routing and helpers ---

func TestApp_Routing(t *testing.T) {
	t.Parallel()

	app := internal.New(internal.WithHandlers(routes(func(r internal.Router) {
		r.GET("/{siteSlug}/products", func(c internal.Context) error {
			page := internal.PositiveQuery(c, "page", 1)
			limit := internal.PositiveQuery(c, "limit", 12)
			return c.JSON(http.StatusOK, map[string]any{
				"slug": internal.Param[string](c, "siteSlug"), "page": page, "limit": limit,
			})
		})
		r.Route("/admin", func(r internal.Router) {
			r.DELETE("/sites/{id}", func(c internal.Context) error {
				return c.NoContent(http.StatusNoContent)
			})
		})
	})))

	t.Run("params and typed query", func(t *testing.T) {
		t.Parallel()
		rec := serve(app, httptest.NewRequest(http.MethodGet, "/acme/products?page=3&limit=-1", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"slug":"acme","page":3,"limit":12}`, rec.Body.String())
	})

	t.Run("route groups", func(t *testing.T) {
		t.Parallel()
		rec := serve(app, httptest.NewRequest(http.MethodDelete, "/admin/sites/abc", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("unknown route", func(t *testing.T) {
		t.Parallel()
		rec := serve(app, httptest.NewRequest(http.MethodGet, "/nope/x/y", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestApp_Middleware(t *testing.T) {
	t.Parallel()

	type key struct{}
	var order []string
	tag := func(name string) internal.Middleware {
		return func(next internal.HandlerFunc) internal.HandlerFunc {
			return func(c internal.Context) error {
				order = append(order, name)
				c.Set(key{}, name)
				return next(c)
			}
		}
	}

	app := internal.New(
		internal.WithMiddleware(tag("global")),
		internal.WithHandlers(routes(func(r internal.Router) {
			r.GET("/", func(c internal.Context) error {
				return c.String(http.StatusOK, internal.ContextValue[string](c, key{}))
			}, tag("first"), tag("second"))
		})),
	)

	rec := serve(app, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "second", rec.Body.String())
	assert.Equal(t, []string{"global", "first", "second"}, order)
}

// --- Errors ---

func TestApp_Errors(t *testing.T) {
	t.Parallel()

	fail := func(err error) internal.HandlerFunc {
		return func(internal.Context) error { return err }
	}
	app := internal.New(internal.WithHandlers(routes(func(r internal.Router) {
		r.GET("/admin/sites/abc", fail(&apiclient.Error{Status: http.StatusUnauthorized}))
		r.GET("/admin/login", fail(&apiclient.Error{Status: http.StatusUnauthorized}))
		r.GET("/down", fail(&apiclient.NetworkError{Err: errors.New("refused")}))
		r.GET("/late", func(c internal.Context) error {
			_ = c.String(http.StatusOK, "partial")
			return errors.New("after write")
		})
	})))

	t.Run("unauthorized redirects to login with the current path", func(t *testing.T) {
		t.Parallel()
		rec := serve(app, httptest.NewRequest(http.MethodGet, "/admin/sites/abc", nil))
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/admin/login?redirect=%2Fadmin%2Fsites%2Fabc", rec.Header().Get("Location"))
	})

	t.Run("htmx unauthorized uses the browser url", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/admin/sites/abc", nil)
		req.Header.Set(htmx.HeaderHXRequest, "true")
		req.Header.Set(htmx.HeaderHXCurrentURL, "http://localhost/admin/products?page=2")

		rec := serve(app, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "/admin/login?redirect=%2Fadmin%2Fproducts%3Fpage%3D2", rec.Header().Get(htmx.HeaderHXRedirect))
	})

	t.Run("login page never redirects to itself with a target", func(t *testing.T) {
		t.Parallel()
		rec := serve(app, httptest.NewRequest(http.MethodGet, "/admin/login", nil))
		assert.Equal(t, "/admin/login", rec.Header().Get("Location"))
	})

	t.Run("network failure is 503", func(t *testing.T) {
		t.Parallel()
		rec := serve(app, httptest.NewRequest(http.MethodGet, "/down", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("errors after a write keep the response", func(t *testing.T) {
		t.Parallel()
		rec := serve(app, httptest.NewRequest(http.MethodGet, "/late", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "partial", rec.Body.String())
	})

	t.Run("custom error handler", func(t *testing.T) {
		t.Parallel()
		custom := internal.New(
			internal.WithErrorHandler(func(c internal.Context, err error) error {
				e := internal.MapError(err)
				return c.JSON(e.Code, map[string]string{"error": e.Message})
			}),
			internal.WithHandlers(routes(func(r internal.Router) {
				r.GET("/", fail(internal.ErrNotFound("Site not found")))
			})),
		)
		rec := serve(custom, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":"Site not found"}`, rec.Body.String())
	})
}

// --- Request scope ---

func TestApp_RequestScope(t *testing.T) {
	t.Parallel()

	t.Run("middleware and handler share one store that closes at the end", func(t *testing.T) {
		t.Parallel()

		var fromMiddleware, fromHandler *swr.Store
		var fetches atomic.Int64
		fetch := func(context.Context) (string, error) {
			fetches.Add(1)
			return "v", nil
		}

		app := internal.New(
			internal.WithMiddleware(func(next internal.HandlerFunc) internal.HandlerFunc {
				return func(c internal.Context) error {
					fromMiddleware = c.Store()
					_, err := swr.Load(c, c.Store(), "/auth/me", fetch)
					require.NoError(t, err)
					return next(c)
				}
			}),
			internal.WithHandlers(routes(func(r internal.Router) {
				r.GET("/", func(c internal.Context) error {
					fromHandler = c.Store()
					v, err := swr.Load(c, c.Store(), "/auth/me", fetch)
					if err != nil {
						return err
					}
					return c.String(http.StatusOK, v)
				})
			})),
		)

		rec := serve(app, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Same(t, fromMiddleware, fromHandler)
		assert.Equal(t, int64(1), fetches.Load())
		assert.Zero(t, fromHandler.Len())

		serve(app, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, int64(2), fetches.Load(), "stores are not shared across requests")
	})

	t.Run("credential carries browser cookies", func(t *testing.T) {
		t.Parallel()

		app := internal.New(internal.WithHandlers(routes(func(r internal.Router) {
			r.GET("/", func(c internal.Context) error {
				cred := c.Credential()
				out := httptest.NewRequest(http.MethodGet, "/", nil)
				cred.Apply(out)
				return c.String(http.StatusOK, out.Header.Get("Cookie"))
			})
		})))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: "abc"})
		req.AddCookie(&http.Cookie{Name: "theme", Value: "dark"})

		rec := serve(app, req)
		assert.Equal(t, "token=abc; theme=dark", rec.Body.String())
		assert.NotContains(t, rec.Body.String(), "redacted")
	})
}

// --- Cookies and tenants ---

func TestApp_Flash(t *testing.T) {
	t.Parallel()

	app := internal.New(
		internal.WithCookieOptions(cookie.WithSecret(secret)),
		internal.WithHandlers(routes(func(r internal.Router) {
			r.POST("/save", func(c internal.Context) error {
				if err := c.SetFlash("success", "Saved"); err != nil {
					return err
				}
				return c.Redirect(http.StatusSeeOther, "/")
			})
			r.GET("/", func(c internal.Context) error {
				f, ok := c.Flash()
				if !ok {
					return c.String(http.StatusOK, "none")
				}
				return c.String(http.StatusOK, f.Kind+":"+f.Message)
			})
		})),
	)

	rec := serve(app, httptest.NewRequest(http.MethodPost, "/save", nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		next.AddCookie(c)
	}
	assert.Equal(t, "success:Saved", serve(app, next).Body.String())
	assert.Equal(t, "none", serve(app, httptest.NewRequest(http.MethodGet, "/", nil)).Body.String())
}

func TestApp_Tenant(t *testing.T) {
	t.Parallel()

	app := internal.New(
		internal.WithBaseDomain("Example.com"),
		internal.WithHandlers(routes(func(r internal.Router) {
			r.GET("/", func(c internal.Context) error {
				slug, ok := c.Tenant()
				if !ok {
					return c.String(http.StatusOK, "apex:"+c.Host())
				}
				return c.String(http.StatusOK, slug)
			})
		})),
	)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "acme.example.com:3000"
	assert.Equal(t, "acme", serve(app, req).Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "example.com"
	assert.Equal(t, "apex:example.com", serve(app, req).Body.String())
}

// --- Health and mounts ---

func TestApp_HealthAndMounts(t *testing.T) {
	t.Parallel()

	app := internal.New(
		internal.WithHealthChecks(
			internal.WithReadinessCheck("backend", func(context.Context) error { return errors.New("down") }),
		),
		internal.WithMount("/metrics", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("# metrics"))
		})),
	)

	assert.Equal(t, http.StatusOK, serve(app, httptest.NewRequest(http.MethodGet, "/health/live", nil)).Code)
	assert.Equal(t, http.StatusServiceUnavailable, serve(app, httptest.NewRequest(http.MethodGet, "/health/ready", nil)).Code)
	assert.Equal(t, "# metrics", serve(app, httptest.NewRequest(http.MethodGet, "/metrics", nil)).Body.String())
}

// --- Run ---

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("routes by host and shuts down on cancel", func(t *testing.T) {
		t.Parallel()

		text := func(s string) *internal.App {
			return internal.New(internal.WithHandlers(routes(func(r internal.Router) {
				r.GET("/", func(c internal.Context) error { return c.String(http.StatusOK, s) })
			})))
		}

		ctx, cancel := context.WithCancel(context.Background())
		addrCh := make(chan string, 1)
		var hookRan atomic.Bool
		done := make(chan error, 1)
		go func() {
			done <- internal.Run(
				internal.Domain("*.example.com", text("storefront")),
				internal.Fallback(text("console")),
				internal.Address("127.0.0.1:0"),
				internal.OnListen(func(addr string) { addrCh <- addr }),
				internal.ShutdownHook(func(context.Context) error { hookRan.Store(true); return nil }),
				internal.WithContext(ctx),
			)
		}()

		var addr string
		select {
		case addr = <-addrCh:
		case <-time.After(5 * time.Second):
			t.Fatal("server did not start")
		}

		get := func(host string) string {
			req, err := http.NewRequest(http.MethodGet, "http://"+addr+"/", nil)
			require.NoError(t, err)
			req.Host = host
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			return string(body)
		}

		assert.Equal(t, "storefront", get("acme.example.com"))
		assert.Equal(t, "console", get("admin.other.com"))

		cancel()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("server did not stop")
		}
		assert.True(t, hookRan.Load())
	})

	t.Run("nothing to serve", func(t *testing.T) {
		t.Parallel()
		require.ErrorIs(t, internal.Run(), internal.ErrNoApps)
	})
}
