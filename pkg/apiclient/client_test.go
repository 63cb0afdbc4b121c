package apiclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sitekit/pkg/apiclient"
	"github.com/dmitrymomot/sitekit/pkg/session"
)

type captured struct {
	header http.Header
	method string
	uri    string
	body   string
}

func newBackend(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*httptest.Server, *captured) {
	t.Helper()

	c := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		c.header = r.Header.Clone()
		c.method = r.Method
		c.uri = r.URL.RequestURI()
		c.body = string(data)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, c
}

func newClient(t *testing.T, origin string, opts ...apiclient.Option) *apiclient.Client {
	t.Helper()
	c, err := apiclient.New(origin, opts...)
	require.NoError(t, err)
	return c
}

func mustRequest(t *testing.T, method, path string, opts ...apiclient.RequestOption) *apiclient.Request {
	t.Helper()
	req, err := apiclient.NewRequest(method, path, opts...)
	require.NoError(t, err)
	return req
}

// --- New ---

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("keeps only the origin", func(t *testing.T) {
		t.Parallel()

		c := newClient(t, "https://api.example.com/v1/?x=1")
		assert.Equal(t, "https://api.example.com", c.Origin())
		assert.Equal(t, apiclient.DefaultTimeout, c.Timeout())
	})

	t.Run("rejects malformed origins", func(t *testing.T) {
		t.Parallel()

		for _, raw := range []string{"", "not a url", "localhost:8080", "ftp://example.com", "http://"} {
			_, err := apiclient.New(raw)
			require.ErrorIs(t, err, apiclient.ErrInvalidBaseURL, raw)
		}
	})
}

// --- Client: request building ---

func TestClient_RequestBuilding(t *testing.T) {
	t.Parallel()

	t.Run("encodes query in order, drops nils, repeats arrays", func(t *testing.T) {
		t.Parallel()

		srv, got := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
		c := newClient(t, srv.URL)

		var status *string
		q := apiclient.NewQuery().
			Add("page", 1).
			Add("limit", 12).
			Add("status", status).
			Add("tags", []any{"a", nil, "b"}).
			Add("search", nil)

		require.NoError(t, c.Do(context.Background(), mustRequest(t, http.MethodGet, "products", apiclient.WithQuery(q)), nil))
		assert.Equal(t, "/products?page=1&limit=12&tags=a&tags=b", got.uri)
	})

	t.Run("sets accept and json content type for encoded bodies", func(t *testing.T) {
		t.Parallel()

		srv, got := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
		})
		c := newClient(t, srv.URL)

		body := map[string]any{"name": "Shoe Clean", "slug": "shoe-clean"}
		require.NoError(t, c.Do(context.Background(), mustRequest(t, http.MethodPost, "/api/admin/sites", apiclient.WithBody(body)), nil))

		assert.Equal(t, http.MethodPost, got.method)
		assert.Equal(t, "application/json", got.header.Get("Accept"))
		assert.Equal(t, "application/json", got.header.Get("Content-Type"))
		assert.JSONEq(t, `{"name":"Shoe Clean","slug":"shoe-clean"}`, got.body)
	})

	t.Run("keeps an explicit content type", func(t *testing.T) {
		t.Parallel()

		srv, got := newBackend(t, func(w http.ResponseWriter, r *http.Request) {})
		c := newClient(t, srv.URL)

		req := mustRequest(t, http.MethodPost, "/raw",
			apiclient.WithBody(`{"a":1}`),
			apiclient.WithHeader("Content-Type", "application/vnd.api+json"),
		)
		require.NoError(t, c.Do(context.Background(), req, nil))
		assert.Equal(t, "application/vnd.api+json", got.header.Get("Content-Type"))
		assert.Equal(t, `{"a":1}`, got.body)
	})

	t.Run("raw bodies pass through without json content type", func(t *testing.T) {
		t.Parallel()

		srv, got := newBackend(t, func(w http.ResponseWriter, r *http.Request) {})
		c := newClient(t, srv.URL)

		req := mustRequest(t, http.MethodPost, "/upload", apiclient.WithBody([]byte{0x01, 0x02}))
		require.NoError(t, c.Do(context.Background(), req, nil))
		assert.Empty(t, got.header.Get("Content-Type"))
		assert.Equal(t, "\x01\x02", got.body)
	})

	t.Run("form bodies keep the form content type", func(t *testing.T) {
		t.Parallel()

		srv, got := newBackend(t, func(w http.ResponseWriter, r *http.Request) {})
		c := newClient(t, srv.URL)

		req := mustRequest(t, http.MethodPost, "/form", apiclient.WithForm(map[string][]string{"a": {"1"}}))
		require.NoError(t, c.Do(context.Background(), req, nil))
		assert.Equal(t, apiclient.ContentTypeForm, got.header.Get("Content-Type"))
		assert.Equal(t, "a=1", got.body)
	})

	t.Run("explicit credential becomes a cookie header", func(t *testing.T) {
		t.Parallel()

		srv, got := newBackend(t, func(w http.ResponseWriter, r *http.Request) {})
		c := newClient(t, srv.URL)

		req := mustRequest(t, http.MethodGet, "/auth/me", apiclient.WithCredential(session.Explicit("token=abc")))
		require.NoError(t, c.Do(context.Background(), req, nil))
		assert.Equal(t, "token=abc", got.header.Get("Cookie"))
	})

	t.Run("absolute paths are used unchanged", func(t *testing.T) {
		t.Parallel()

		srv, got := newBackend(t, func(w http.ResponseWriter, r *http.Request) {})
		c := newClient(t, "http://unused.invalid")

		require.NoError(t, c.Do(context.Background(), mustRequest(t, http.MethodGet, srv.URL+"/health"), nil))
		assert.Equal(t, "/health", got.uri)
	})
}

// --- Client: responses ---

func TestClient_Responses(t *testing.T) {
	t.Parallel()

	t.Run("decodes json", func(t *testing.T) {
		t.Parallel()

		srv, _ := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"id":"u1","email":"a@b.c"}`))
		})
		c := newClient(t, srv.URL)

		type user struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		}
		u, err := apiclient.Call[user](context.Background(), c, mustRequest(t, http.MethodGet, "/auth/me"))
		require.NoError(t, err)
		assert.Equal(t, "u1", u.ID)
	})

	t.Run("204 yields the empty result", func(t *testing.T) {
		t.Parallel()

		srv, _ := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
		c := newClient(t, srv.URL)

		out := map[string]any{"untouched": true}
		req := mustRequest(t, http.MethodDelete, "/api/admin/sites/abc")
		require.NoError(t, c.Do(context.Background(), req, &out))
		assert.Equal(t, map[string]any{"untouched": true}, out)
	})

	t.Run("skip flag never parses", func(t *testing.T) {
		t.Parallel()

		srv, _ := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json"))
		})
		c := newClient(t, srv.URL)

		req := mustRequest(t, http.MethodDelete, "/api/admin/products/p1", apiclient.WithoutResponseBody())
		var out map[string]any
		require.NoError(t, c.Do(context.Background(), req, &out))
		assert.Nil(t, out)
	})

	t.Run("empty success body yields the empty result", func(t *testing.T) {
		t.Parallel()

		srv, _ := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		c := newClient(t, srv.URL)

		var out map[string]any
		require.NoError(t, c.Do(context.Background(), mustRequest(t, http.MethodGet, "/x"), &out))
		assert.Nil(t, out)
	})

	t.Run("invalid json on success is a decode error", func(t *testing.T) {
		t.Parallel()

		srv, _ := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>"))
		})
		c := newClient(t, srv.URL)

		var out map[string]any
		err := c.Do(context.Background(), mustRequest(t, http.MethodGet, "/x"), &out)
		require.ErrorIs(t, err, apiclient.ErrDecodeResponse)
	})

	t.Run("send exposes response headers", func(t *testing.T) {
		t.Parallel()

		srv, _ := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
			http.SetCookie(w, &http.Cookie{Name: "token", Value: "t1"})
			w.WriteHeader(http.StatusOK)
		})
		c := newClient(t, srv.URL)

		resp, err := c.Send(context.Background(), mustRequest(t, http.MethodPost, "/auth/login"))
		require.NoError(t, err)
		assert.Contains(t, resp.Header.Get("Set-Cookie"), "token=t1")
		assert.True(t, resp.Empty())
	})
}

// --- Client: errors ---

func TestClient_Errors(t *testing.T) {
	t.Parallel()

	t.Run("message from payload", func(t *testing.T) {
		t.Parallel()

		srv, _ := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"Slug already taken","statusCode":400}`))
		})
		c := newClient(t, srv.URL)

		err := c.Do(context.Background(), mustRequest(t, http.MethodPost, "/api/admin/sites"), nil)
		apiErr, ok := apiclient.AsError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, apiErr.Status)
		assert.Equal(t, "Slug already taken", apiErr.Message)
		assert.Equal(t, "Slug already taken", err.Error())
		payload, ok := apiErr.Payload.(map[string]any)
		require.True(t, ok)
		assert.InDelta(t, 400, payload["statusCode"], 0)
	})

	t.Run("message list from payload is joined", func(t *testing.T) {
		t.Parallel()

		srv, _ := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":["name should not be empty","price must be a number"]}`))
		})
		c := newClient(t, srv.URL)

		err := c.Do(context.Background(), mustRequest(t, http.MethodPost, "/api/admin/products"), nil)
		assert.Equal(t, "name should not be empty, price must be a number", err.Error())
	})

	t.Run("falls back to status text", func(t *testing.T) {
		t.Parallel()

		srv, _ := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("upstream exploded"))
		})
		c := newClient(t, srv.URL)

		err := c.Do(context.Background(), mustRequest(t, http.MethodGet, "/x"), nil)
		apiErr, ok := apiclient.AsError(err)
		require.True(t, ok)
		assert.Nil(t, apiErr.Payload)
		assert.Equal(t, "Bad Gateway", apiErr.Message)
		assert.Equal(t, apiclient.KindTransport, apiclient.Kind(err))
	})

	t.Run("unknown status keeps its code", func(t *testing.T) {
		t.Parallel()

		srv, _ := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(599)
		})
		c := newClient(t, srv.URL)

		err := c.Do(context.Background(), mustRequest(t, http.MethodGet, "/x"), nil)
		require.Error(t, err)
		assert.NotEmpty(t, err.Error())
		assert.Equal(t, 599, apiclient.StatusOf(err))
	})

	t.Run("401 is classified as unauthorized", func(t *testing.T) {
		t.Parallel()

		srv, _ := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Unauthorized"}`))
		})
		c := newClient(t, srv.URL)

		err := c.Do(context.Background(), mustRequest(t, http.MethodGet, "/api/admin/sites/abc"), nil)
		require.ErrorIs(t, err, apiclient.ErrUnauthorized)
		assert.True(t, apiclient.IsUnauthorized(err))
		assert.False(t, apiclient.IsNotFound(err))
		assert.Equal(t, apiclient.KindUnauthorized, apiclient.Kind(err))
	})

	t.Run("404 is classified as not found", func(t *testing.T) {
		t.Parallel()

		srv, _ := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		c := newClient(t, srv.URL)

		err := c.Do(context.Background(), mustRequest(t, http.MethodGet, "/api/sites/slug/unknown-tenant"), nil)
		require.ErrorIs(t, err, apiclient.ErrNotFound)
	})

	t.Run("connection failure is a network error without status", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.NotFoundHandler())
		origin := srv.URL
		srv.Close()

		c := newClient(t, origin)
		err := c.Do(context.Background(), mustRequest(t, http.MethodGet, "/x", apiclient.WithQuery(apiclient.NewQuery().Add("secret", "s"))), nil)

		var nerr *apiclient.NetworkError
		require.ErrorAs(t, err, &nerr)
		assert.Equal(t, 0, apiclient.StatusOf(err))
		assert.NotContains(t, nerr.URL, "secret")
		assert.Equal(t, apiclient.KindNetwork, apiclient.Kind(err))
	})

	t.Run("timeout is a network error", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		srv, _ := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		})
		defer close(release)

		c := newClient(t, srv.URL, apiclient.WithTimeout(20*time.Millisecond))
		err := c.Do(context.Background(), mustRequest(t, http.MethodGet, "/slow"), nil)

		var nerr *apiclient.NetworkError
		require.ErrorAs(t, err, &nerr)
		assert.True(t, nerr.Timeout())
	})
}

// --- Client: execution context ---

func TestClient_Modes(t *testing.T) {
	t.Parallel()

	t.Run("server context rejects ambient credentials", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64
		srv, _ := newBackend(t, func(w http.ResponseWriter, r *http.Request) { calls.Add(1) })
		c := newClient(t, srv.URL)

		err := c.Do(context.Background(), mustRequest(t, http.MethodGet, "/auth/me", apiclient.WithCredential(session.Ambient())), nil)
		require.ErrorIs(t, err, session.ErrAmbientUnavailable)
		assert.Zero(t, calls.Load())
	})

	t.Run("client context rejects explicit credentials", func(t *testing.T) {
		t.Parallel()

		srv, _ := newBackend(t, func(w http.ResponseWriter, r *http.Request) {})
		c := newClient(t, srv.URL, apiclient.WithMode(session.ClientContext))

		err := c.Do(context.Background(), mustRequest(t, http.MethodGet, "/auth/me", apiclient.WithCredential(session.Explicit("token=x"))), nil)
		require.ErrorIs(t, err, session.ErrExplicitForbidden)
	})

	t.Run("client context includes jar cookies automatically", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
			http.SetCookie(w, &http.Cookie{Name: "token", Value: "jar-token", Path: "/"})
			w.WriteHeader(http.StatusOK)
		})
		mux.HandleFunc("/auth/me", func(w http.ResponseWriter, r *http.Request) {
			ck, err := r.Cookie("token")
			if err != nil {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]string{"token": ck.Value})
		})
		srv := httptest.NewServer(mux)
		t.Cleanup(srv.Close)

		c := newClient(t, srv.URL, apiclient.WithMode(session.ClientContext))
		ctx := context.Background()

		require.NoError(t, c.Do(ctx, mustRequest(t, http.MethodPost, "/auth/login", apiclient.WithCredential(session.Ambient())), nil))

		var out map[string]string
		require.NoError(t, c.Do(ctx, mustRequest(t, http.MethodGet, "/auth/me", apiclient.WithCredential(session.Ambient())), &out))
		assert.Equal(t, "jar-token", out["token"])

		err := c.Do(ctx, mustRequest(t, http.MethodGet, "/auth/me", apiclient.WithCredential(session.Anonymous())), nil)
		assert.True(t, apiclient.IsUnauthorized(err), "anonymous calls skip the jar")
	})
}

// --- Client: observer ---

type recordingObserver struct {
	statuses []int
}

func (o *recordingObserver) ObserveRequest(_ string, status int, _ time.Duration) {
	o.statuses = append(o.statuses, status)
}

func TestClient_Observer(t *testing.T) {
	t.Parallel()

	srv, _ := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "missing") {
			w.WriteHeader(http.StatusNotFound)
		}
	})
	obs := &recordingObserver{}
	c := newClient(t, srv.URL, apiclient.WithObserver(obs))

	require.NoError(t, c.Do(context.Background(), mustRequest(t, http.MethodGet, "/ok"), nil))
	require.Error(t, c.Do(context.Background(), mustRequest(t, http.MethodGet, "/missing"), nil))
	assert.Equal(t, []int{200, 404}, obs.statuses)
}

// --- NewRequest ---

func TestNewRequest(t *testing.T) {
	t.Parallel()

	t.Run("requires method and path", func(t *testing.T) {
		t.Parallel()

		_, err := apiclient.NewRequest("", "/x")
		require.ErrorIs(t, err, apiclient.ErrInvalidRequest)
		_, err = apiclient.NewRequest(http.MethodGet, " ")
		require.ErrorIs(t, err, apiclient.ErrInvalidRequest)
	})

	t.Run("unencodable body fails the build", func(t *testing.T) {
		t.Parallel()

		_, err := apiclient.NewRequest(http.MethodPost, "/x", apiclient.WithBody(map[string]any{"ch": make(chan int)}))
		require.ErrorIs(t, err, apiclient.ErrEncodeBody)
	})

	t.Run("query is copied", func(t *testing.T) {
		t.Parallel()

		q := apiclient.NewQuery().Add("page", 1)
		req := mustRequest(t, http.MethodGet, "/x", apiclient.WithQuery(q))
		q.Add("limit", 10)
		assert.Equal(t, "page=1", req.Query().Encode())
		assert.True(t, req.ExpectsBody())
	})
}

func TestMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Failed to create site", apiclient.Message(nil, "Failed to create site"))
	assert.Equal(t, "boom", apiclient.Message(errors.New("boom"), "fallback"))

	r := apiclient.Capture(0, errors.New("boom"))
	assert.False(t, r.Ok())
	assert.Equal(t, apiclient.KindUnknown, r.Kind())

	ok := apiclient.Capture(5, nil)
	assert.True(t, ok.Ok())
	assert.Equal(t, 5, ok.Value)
	assert.Equal(t, apiclient.KindNone, ok.Kind())
}
