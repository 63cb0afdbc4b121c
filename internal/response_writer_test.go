package internal_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sitekit/internal"
)

func TestResponseWriter(t *testing.T) {
	t.Parallel()

	t.Run("records status and size", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		rw := internal.NewResponseWriter(rec, false)
		rw.WriteHeader(http.StatusNotFound)
		n, err := rw.Write([]byte("gone"))
		require.NoError(t, err)

		assert.Equal(t, 4, n)
		assert.Equal(t, http.StatusNotFound, rw.Status())
		assert.Equal(t, int64(4), rw.Size())
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.True(t, rw.Written())
	})

	t.Run("htmx receives 200 but status is kept", func(t *testing.T) {
		t.Parallel()

		for _, code := range []int{http.StatusBadRequest, http.StatusNotFound, http.StatusBadGateway} {
			rec := httptest.NewRecorder()
			rw := internal.NewResponseWriter(rec, true)
			rw.WriteHeader(code)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, code, rw.Status())
		}
	})

	t.Run("status is written once", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		rw := internal.NewResponseWriter(rec, false)
		rw.WriteHeader(http.StatusCreated)
		rw.WriteHeader(http.StatusInternalServerError)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, http.StatusCreated, rw.Status())
	})

	t.Run("implicit 200 on write", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		rw := internal.NewResponseWriter(rec, false)
		_, _ = rw.Write([]byte("ok"))

		assert.Equal(t, http.StatusOK, rw.Status())
		assert.Equal(t, "ok", rec.Body.String())
	})

	t.Run("wrapping is idempotent", func(t *testing.T) {
		t.Parallel()

		rw := internal.NewResponseWriter(httptest.NewRecorder(), false)
		require.Same(t, rw, internal.NewResponseWriter(rw, true))
		assert.NotNil(t, rw.Unwrap())
	})
}
