package middlewares_test

import (
	"net/http"
	"net/http/httptest"

	"github.com/dmitrymomot/sitekit/internal"
)

type routes func(r internal.Router)

func (f routes) Routes(r internal.Router) { f(r) }

func ok(c internal.Context) error {
	return c.String(http.StatusOK, "ok")
}

func serve(app http.Handler, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, r)
	return rec
}
