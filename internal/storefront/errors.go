package storefront

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dmitrymomot/sitekit/internal"
	"github.com/dmitrymomot/sitekit/internal/views"
)

// ErrorHandler renders 4xx failures other than 401 as an HTML page and hands
// everything else to next, typically internal.DefaultErrorHandler.
func ErrorHandler(next internal.ErrorHandler) internal.ErrorHandler {
	return func(c internal.Context, err error) error {
		httpErr := internal.MapError(err)
		if httpErr.Code < http.StatusBadRequest ||
			httpErr.Code >= http.StatusInternalServerError ||
			httpErr.Code == http.StatusUnauthorized {
			return next(c, err)
		}
		return c.Render(httpErr.Code, errorView(httpErr))
	}
}

func errorView(e *internal.HTTPError) internal.Component {
	return views.Document(views.Meta{Title: e.StatusText()}, views.Func(func(_ context.Context, h *views.Writer) {
		h.Raw(`<main class="error"><h1>`)
		h.Text(strconv.Itoa(e.Code))
		h.Raw(` `)
		h.Text(e.StatusText())
		h.Raw(`</h1><p>`)
		h.Text(e.Message)
		h.Raw(`</p><a href="/">Back to home</a></main>`)
	}))
}
