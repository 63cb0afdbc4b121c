package console

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmitrymomot/sitekit/internal"
	"github.com/dmitrymomot/sitekit/pkg/apiclient"
	"github.com/dmitrymomot/sitekit/pkg/backend"
	"github.com/dmitrymomot/sitekit/pkg/swr"
)

// DefaultPageSize is the console list page size.
const DefaultPageSize = 20

// collection describes one admin resource: its routes, how to label a
// record and which site a record belongs to.
type collection[T, C, U any] struct {
	name  string // route segment
	title string
	noun  string // for fallback messages ("Failed to create product")

	res   *backend.Resource[T, C, U]
	id    func(T) string
	label func(T) string
	// siteOf returns the owning site, whose public cache entries a
	// mutation makes stale. Nil for resources not shown publicly.
	siteOf func(T) string

	noCreate bool
}

// mount registers the list and detail pages and the mutation actions.
func mount[T, C, U any](r internal.Router, con *Console, col collection[T, C, U]) {
	r.Route("/"+col.name, func(r internal.Router) {
		r.GET("/", func(c internal.Context) error { return listPage(c, con, col) })
		r.GET("/{id}", func(c internal.Context) error { return detailPage(c, con, col) })
		if !col.noCreate {
			r.POST("/", func(c internal.Context) error { return createAction(c, con, col) })
		}
		r.PATCH("/{id}", func(c internal.Context) error { return updateAction(c, con, col) })
		r.DELETE("/{id}", func(c internal.Context) error { return deleteAction(c, con, col) })
	})
}

// listQuery reads page and search from the URL.
func listQuery(c internal.Context) backend.ListQuery {
	return backend.ListQuery{
		Page:   internal.PositiveQuery(c, "page", 1),
		Limit:  DefaultPageSize,
		Search: strings.TrimSpace(c.Query("search")),
	}
}

// listPage reads through the request-scoped store, so the page, its htmx
// fragments and any nested reads of one request share a single call.
func listPage[T, C, U any](c internal.Context, con *Console, col collection[T, C, U]) error {
	filter := listQuery(c)
	q := apiclient.QueryFromStruct(filter)
	page, err := swr.Load(c, c.Store(), swr.Key(col.res.Path(), q),
		func(ctx context.Context) (backend.Page[T], error) {
			return col.res.List(ctx, c.Credential(), q)
		})
	if err != nil {
		return err
	}

	rows := make([]row, len(page.Data))
	for i, item := range page.Data {
		rows[i] = row{ID: col.id(item), Label: col.label(item)}
	}
	v := tableData{
		Title:  col.title,
		Base:   DefaultBasePath + "/" + col.name,
		Rows:   rows,
		Meta:   page.Meta,
		Search: filter.Search,
	}
	return c.RenderPartial(http.StatusOK, shell(principal(c), col.title, tableView(v)), tableView(v))
}

func detailPage[T, C, U any](c internal.Context, con *Console, col collection[T, C, U]) error {
	id := c.Param("id")
	item, err := swr.Load(c, c.Store(), col.res.DetailPath(id),
		func(ctx context.Context) (T, error) {
			return col.res.Detail(ctx, c.Credential(), id)
		})
	if err != nil {
		return err
	}
	title := col.label(item)
	if title == "" {
		title = col.title
	}
	return c.Render(http.StatusOK, shell(principal(c), title, recordView(col.title, DefaultBasePath+"/"+col.name, item)))
}
