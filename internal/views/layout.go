package views

import (
	"context"
	"strconv"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/sitekit/pkg/backend"
	"github.com/dmitrymomot/sitekit/pkg/cookie"
)

// Meta is the document head.
type Meta struct {
	Title       string
	Description string
	Keywords    []string
	// Class is set on <body>; templates use it to pick their stylesheet.
	Class string
}

// Document wraps body in the HTML shell with htmx loaded.
func Document(meta Meta, body templ.Component) templ.Component {
	return Func(func(ctx context.Context, h *Writer) {
		h.Raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.Raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.Raw(`<title>`)
		h.Text(meta.Title)
		h.Raw(`</title>`)
		if meta.Description != "" {
			h.Raw(`<meta name="description" content="`)
			h.Text(meta.Description)
			h.Raw(`">`)
		}
		if len(meta.Keywords) > 0 {
			h.Raw(`<meta name="keywords" content="`)
			for i, k := range meta.Keywords {
				if i > 0 {
					h.Raw(", ")
				}
				h.Text(k)
			}
			h.Raw(`">`)
		}
		h.Raw(`<script src="https://unpkg.com/htmx.org@2.0.4" defer></script>`)
		h.Raw(`</head><body`)
		if meta.Class != "" {
			h.Raw(` class="`)
			h.Text(meta.Class)
			h.Raw(`"`)
		}
		h.Raw(`>`)
		h.Component(ctx, body)
		h.Raw(`</body></html>`)
	})
}

// Flash renders a one-shot notice. ok false renders nothing.
func Flash(f cookie.Flash, ok bool) templ.Component {
	if !ok || f.Message == "" {
		return templ.NopComponent
	}
	return Func(func(_ context.Context, h *Writer) {
		h.Raw(`<div class="flash flash-`)
		h.Text(f.Kind)
		h.Raw(`" role="status">`)
		h.Text(f.Message)
		h.Raw(`</div>`)
	})
}

// Pagination renders previous and next links for a page. base is the list
// path; the page number is appended as a query parameter.
func Pagination(meta backend.PageMeta, base string) templ.Component {
	if !meta.HasPrev() && !meta.HasNext() {
		return templ.NopComponent
	}
	return Func(func(_ context.Context, h *Writer) {
		h.Raw(`<nav class="pagination">`)
		if meta.HasPrev() {
			h.Raw(`<a rel="prev" href="`)
			h.URL(base + "?page=" + strconv.Itoa(meta.Page-1))
			h.Raw(`">Previous</a>`)
		}
		h.Raw(`<span>Page `)
		h.Textf("%d of %d", meta.Page, meta.TotalPages)
		h.Raw(`</span>`)
		if meta.HasNext() {
			h.Raw(`<a rel="next" href="`)
			h.URL(base + "?page=" + strconv.Itoa(meta.Page+1))
			h.Raw(`">Next</a>`)
		}
		h.Raw(`</nav>`)
	})
}

// FieldErrors lists validation messages. A nil error renders nothing.
func FieldErrors(verr *backend.ValidationError) templ.Component {
	if verr == nil || len(verr.Fields) == 0 {
		return templ.NopComponent
	}
	return Func(func(_ context.Context, h *Writer) {
		h.Raw(`<ul class="errors">`)
		for _, f := range verr.Fields {
			h.Raw(`<li data-field="`)
			h.Text(f.Field)
			h.Raw(`">`)
			h.Text(f.Message())
			h.Raw(`</li>`)
		}
		h.Raw(`</ul>`)
	})
}

// Money formats a price with two decimals.
func Money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
