// Package views holds the markup shared by the storefront and the console.
//
// Components are templ.ComponentFunc values built with Writer, which escapes
// text and URLs through templ's own helpers:
//
//	func Title(s string) templ.Component {
//		return views.Func(func(_ context.Context, h *views.Writer) {
//			h.Raw("<h1>")
//			h.Text(s)
//			h.Raw("</h1>")
//		})
//	}
package views
