package sanitizer

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	contentPolicy *bluemonday.Policy
	textPolicy    *bluemonday.Policy
	initOnce      sync.Once
)

func initPolicies() {
	initOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()

		// Rich text produced by the console editor.
		contentPolicy = bluemonday.UGCPolicy()
		contentPolicy.AllowElements("figure", "figcaption", "mark", "u", "s")
		contentPolicy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("p", "span", "pre", "code", "figure")
		contentPolicy.AllowAttrs("loading").Matching(bluemonday.Paragraph).OnElements("img")
		contentPolicy.RequireNoFollowOnLinks(true)
		contentPolicy.AddTargetBlankToFullyQualifiedLinks(true)
	})
}

// Content sanitizes post and service bodies for rendering as HTML.
// Scripts, event handlers, styles and javascript: URLs are removed; headings,
// lists, tables, images and links survive.
func Content(s string) string {
	initPolicies()
	return contentPolicy.Sanitize(s)
}

// Text strips all markup, for excerpts and meta descriptions.
func Text(s string) string {
	initPolicies()
	return textPolicy.Sanitize(s)
}
