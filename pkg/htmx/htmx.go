package htmx

import (
	"net/http"
	"net/url"
)

// IsHTMX reports whether the request was issued by htmx.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get(HeaderHXRequest) == "true"
}

// CurrentPath returns the path and query of the page the user is looking at.
// For htmx requests that is the browser URL, not the fragment endpoint.
func CurrentPath(r *http.Request) string {
	if IsHTMX(r) {
		if u, err := url.Parse(r.Header.Get(HeaderHXCurrentURL)); err == nil && u.Path != "" {
			return u.RequestURI()
		}
	}
	return r.URL.RequestURI()
}
