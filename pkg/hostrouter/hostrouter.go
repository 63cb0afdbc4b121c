package hostrouter

import (
	"net"
	"net/http"
	"strings"
)

// Routes maps host patterns to handlers.
// Exact: "admin.example.com". Wildcard: "*.example.com".
type Routes map[string]http.Handler

// Router dispatches on the request host. Exact patterns win over wildcards.
type Router struct {
	exact    map[string]http.Handler
	wildcard map[string]http.Handler // keyed by the parent domain
	fallback http.Handler
}

// New creates a router. A nil fallback answers 404.
func New(routes Routes, fallback http.Handler) *Router {
	if fallback == nil {
		fallback = http.NotFoundHandler()
	}
	r := &Router{
		exact:    make(map[string]http.Handler),
		wildcard: make(map[string]http.Handler),
		fallback: fallback,
	}
	for pattern, h := range routes {
		pattern = strings.ToLower(strings.TrimSpace(pattern))
		switch {
		case pattern == "" || h == nil:
		case strings.HasPrefix(pattern, "*."):
			r.wildcard[pattern[2:]] = h
		default:
			r.exact[pattern] = h
		}
	}
	return r
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	host := Host(req)
	if h, ok := r.exact[host]; ok {
		h.ServeHTTP(w, req)
		return
	}
	if _, parent, ok := strings.Cut(host, "."); ok {
		if h, ok := r.wildcard[parent]; ok {
			h.ServeHTTP(w, req)
			return
		}
	}
	r.fallback.ServeHTTP(w, req)
}

// Host returns the lowercased request host without port.
func Host(r *http.Request) string {
	host := r.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
		if strings.Contains(host, ":") {
			host = "[" + host + "]"
		}
	}
	return strings.ToLower(strings.TrimSuffix(host, "."))
}

// Tenant returns the single-label subdomain of baseDomain the request was
// sent to: "acme" for "acme.example.com". Nested subdomains, the apex and
// foreign hosts yield false.
func Tenant(r *http.Request, baseDomain string) (string, bool) {
	base := strings.ToLower(strings.Trim(strings.TrimSpace(baseDomain), "."))
	if base == "" {
		return "", false
	}
	label, ok := strings.CutSuffix(Host(r), "."+base)
	if !ok || label == "" || strings.Contains(label, ".") {
		return "", false
	}
	return label, true
}
