package htmx

import (
	"net/http"
	"strings"
)

// Redirect sends a 302 for regular requests and HX-Redirect for htmx ones.
func Redirect(w http.ResponseWriter, r *http.Request, target string) {
	RedirectWithStatus(w, r, target, http.StatusFound)
}

// RedirectWithStatus is Redirect with a custom status for regular requests.
// htmx only follows HX-Redirect on a 200.
func RedirectWithStatus(w http.ResponseWriter, r *http.Request, target string, status int) {
	if IsHTMX(r) {
		w.Header().Set(HeaderHXRedirect, target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, status)
}

// RedirectBack redirects to the "redirect" query parameter when it is a local
// path, otherwise to fallback.
func RedirectBack(w http.ResponseWriter, r *http.Request, fallback string) {
	Redirect(w, r, LocalPath(r.URL.Query().Get("redirect"), fallback))
}

// LocalPath returns target when it is a path on this host, otherwise fallback.
// Scheme-relative ("//evil.com") and backslash forms are rejected.
func LocalPath(target, fallback string) string {
	target = strings.TrimSpace(target)
	if target == "" || target[0] != '/' {
		return fallback
	}
	if len(target) > 1 && (target[1] == '/' || target[1] == '\\') {
		return fallback
	}
	if strings.ContainsAny(target, "\r\n") {
		return fallback
	}
	return target
}
