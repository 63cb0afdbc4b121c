// Package htmx detects htmx requests and writes the response headers the
// console relies on for partial updates and redirects.
//
//	if htmx.IsHTMX(r) {
//	    // render the fragment only
//	}
//	htmx.Redirect(w, r, "/admin/login?redirect=%2Fadmin%2Fsites")
//
// [LocalPath] guards user-supplied return targets such as the login page's
// redirect parameter.
package htmx
