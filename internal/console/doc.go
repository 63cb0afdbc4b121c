// Package console serves the administrative pages and server actions.
//
// Requests under /admin pass two checks. The session cookie guard redirects
// browsers without a live "token" cookie to the login page before any
// backend call. The identity gate then asks the backend who the user is,
// through the request-scoped store, and redirects exactly once if the
// session is gone.
//
// Pages read through c.Store(), which lives for one request, so a page and
// its fragments share calls but no authenticated data outlives the request.
// Mutations are JSON actions answering ActionResult:
//
//	PATCH /admin/products/p1   {"price": 12.5}
//	→ {"success": true, "data": {...}}
//	→ {"success": false, "error": "Failed to update product"}
//
// A successful mutation invalidates the admin list in the request store and
// the owning site's public reads in the process-wide store. Site mutations
// also drop cached slug resolutions.
package console
