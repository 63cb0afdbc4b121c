// Package internal is the small web framework the sitekit servers are built on:
// an App wrapping chi, a Context per request, and host-based composition of
// several Apps.
//
// # Handlers
//
// Handlers implement Handler and declare routes on a Router. A HandlerFunc
// returns an error instead of writing one; the app's ErrorHandler turns it
// into a response:
//
//	func (h *Pages) Routes(r internal.Router) {
//	    r.GET("/{siteSlug}/posts/{id}", h.post)
//	}
//
//	func (h *Pages) post(c internal.Context) error {
//	    p, err := h.api.Public.Posts.Detail(c, c.Credential(), siteID, c.Param("id"))
//	    if err != nil {
//	        return err
//	    }
//	    return c.Render(http.StatusOK, views.Post(p))
//	}
//
// # Errors
//
// MapError classifies backend errors: unauthorized becomes 401 (which
// DefaultErrorHandler turns into a login redirect carrying the current path),
// not found becomes 404, invalid input 422, network failures 503 and any
// other backend failure 502. Site resolution failures always present as 404.
//
// # Request scope
//
// Every request gets its own swr.Store, created lazily by Context.Store and
// closed when the response is done, plus the browser's cookies as an explicit
// session.Credential. Middleware and handlers of one request share both.
//
// # Running
//
//	err := internal.Run(
//	    internal.Domain("*.example.com", storefront),
//	    internal.Fallback(console),
//	    internal.Address(":3000"),
//	    internal.ShutdownHook(closeRedis),
//	)
package internal
