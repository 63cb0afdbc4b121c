package internal

// Handler declares routes on a router.
//
// Example:
//
//	type Products struct {
//	    api *backend.API
//	}
//
//	func (h *Products) Routes(r internal.Router) {
//	    r.GET("/{siteSlug}/products", h.list)
//	}
type Handler interface {
	Routes(r Router)
}

// HandlerFunc is the signature for route handlers.
// Returning a non-nil error hands it to the app's ErrorHandler.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc to add cross-cutting concerns.
// It may inspect or modify the request, short-circuit processing,
// or wrap the response.
//
// Example:
//
//	func RequireSite(next internal.HandlerFunc) internal.HandlerFunc {
//	    return func(c internal.Context) error {
//	        if _, ok := site.FromContext(c); !ok {
//	            return internal.ErrNotFound("site not found")
//	        }
//	        return next(c)
//	    }
//	}
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler handles errors returned from handlers.
type ErrorHandler func(Context, error) error
