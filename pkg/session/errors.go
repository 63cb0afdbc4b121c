package session

import "errors"

// Session errors.
var (
	// ErrAmbientUnavailable is returned when a server-context call asks for
	// ambient credentials. Only a live connected client has a cookie jar.
	ErrAmbientUnavailable = errors.New("session: ambient credentials are unavailable in server context")

	// ErrExplicitForbidden is returned when a client-context call carries an
	// explicit cookie string. Client calls rely on the cookie jar only.
	ErrExplicitForbidden = errors.New("session: explicit credentials are not allowed in client context")

	// ErrJar is returned when the cookie jar cannot be created.
	ErrJar = errors.New("session: failed to create cookie jar")
)
