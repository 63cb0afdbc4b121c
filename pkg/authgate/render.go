package authgate

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Render returns a component that follows the gate's state at render time:
// loading while checking, nothing while unauthenticated, and content once
// the principal is known. Skipped mounts render content with a zero principal.
func (g *Gate[P]) Render(loading templ.Component, content func(P) templ.Component) templ.Component {
	if loading == nil {
		loading = templ.NopComponent
	}
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		g.mu.Lock()
		status, principal := g.status, g.principal
		g.mu.Unlock()

		switch status {
		case Authenticated, Skipped:
			return content(principal).Render(ctx, w)
		case Unauthenticated:
			return templ.NopComponent.Render(ctx, w)
		default:
			return loading.Render(ctx, w)
		}
	})
}
