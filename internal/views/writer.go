package views

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// Writer builds markup. The first failed write sticks and later calls are
// no-ops, so component bodies read top to bottom without error checks.
type Writer struct {
	w   io.Writer
	err error
}

// Func adapts a markup builder to a templ component.
func Func(fn func(ctx context.Context, h *Writer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &Writer{w: w}
		fn(ctx, h)
		return h.err
	})
}

// Raw writes trusted markup verbatim.
func (h *Writer) Raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

// Text writes s escaped. It is safe in element bodies and quoted attributes.
func (h *Writer) Text(s string) {
	h.Raw(templ.EscapeString(s))
}

// Textf formats and escapes.
func (h *Writer) Textf(format string, args ...any) {
	h.Text(fmt.Sprintf(format, args...))
}

// URL writes an escaped href value. Unsafe schemes such as javascript: are
// replaced by templ's inert placeholder.
func (h *Writer) URL(u string) {
	h.Text(string(templ.URL(u)))
}

// Component renders c in place.
func (h *Writer) Component(ctx context.Context, c templ.Component) {
	if h.err == nil && c != nil {
		h.err = c.Render(ctx, h.w)
	}
}

// Err returns the first write error.
func (h *Writer) Err() error {
	return h.err
}
