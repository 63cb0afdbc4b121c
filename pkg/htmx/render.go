package htmx

import (
	"context"
	"io"
	"net/http"
	"strings"
)

// Renderable matches templ.Component.
type Renderable interface {
	Render(ctx context.Context, w io.Writer) error
}

// Config holds the htmx response settings of one render.
type Config struct {
	OOB      []Renderable
	Retarget string
	Reswap   SwapStrategy
	PushURL  string
	Triggers []string
	Refresh  bool
}

// RenderOption configures a render.
type RenderOption func(*Config)

// NewConfig applies opts.
func NewConfig(opts ...RenderOption) *Config {
	cfg := &Config{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// ApplyHeaders writes the htmx response headers. It must run before the
// status line is written.
func (c *Config) ApplyHeaders(w http.ResponseWriter) {
	if c == nil {
		return
	}
	h := w.Header()
	if c.Retarget != "" {
		h.Set(HeaderHXRetarget, c.Retarget)
	}
	if c.Reswap != "" {
		h.Set(HeaderHXReswap, string(c.Reswap))
	}
	if c.PushURL != "" {
		h.Set(HeaderHXPushURL, c.PushURL)
	}
	if len(c.Triggers) > 0 {
		h.Set(HeaderHXTrigger, strings.Join(c.Triggers, ", "))
	}
	if c.Refresh {
		h.Set(HeaderHXRefresh, "true")
	}
}

// WithOOB appends out-of-band components rendered after the main one.
// They must carry id and hx-swap-oob attributes.
func WithOOB(components ...Renderable) RenderOption {
	return func(c *Config) { c.OOB = append(c.OOB, components...) }
}

func WithRetarget(selector string) RenderOption {
	return func(c *Config) { c.Retarget = selector }
}

func WithReswap(s SwapStrategy) RenderOption {
	return func(c *Config) { c.Reswap = s }
}

func WithPushURL(url string) RenderOption {
	return func(c *Config) { c.PushURL = url }
}

// WithTrigger fires client-side events, e.g. "site-saved".
func WithTrigger(events ...string) RenderOption {
	return func(c *Config) { c.Triggers = append(c.Triggers, events...) }
}

func WithRefresh() RenderOption {
	return func(c *Config) { c.Refresh = true }
}
