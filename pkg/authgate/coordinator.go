package authgate

import (
	"log/slog"
	"net/url"
	"sync"

	"github.com/dmitrymomot/sitekit/pkg/logger"
	"github.com/dmitrymomot/sitekit/pkg/swr"
)

// DefaultLoginPath is the login surface.
const DefaultLoginPath = "/admin/login"

// Navigator performs a client-side navigation that replaces the current location.
type Navigator interface {
	Replace(target string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(target string)

func (f NavigatorFunc) Replace(target string) { f(target) }

// DeferredNavigator records the navigation for a caller that performs it
// later, such as an HTTP handler answering with a redirect.
type DeferredNavigator struct {
	mu     sync.Mutex
	target string
	set    bool
}

func (n *DeferredNavigator) Replace(target string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.set {
		n.target = target
		n.set = true
	}
}

// Target returns the recorded target.
func (n *DeferredNavigator) Target() (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.target, n.set
}

// CoordinatorOption configures the Coordinator.
type CoordinatorOption func(*Coordinator)

// WithLoginPath sets the login surface path.
func WithLoginPath(path string) CoordinatorOption {
	return func(c *Coordinator) {
		if path != "" {
			c.loginPath = path
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// Coordinator turns session loss into exactly one redirect to the login
// surface per session scope, whether the loss is seen by the identity gate
// or by any other read of the store.
type Coordinator struct {
	nav       Navigator
	logger    *slog.Logger
	loginPath string

	mu     sync.Mutex
	path   string
	target string
	fired  bool
}

// NewCoordinator creates a coordinator that navigates through nav.
func NewCoordinator(nav Navigator, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		nav:       nav,
		logger:    logger.NewNope(),
		loginPath: DefaultLoginPath,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoginPath returns the login surface path.
func (c *Coordinator) LoginPath() string {
	return c.loginPath
}

// Attach subscribes the coordinator to auth-denied failures of store.
func (c *Coordinator) Attach(store *swr.Store) (detach func()) {
	return store.OnUnauthorized(c)
}

// SetPath records the currently displayed path, used as the return target.
func (c *Coordinator) SetPath(path string) {
	c.mu.Lock()
	c.path = path
	c.mu.Unlock()
}

// HandleUnauthorized implements swr.UnauthorizedHandler.
func (c *Coordinator) HandleUnauthorized(ev swr.UnauthorizedEvent) {
	c.mu.Lock()
	from := c.path
	c.mu.Unlock()

	if c.Redirect(from) {
		c.logger.Info("session rejected by backend", slog.String("key", ev.Key))
	}
}

// Redirect navigates to the login surface with from as the return target.
// Only the first call after construction or Reset navigates; it reports
// whether this call did.
func (c *Coordinator) Redirect(from string) bool {
	c.mu.Lock()
	if c.fired {
		c.mu.Unlock()
		return false
	}
	c.fired = true
	c.target = LoginTarget(c.loginPath, from)
	target := c.target
	c.mu.Unlock()

	c.nav.Replace(target)
	return true
}

// Fired reports whether the redirect has happened.
func (c *Coordinator) Fired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fired
}

// Target returns the redirect target, empty before the redirect.
func (c *Coordinator) Target() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

// Reset re-arms the coordinator after a successful login.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	c.fired = false
	c.target = ""
	c.mu.Unlock()
}

// LoginTarget returns loginPath with from as the redirect query parameter.
// Empty paths and the login path itself yield the bare login path.
func LoginTarget(loginPath, from string) string {
	if from == "" || from == loginPath {
		return loginPath
	}
	return loginPath + "?" + url.Values{"redirect": {from}}.Encode()
}
