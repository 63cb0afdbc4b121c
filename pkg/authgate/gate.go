package authgate

import (
	"context"
	"reflect"
	"sync"

	"github.com/dmitrymomot/sitekit/pkg/swr"
)

// IdentityKey is the cache key of the "who am I" read.
const IdentityKey = "/auth/me"

// Status is the gate's authentication state.
type Status uint8

const (
	Unknown Status = iota
	Skipped
	Checking
	Authenticated
	Unauthenticated
)

func (s Status) String() string {
	switch s {
	case Skipped:
		return "skipped"
	case Checking:
		return "checking"
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Identity loads the current principal.
type Identity[P any] func(ctx context.Context) (P, error)

// View is what protected content sees.
type View[P any] struct {
	Principal       P
	IsLoading       bool
	IsAuthenticated bool
}

// GateOption configures the Gate.
type GateOption func(*gateConfig)

type gateConfig struct {
	key string
}

// WithIdentityKey overrides the identity cache key.
func WithIdentityKey(key string) GateOption {
	return func(c *gateConfig) {
		if key != "" {
			c.key = key
		}
	}
}

// MountOption configures one mount.
type MountOption func(*mountConfig)

type mountConfig struct {
	skip bool
}

// Skip bypasses the identity check for this mount. No identity read is issued.
func Skip(skip bool) MountOption {
	return func(c *mountConfig) {
		c.skip = c.skip || skip
	}
}

// Gate derives an authentication state from the identity read and asks the
// coordinator to redirect when the session is gone.
type Gate[P any] struct {
	store    *swr.Store
	coord    *Coordinator
	identity Identity[P]
	key      string

	mu        sync.Mutex
	status    Status
	principal P
	err       error
	path      string
	sub       *swr.Subscription
	changed   chan struct{}
}

// New creates a gate reading the identity through store.
func New[P any](store *swr.Store, coord *Coordinator, identity Identity[P], opts ...GateOption) *Gate[P] {
	cfg := gateConfig{key: IdentityKey}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Gate[P]{
		store:    store,
		coord:    coord,
		identity: identity,
		key:      cfg.key,
		changed:  make(chan struct{}),
	}
}

// Mount starts guarding path. The login surface, or a mount with Skip(true),
// is Skipped and never reads the identity. Any other path subscribes to the
// identity key with retry and reconnect revalidation disabled.
func (g *Gate[P]) Mount(ctx context.Context, path string, opts ...MountOption) Status {
	cfg := mountConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	g.Unmount()
	g.coord.SetPath(path)

	g.mu.Lock()
	g.path = path
	if cfg.skip || path == g.coord.LoginPath() {
		var zero P
		g.principal = zero
		g.err = nil
		g.setStatus(Skipped)
		g.mu.Unlock()
		return Skipped
	}
	g.setStatus(Checking)
	g.mu.Unlock()

	if ctx.Err() != nil {
		return Checking
	}

	identity := g.identity
	sub := g.store.Subscribe(g.key, func(ctx context.Context) (any, error) {
		p, err := identity(ctx)
		if err != nil {
			return nil, err
		}
		return p, nil
	},
		swr.WithoutRetry(),
		swr.WithRevalidateOnReconnect(false),
		swr.WithRevalidateOnFocus(false),
	)

	g.mu.Lock()
	g.sub = sub
	g.mu.Unlock()

	g.apply(sub, sub.State())
	go func() {
		for st := range sub.Updates() {
			g.apply(sub, st)
		}
	}()

	return g.Status()
}

// Unmount stops watching the identity key.
func (g *Gate[P]) Unmount() {
	g.mu.Lock()
	sub := g.sub
	g.sub = nil
	g.mu.Unlock()

	if sub != nil {
		sub.Close()
	}
}

// Status returns the current state.
func (g *Gate[P]) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

// Err returns the error that made the gate unauthenticated, if any.
func (g *Gate[P]) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.err
}

// View returns the state as seen by protected content.
func (g *Gate[P]) View() View[P] {
	g.mu.Lock()
	defer g.mu.Unlock()
	return View[P]{
		Principal:       g.principal,
		IsLoading:       g.status == Checking,
		IsAuthenticated: g.status == Authenticated,
	}
}

// Wait blocks until the gate leaves Checking or ctx is done.
func (g *Gate[P]) Wait(ctx context.Context) (Status, error) {
	for {
		g.mu.Lock()
		status, ch := g.status, g.changed
		g.mu.Unlock()

		if status != Checking {
			return status, nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return Checking, ctx.Err()
		}
	}
}

// Logout clears the cached identity. Mounted gates become unauthenticated
// and redirect.
func (g *Gate[P]) Logout() {
	g.store.Mutate(g.key, nil)
}

func (g *Gate[P]) apply(sub *swr.Subscription, st swr.State) {
	g.mu.Lock()
	if g.sub != sub {
		g.mu.Unlock()
		return
	}

	if st.IsLoading {
		g.setStatus(Checking)
		g.mu.Unlock()
		return
	}

	p, _ := st.Data.(P)
	if st.Err == nil && !isZero(p) {
		g.principal = p
		g.err = nil
		g.setStatus(Authenticated)
		g.mu.Unlock()
		return
	}

	var zero P
	g.principal = zero
	g.err = st.Err
	g.setStatus(Unauthenticated)
	path := g.path
	g.mu.Unlock()

	g.coord.Redirect(path)
}

// setStatus records s and wakes waiters. Caller holds g.mu.
func (g *Gate[P]) setStatus(s Status) {
	if g.status == s {
		return
	}
	g.status = s
	close(g.changed)
	g.changed = make(chan struct{})
}

func isZero[P any](p P) bool {
	v := reflect.ValueOf(&p).Elem()
	return v.IsZero()
}
