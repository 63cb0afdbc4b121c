package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/sitekit/internal/config"
	"github.com/dmitrymomot/sitekit/pkg/apiclient"
	"github.com/dmitrymomot/sitekit/pkg/authgate"
	"github.com/dmitrymomot/sitekit/pkg/backend"
	"github.com/dmitrymomot/sitekit/pkg/health"
	"github.com/dmitrymomot/sitekit/pkg/session"
	"github.com/dmitrymomot/sitekit/pkg/swr"
)

// ErrNotSignedIn is returned when the backend rejects the session even
// after signing in.
var ErrNotSignedIn = errors.New("sitectl: not signed in")

// client is one terminal session: a cookie jar, a store that lives for
// the whole process and an identity gate over it.
type client struct {
	cfg     *config.Config
	flags   *flags
	log     *slog.Logger
	api     *backend.API
	store   *swr.Store
	monitor *swr.Monitor
	coord   *authgate.Coordinator
	gate    *authgate.Gate[*backend.User]
	detach  func()
}

func newClient(cfg *config.Config, f *flags, log *slog.Logger) (*client, error) {
	jar, err := session.NewJar()
	if err != nil {
		return nil, err
	}
	apic, err := apiclient.New(cfg.API.Origin,
		apiclient.WithMode(session.ClientContext),
		apiclient.WithCookieJar(jar),
		apiclient.WithTimeout(cfg.API.Timeout),
		apiclient.WithLogger(log),
		apiclient.WithUserAgent("sitectl"),
	)
	if err != nil {
		return nil, err
	}

	c := &client{
		cfg:   cfg,
		flags: f,
		log:   log,
		api:   backend.New(apic),
		store: swr.New(swr.WithPolicy(cfg.Policy), swr.WithLogger(log)),
	}
	c.monitor = swr.NewMonitor(c.store, swr.ProbeFunc(health.Reachable(cfg.API.Origin, nil)),
		swr.WithMonitorLogger(log),
	)

	// There is no page to send the user to; the redirect becomes a notice
	// and the command signs in instead.
	nav := authgate.NavigatorFunc(func(target string) {
		log.Info("sign-in required", slog.String("target", target))
	})
	c.coord = authgate.NewCoordinator(nav, authgate.WithLogger(log))
	c.detach = c.coord.Attach(c.store)
	c.gate = authgate.New(c.store, c.coord, func(ctx context.Context) (*backend.User, error) {
		return c.api.Auth.Me(ctx, session.Ambient())
	})
	return c, nil
}

// Close releases the gate, the monitor and the store.
func (c *client) Close() {
	c.gate.Unmount()
	c.monitor.Stop()
	c.detach()
	c.store.Close()
}

// principal returns the signed-in user, signing in with the flag or test
// credentials when the gate reports the session missing.
func (c *client) principal(ctx context.Context, path string) (*backend.User, error) {
	user, err := c.check(ctx, path)
	if err != nil || user != nil {
		return user, err
	}
	if _, err := c.login(ctx); err != nil {
		return nil, err
	}
	user, err = c.check(ctx, path)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotSignedIn
	}
	return user, nil
}

// check mounts the gate on path and waits for its verdict. A nil user
// without error means the session is missing.
func (c *client) check(ctx context.Context, path string) (*backend.User, error) {
	c.gate.Mount(ctx, path)
	status, err := c.gate.Wait(ctx)
	if err != nil {
		return nil, err
	}
	if status == authgate.Authenticated {
		return c.gate.View().Principal, nil
	}
	if gerr := c.gate.Err(); gerr != nil && !apiclient.IsUnauthorized(gerr) {
		return nil, gerr
	}
	return nil, nil
}

// login signs in and re-arms the gate for the new session.
func (c *client) login(ctx context.Context) (*backend.User, error) {
	in := backend.LoginInput{Email: c.flags.email, Password: c.flags.password}
	if in.Email == "" && in.Password == "" {
		if err := c.cfg.EnsureTestCredentials(); err != nil {
			return nil, err
		}
		in = backend.LoginInput{Email: c.cfg.Test.Email, Password: c.cfg.Test.Password}
	}

	res, _, err := c.api.Auth.Login(ctx, in)
	if err != nil {
		return nil, err
	}
	c.gate.Unmount()
	c.store.Invalidate(authgate.IdentityKey)
	c.coord.Reset()

	user := res.Data.User
	c.log.Debug("signed in", slog.String("email", user.Email))
	return &user, nil
}
