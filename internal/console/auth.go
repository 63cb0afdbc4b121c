package console

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/sitekit/internal"
	"github.com/dmitrymomot/sitekit/pkg/apiclient"
	"github.com/dmitrymomot/sitekit/pkg/backend"
	"github.com/dmitrymomot/sitekit/pkg/cookie"
	"github.com/dmitrymomot/sitekit/pkg/htmx"
	"github.com/dmitrymomot/sitekit/pkg/session"
	"github.com/dmitrymomot/sitekit/pkg/swr"
)

func (con *Console) loginForm(c internal.Context) error {
	flash, ok := c.Flash()
	return c.Render(http.StatusOK, loginView(loginData{
		Action:   c.Request().URL.RequestURI(),
		Flash:    flash,
		HasFlash: ok,
	}))
}

// login exchanges the form credentials for a backend session, relays the
// backend's Set-Cookie headers and sends the user back where they came from.
func (con *Console) login(c internal.Context) error {
	in := backend.LoginInput{
		Email:    strings.TrimSpace(c.Form("email")),
		Password: c.Form("password"),
	}
	data := loginData{Action: c.Request().URL.RequestURI(), Email: in.Email}

	_, header, err := con.api.Auth.Login(c, in)
	var verr *backend.ValidationError
	switch {
	case errors.As(err, &verr):
		data.Errors = verr
		return c.Render(http.StatusUnprocessableEntity, loginView(data))
	case apiclient.IsUnauthorized(err):
		data.Message = apiclient.Message(err, "Invalid email or password")
		return c.Render(http.StatusUnauthorized, loginView(data))
	case err != nil:
		return err
	}

	if n := session.ForwardSetCookies(c.Response(), header); n == 0 {
		c.LogWarn("login succeeded without a session cookie")
	}

	target := c.Query("redirect")
	if target == "" {
		target = c.Form("redirect")
	}
	return c.Redirect(http.StatusSeeOther, htmx.LocalPath(target, con.homePath))
}

// logout ends the backend session. The local cookie is cleared even when
// the backend cannot be reached.
func (con *Console) logout(c internal.Context) error {
	header, err := con.api.Auth.Logout(c, c.Credential())
	if err != nil {
		c.LogWarn("logout failed", slog.String("kind", apiclient.Kind(err).String()), slog.Any("error", err))
	}
	if session.ForwardSetCookies(c.Response(), header) == 0 {
		c.DeleteCookie(cookie.TokenName)
	}
	if err := c.SetFlash("success", "You have been signed out."); err != nil && !errors.Is(err, cookie.ErrNoSecret) {
		return err
	}
	return c.Redirect(http.StatusSeeOther, con.loginPath)
}

// dashboard shows the principal, the sites they manage and the newest
// contact messages. Messages are optional; sites are not.
func (con *Console) dashboard(c internal.Context) error {
	data := dashboardData{User: principal(c)}

	g, ctx := errgroup.WithContext(c)
	g.Go(func() error {
		sites, err := con.loadSites(c)
		if err != nil {
			return err
		}
		for _, s := range sites {
			if data.User.CanAccess(s.ID) {
				data.Sites = append(data.Sites, s)
			}
		}
		return nil
	})
	g.Go(func() error {
		q := apiclient.QueryFromStruct(backend.ListQuery{Page: 1, Limit: 5})
		msgs, err := swr.Load(ctx, c.Store(), swr.Key(backend.PathContactMessages, q),
			func(ctx context.Context) (backend.Page[backend.ContactMessage], error) {
				return con.api.Admin.ContactMessages.List(ctx, c.Credential(), q)
			})
		if err != nil {
			c.LogWarn("dashboard messages unavailable", slog.Any("error", err))
			return nil
		}
		data.Messages = msgs.Data
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	return c.Render(http.StatusOK, shell(data.User, "Dashboard", dashboardView(data)))
}
