package console

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/sitekit/internal"
	"github.com/dmitrymomot/sitekit/middlewares"
	"github.com/dmitrymomot/sitekit/pkg/authgate"
	"github.com/dmitrymomot/sitekit/pkg/backend"
	"github.com/dmitrymomot/sitekit/pkg/logger"
	"github.com/dmitrymomot/sitekit/pkg/swr"
)

// Console paths.
const (
	DefaultBasePath = "/admin"
	DefaultHomePath = "/admin/dashboard"
)

// SiteCache is the part of site.Resolver that site mutations invalidate.
type SiteCache interface {
	Forget(ctx context.Context, slug string) error
	Purge(ctx context.Context) error
}

// Console serves the administrative pages and server actions.
// Implements internal.Handler.
type Console struct {
	api    *backend.API
	sites  SiteCache
	public *swr.Store
	logger *slog.Logger

	loginPath string
	homePath  string
}

// Option configures the Console.
type Option func(*Console)

// WithPublicStore sets the process-wide store whose public entries are
// invalidated after successful mutations.
func WithPublicStore(s *swr.Store) Option {
	return func(c *Console) {
		c.public = s
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Console) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates the console. sites may be nil when no resolver cache is used.
func New(api *backend.API, sites SiteCache, opts ...Option) *Console {
	c := &Console{
		api:       api,
		sites:     sites,
		logger:    logger.NewNope(),
		loginPath: authgate.DefaultLoginPath,
		homePath:  DefaultHomePath,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Routes declares the console routes. Every page except the login form
// passes the session cookie guard and then the identity gate.
func (con *Console) Routes(r internal.Router) {
	con.loginPath = r.LoginPath()

	r.Route(DefaultBasePath, func(r internal.Router) {
		r.Use(middlewares.SessionGuard(
			middlewares.WithGuardPaths(DefaultBasePath, con.loginPath, con.homePath),
		))
		r.GET("/login", con.loginForm)
		r.POST("/login", con.login)

		r.Group(func(r internal.Router) {
			r.Use(middlewares.AuthGate(con.identity, middlewares.WithAuthLoginPath(con.loginPath)))

			r.GET("/", func(c internal.Context) error {
				return c.Redirect(http.StatusSeeOther, con.homePath)
			})
			r.GET("/dashboard", con.dashboard)
			r.POST("/logout", con.logout)

			con.siteRoutes(r)
			mount(r, con, collection[backend.User, backend.CreateUser, backend.UpdateUser]{
				name: "users", title: "Users", noun: "user",
				res:   con.api.Admin.Users,
				id:    func(u backend.User) string { return u.ID },
				label: func(u backend.User) string { return u.Email },
			})
			mount(r, con, collection[backend.Product, backend.CreateProduct, backend.UpdateProduct]{
				name: "products", title: "Products", noun: "product",
				res:    con.api.Admin.Products,
				id:     func(p backend.Product) string { return p.ID },
				label:  func(p backend.Product) string { return p.Name },
				siteOf: func(p backend.Product) string { return p.SiteID },
			})
			mount(r, con, collection[backend.Service, backend.CreateService, backend.UpdateService]{
				name: "services", title: "Services", noun: "service",
				res:    con.api.Admin.Services,
				id:     func(s backend.Service) string { return s.ID },
				label:  func(s backend.Service) string { return s.Name },
				siteOf: func(s backend.Service) string { return s.SiteID },
			})
			mount(r, con, collection[backend.Post, backend.CreatePost, backend.UpdatePost]{
				name: "posts", title: "Posts", noun: "post",
				res:    con.api.Admin.Posts,
				id:     func(p backend.Post) string { return p.ID },
				label:  func(p backend.Post) string { return p.Title },
				siteOf: func(p backend.Post) string { return p.SiteID },
			})
			mount(r, con, collection[backend.Header, backend.CreateHeader, backend.UpdateHeader]{
				name: "headers", title: "Headers", noun: "header",
				res:    con.api.Admin.Headers,
				id:     func(h backend.Header) string { return h.ID },
				label:  func(h backend.Header) string { return h.Title },
				siteOf: func(h backend.Header) string { return h.SiteID },
			})
			mount(r, con, collection[backend.SeoSetting, backend.CreateSeoSetting, backend.UpdateSeoSetting]{
				name: "seo", title: "SEO", noun: "SEO setting",
				res:    con.api.Admin.SEO,
				id:     func(s backend.SeoSetting) string { return s.ID },
				label:  func(s backend.SeoSetting) string { return s.MetaTitle },
				siteOf: func(s backend.SeoSetting) string { return s.SiteID },
			})
			mount(r, con, collection[backend.ContactSetting, backend.CreateContactSetting, backend.UpdateContactSetting]{
				name: "contact-settings", title: "Contact settings", noun: "contact setting",
				res:    con.api.Admin.ContactSettings,
				id:     func(s backend.ContactSetting) string { return s.ID },
				label:  func(s backend.ContactSetting) string { return s.Email },
				siteOf: func(s backend.ContactSetting) string { return s.SiteID },
			})
			mount(r, con, collection[backend.ContactMessage, backend.CreateContactMessage, backend.UpdateContactMessage]{
				name: "contact-messages", title: "Messages", noun: "message",
				res:      con.api.Admin.ContactMessages,
				id:       func(m backend.ContactMessage) string { return m.ID },
				label:    func(m backend.ContactMessage) string { return m.Name + " <" + m.Email + ">" },
				siteOf:   func(m backend.ContactMessage) string { return m.SiteID },
				noCreate: true,
			})
		})
	})
}

// identity binds the "who am I" read to the request's browser cookies.
func (con *Console) identity(c internal.Context) authgate.Identity[*backend.User] {
	cred := c.Credential()
	return func(ctx context.Context) (*backend.User, error) {
		return con.api.Auth.Me(ctx, cred)
	}
}

// principal returns the user AuthGate resolved for this request.
func principal(c internal.Context) *backend.User {
	u, _ := middlewares.Principal[*backend.User](c)
	return u
}
