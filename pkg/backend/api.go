package backend

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmitrymomot/sitekit/pkg/apiclient"
	"github.com/dmitrymomot/sitekit/pkg/logger"
	"github.com/dmitrymomot/sitekit/pkg/session"
)

// Admin groups the console collections.
type Admin struct {
	Users           *Resource[User, CreateUser, UpdateUser]
	Sites           Sites
	Headers         *Resource[Header, CreateHeader, UpdateHeader]
	SEO             *Resource[SeoSetting, CreateSeoSetting, UpdateSeoSetting]
	Products        *Resource[Product, CreateProduct, UpdateProduct]
	Services        *Resource[Service, CreateService, UpdateService]
	Posts           *Resource[Post, CreatePost, UpdatePost]
	ContactSettings *Resource[ContactSetting, CreateContactSetting, UpdateContactSetting]
	ContactMessages *Resource[ContactMessage, CreateContactMessage, UpdateContactMessage]
}

// Public groups the storefront reads of one site.
type Public struct {
	Products        Catalog[Product]
	Services        Catalog[Service]
	Posts           Catalog[Post]
	Headers         Banners
	SEO             Single[SeoSetting]
	ContactSettings Single[ContactSetting]
	ContactMessages Inbox
}

// API is the typed backend surface.
type API struct {
	client *apiclient.Client
	Auth   Auth
	Admin  Admin
	Public Public
}

// Option configures the API.
type Option func(*API)

// WithLogger sets the logger used for swallowed failures.
func WithLogger(l *slog.Logger) Option {
	return func(a *API) {
		if l != nil {
			a.Auth.logger = l
		}
	}
}

// New binds the typed API to a client.
func New(client *apiclient.Client, opts ...Option) *API {
	a := &API{
		client: client,
		Auth:   Auth{client: client, logger: logger.NewNope()},
		Admin: Admin{
			Users:           NewResource[User, CreateUser, UpdateUser](client, PathUsers),
			Sites:           Sites{NewResource[Site, CreateSite, UpdateSite](client, PathSites)},
			Headers:         NewResource[Header, CreateHeader, UpdateHeader](client, PathHeaders),
			SEO:             NewResource[SeoSetting, CreateSeoSetting, UpdateSeoSetting](client, PathSEO),
			Products:        NewResource[Product, CreateProduct, UpdateProduct](client, PathProducts),
			Services:        NewResource[Service, CreateService, UpdateService](client, PathServices),
			Posts:           NewResource[Post, CreatePost, UpdatePost](client, PathPosts),
			ContactSettings: NewResource[ContactSetting, CreateContactSetting, UpdateContactSetting](client, PathContactSettings),
			ContactMessages: NewResource[ContactMessage, CreateContactMessage, UpdateContactMessage](client, PathContactMessages),
		},
		Public: Public{
			Products:        Catalog[Product]{client: client, collection: "products"},
			Services:        Catalog[Service]{client: client, collection: "services"},
			Posts:           Catalog[Post]{client: client, collection: "posts"},
			Headers:         Banners{client: client},
			SEO:             Single[SeoSetting]{client: client, collection: "seo"},
			ContactSettings: Single[ContactSetting]{client: client, collection: "contact-settings"},
			ContactMessages: Inbox{client: client},
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Client returns the underlying client.
func (a *API) Client() *apiclient.Client { return a.client }

// SiteBySlug returns the site with slug.
func (a *API) SiteBySlug(ctx context.Context, cred session.Credential, slug string) (*Site, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, ErrMissingID
	}
	return call[*Site](ctx, a.client, http.MethodGet, SiteBySlugPath(slug), apiclient.WithCredential(cred))
}
