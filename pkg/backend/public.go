package backend

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmitrymomot/sitekit/pkg/apiclient"
	"github.com/dmitrymomot/sitekit/pkg/session"
)

// Catalog is a public per-site collection with list and detail reads.
type Catalog[T any] struct {
	client     *apiclient.Client
	collection string
}

// ListPath returns the collection path for a site.
func (c Catalog[T]) ListPath(siteID string) string {
	return PublicPath(siteID, c.collection)
}

// DetailPath returns the path of one record of a site.
func (c Catalog[T]) DetailPath(siteID, id string) string {
	return detailPath(c.ListPath(siteID), id)
}

func (c Catalog[T]) List(ctx context.Context, cred session.Credential, siteID string, query any) (Page[T], error) {
	if strings.TrimSpace(siteID) == "" {
		return Page[T]{}, ErrMissingID
	}
	q, err := buildQuery(query)
	if err != nil {
		return Page[T]{}, err
	}
	return call[Page[T]](ctx, c.client, http.MethodGet, c.ListPath(siteID),
		apiclient.WithQuery(q), apiclient.WithCredential(cred))
}

func (c Catalog[T]) Detail(ctx context.Context, cred session.Credential, siteID, id string) (T, error) {
	if strings.TrimSpace(siteID) == "" || strings.TrimSpace(id) == "" {
		var zero T
		return zero, ErrMissingID
	}
	return call[T](ctx, c.client, http.MethodGet, c.DetailPath(siteID, id), apiclient.WithCredential(cred))
}

// Single is a public per-site settings record.
type Single[T any] struct {
	client     *apiclient.Client
	collection string
}

func (s Single[T]) Path(siteID string) string {
	return PublicPath(siteID, s.collection)
}

func (s Single[T]) Get(ctx context.Context, cred session.Credential, siteID string) (T, error) {
	if strings.TrimSpace(siteID) == "" {
		var zero T
		return zero, ErrMissingID
	}
	return call[T](ctx, s.client, http.MethodGet, s.Path(siteID), apiclient.WithCredential(cred))
}

// Banners lists a site's hero headers. The list is a bare array.
type Banners struct {
	client *apiclient.Client
}

func (b Banners) Path(siteID string) string {
	return PublicPath(siteID, "headers")
}

func (b Banners) List(ctx context.Context, cred session.Credential, siteID string) ([]Header, error) {
	if strings.TrimSpace(siteID) == "" {
		return nil, ErrMissingID
	}
	return call[[]Header](ctx, b.client, http.MethodGet, b.Path(siteID), apiclient.WithCredential(cred))
}

// Inbox is the public contact form endpoint of a site.
type Inbox struct {
	client *apiclient.Client
}

func (i Inbox) Path(siteID string) string {
	return PublicPath(siteID, "contact-messages")
}

func (i Inbox) List(ctx context.Context, cred session.Credential, siteID string, query any) (Page[ContactMessage], error) {
	return Catalog[ContactMessage]{client: i.client, collection: "contact-messages"}.List(ctx, cred, siteID, query)
}

// Create validates and submits a contact message.
func (i Inbox) Create(ctx context.Context, cred session.Credential, siteID string, in CreateContactMessage) (Response[ContactMessage], error) {
	if strings.TrimSpace(siteID) == "" {
		return Response[ContactMessage]{}, ErrMissingID
	}
	if err := Validate(in); err != nil {
		return Response[ContactMessage]{}, err
	}
	return call[Response[ContactMessage]](ctx, i.client, http.MethodPost, i.Path(siteID),
		apiclient.WithBody(in), apiclient.WithCredential(cred))
}
