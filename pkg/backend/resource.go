package backend

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrymomot/sitekit/pkg/apiclient"
	"github.com/dmitrymomot/sitekit/pkg/session"
)

// ErrMissingID is returned when a detail call has an empty id.
var ErrMissingID = errors.New("backend: id is required")

// Resource is an admin collection with list, detail, create, update and
// delete operations. T is the record, C the create input and U the update input.
type Resource[T, C, U any] struct {
	client *apiclient.Client
	base   string
}

// NewResource binds a collection path to a client.
func NewResource[T, C, U any](client *apiclient.Client, base string) *Resource[T, C, U] {
	return &Resource[T, C, U]{client: client, base: base}
}

// Path returns the collection path.
func (r *Resource[T, C, U]) Path() string { return r.base }

// DetailPath returns the path of one record.
func (r *Resource[T, C, U]) DetailPath(id string) string { return detailPath(r.base, id) }

// List returns one page. query is a filter struct with `query` tags
// (ListQuery, ProductQuery, PostQuery) or nil.
func (r *Resource[T, C, U]) List(ctx context.Context, cred session.Credential, query any) (Page[T], error) {
	q, err := buildQuery(query)
	if err != nil {
		return Page[T]{}, err
	}
	return call[Page[T]](ctx, r.client, http.MethodGet, r.base,
		apiclient.WithQuery(q), apiclient.WithCredential(cred))
}

// Detail returns one record.
func (r *Resource[T, C, U]) Detail(ctx context.Context, cred session.Credential, id string) (T, error) {
	if strings.TrimSpace(id) == "" {
		var zero T
		return zero, ErrMissingID
	}
	return call[T](ctx, r.client, http.MethodGet, r.DetailPath(id), apiclient.WithCredential(cred))
}

// Create validates in and creates a record.
func (r *Resource[T, C, U]) Create(ctx context.Context, cred session.Credential, in C) (Response[T], error) {
	if err := Validate(in); err != nil {
		return Response[T]{}, err
	}
	return call[Response[T]](ctx, r.client, http.MethodPost, r.base,
		apiclient.WithBody(in), apiclient.WithCredential(cred))
}

// Update validates in and patches a record.
func (r *Resource[T, C, U]) Update(ctx context.Context, cred session.Credential, id string, in U) (Response[T], error) {
	if strings.TrimSpace(id) == "" {
		return Response[T]{}, ErrMissingID
	}
	if err := Validate(in); err != nil {
		return Response[T]{}, err
	}
	return call[Response[T]](ctx, r.client, http.MethodPatch, r.DetailPath(id),
		apiclient.WithBody(in), apiclient.WithCredential(cred))
}

// Remove deletes a record. The response body is never parsed.
func (r *Resource[T, C, U]) Remove(ctx context.Context, cred session.Credential, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrMissingID
	}
	req, err := apiclient.NewRequest(http.MethodDelete, r.DetailPath(id),
		apiclient.WithCredential(cred), apiclient.WithoutResponseBody())
	if err != nil {
		return err
	}
	return r.client.Do(ctx, req, nil)
}

// Sites is the admin site collection. Its list is an enveloped array
// rather than a page.
type Sites struct {
	*Resource[Site, CreateSite, UpdateSite]
}

// List returns every site the principal may manage.
func (s Sites) List(ctx context.Context, cred session.Credential) (Response[[]Site], error) {
	return call[Response[[]Site]](ctx, s.client, http.MethodGet, s.base, apiclient.WithCredential(cred))
}

func buildQuery(query any) (*apiclient.Query, error) {
	switch q := query.(type) {
	case nil:
		return nil, nil
	case *apiclient.Query:
		return q, nil
	}
	if err := Validate(query); err != nil {
		return nil, err
	}
	return apiclient.QueryFromStruct(query), nil
}

func call[T any](ctx context.Context, c *apiclient.Client, method, path string, opts ...apiclient.RequestOption) (T, error) {
	var zero T
	req, err := apiclient.NewRequest(method, path, opts...)
	if err != nil {
		return zero, err
	}
	return apiclient.Call[T](ctx, c, req)
}
