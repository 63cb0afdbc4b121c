// Package backend is the typed surface of the content backend.
//
// API groups the calls the site makes:
//
//	api := backend.New(client)
//
//	user, err := api.Auth.Me(ctx, cred)
//	sites, err := api.Admin.Sites.List(ctx, cred)
//	page, err := api.Admin.Products.List(ctx, cred, backend.ProductQuery{Page: 1, Limit: 12})
//	posts, err := api.Public.Posts.List(ctx, session.Anonymous(), site.ID, nil)
//
// Every call takes the session credential explicitly; see package session.
// Create and update inputs, and list filters, are validated with
// go-playground/validator before anything is sent. A rejected input returns a
// *ValidationError that matches apiclient.ErrInvalidInput.
//
// Responses keep the backend's shapes: single records for detail reads,
// Response envelopes for mutations, Page for paginated lists. The admin site
// list is an enveloped array and the public header list is a bare array.
package backend
