// Package storefront serves the public pages of tenant sites.
//
// A site is addressed by its slug, either as a path prefix ("/acme/products")
// or, with WithHostTenants, as a subdomain of the app's base domain. The
// tenant middleware resolves the slug once per request; unknown slugs answer
// 404.
//
// Public data is read anonymously through the process-wide swr.Store, so
// concurrent visitors of one page share a single backend call and identical
// reads within the dedup window are served from cache:
//
//	sf := storefront.New(api, store, resolver, storefront.WithLogger(log))
//	app := internal.New(internal.WithHandlers(sf))
//
// The home page picks its layout from the site's template id (default,
// petshop, shoe-cleaning). Post and product bodies are sanitized with
// bluemonday before rendering. The contact form is rate limited per client.
package storefront
