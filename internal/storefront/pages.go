package storefront

import (
	"context"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/sitekit/internal"
	"github.com/dmitrymomot/sitekit/middlewares"
	"github.com/dmitrymomot/sitekit/pkg/apiclient"
	"github.com/dmitrymomot/sitekit/pkg/backend"
	"github.com/dmitrymomot/sitekit/pkg/session"
	"github.com/dmitrymomot/sitekit/pkg/site"
)

// currentSite returns the site resolved by the tenant middleware.
func currentSite(c internal.Context) (*backend.Site, error) {
	s, ok := middlewares.CurrentSite(c)
	if !ok {
		return nil, internal.ErrNotFound("Site not found")
	}
	return s, nil
}

// home renders the site's template variant. Banners and SEO are loaded
// alongside the variant's own sections and degrade to nothing on failure.
func (s *Storefront) home(c internal.Context) error {
	st, err := currentSite(c)
	if err != nil {
		return err
	}

	page := homePage{
		Site:     st,
		Base:     s.base(st.Slug),
		Template: site.Template(st.Template),
	}

	g, ctx := errgroup.WithContext(c)
	g.Go(func() error {
		headers, err := load(ctx, s, s.api.Public.Headers.Path(st.ID), nil,
			func(ctx context.Context, cred session.Credential) ([]backend.Header, error) {
				return s.api.Public.Headers.List(ctx, cred, st.ID)
			})
		if s.optional(c, "headers", err) {
			page.Headers = headers
		}
		return nil
	})
	g.Go(func() error {
		seo, err := s.seo(ctx, st.ID)
		if s.optional(c, "seo", err) {
			page.SEO = seo
		}
		return nil
	})

	switch page.Template {
	case site.TemplatePetshop, site.TemplateShoeCleaning:
		g.Go(func() error {
			products, err := s.productPage(ctx, st.ID, 1, FeaturedLimit)
			if err != nil {
				return err
			}
			page.Products = products.Data
			return nil
		})
	}
	if page.Template == site.TemplateShoeCleaning {
		g.Go(func() error {
			q := apiclient.QueryFromStruct(backend.ListQuery{Page: 1, Limit: FeaturedLimit})
			services, err := load(ctx, s, s.api.Public.Services.ListPath(st.ID), q,
				func(ctx context.Context, cred session.Credential) (backend.Page[backend.Service], error) {
					return s.api.Public.Services.List(ctx, cred, st.ID, q)
				})
			if s.optional(c, "services", err) {
				page.Services = services.Data
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	return c.Render(http.StatusOK, homeView(page))
}

func (s *Storefront) products(c internal.Context) error {
	st, err := currentSite(c)
	if err != nil {
		return err
	}

	page := internal.PositiveQuery(c, "page", 1)
	products, err := s.productPage(c, st.ID, page, s.productLimit)
	if err != nil {
		return notFound("Products not found", err)
	}

	v := listPage[backend.Product]{Site: st, Base: s.base(st.Slug), Page: products}
	return c.RenderPartial(http.StatusOK, productsView(v), productGrid(v))
}

// productPage reads one page of published products. The query is built from
// backend.ProductQuery, so identical pages share one cache key
// ("…/products?page=1&limit=12").
func (s *Storefront) productPage(ctx context.Context, siteID string, page, limit int) (backend.Page[backend.Product], error) {
	q := apiclient.QueryFromStruct(backend.ProductQuery{Page: page, Limit: limit})
	return load(ctx, s, s.api.Public.Products.ListPath(siteID), q,
		func(ctx context.Context, cred session.Credential) (backend.Page[backend.Product], error) {
			return s.api.Public.Products.List(ctx, cred, siteID, q)
		})
}

func (s *Storefront) product(c internal.Context) error {
	st, err := currentSite(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	p, err := load(c, s, s.api.Public.Products.DetailPath(st.ID, id), nil,
		func(ctx context.Context, cred session.Credential) (backend.Product, error) {
			return s.api.Public.Products.Detail(ctx, cred, st.ID, id)
		})
	if err != nil {
		return notFound("Product not found", err)
	}
	return c.Render(http.StatusOK, productView(st, s.base(st.Slug), p))
}

func (s *Storefront) services(c internal.Context) error {
	st, err := currentSite(c)
	if err != nil {
		return err
	}

	q := apiclient.QueryFromStruct(backend.ListQuery{Page: internal.PositiveQuery(c, "page", 1), Limit: s.productLimit})
	services, err := load(c, s, s.api.Public.Services.ListPath(st.ID), q,
		func(ctx context.Context, cred session.Credential) (backend.Page[backend.Service], error) {
			return s.api.Public.Services.List(ctx, cred, st.ID, q)
		})
	if err != nil {
		return notFound("Services not found", err)
	}
	return c.Render(http.StatusOK, servicesView(listPage[backend.Service]{Site: st, Base: s.base(st.Slug), Page: services}))
}

func (s *Storefront) posts(c internal.Context) error {
	st, err := currentSite(c)
	if err != nil {
		return err
	}

	filter := backend.PostQuery{
		Page:  internal.PositiveQuery(c, "page", 1),
		Limit: DefaultPostLimit,
		Type:  backend.PostType(c.Query("type")),
	}
	if err := backend.Validate(filter); err != nil {
		return internal.ErrBadRequest("Invalid post filter", internal.WithError(err))
	}
	q := apiclient.QueryFromStruct(filter)
	posts, err := load(c, s, s.api.Public.Posts.ListPath(st.ID), q,
		func(ctx context.Context, cred session.Credential) (backend.Page[backend.Post], error) {
			return s.api.Public.Posts.List(ctx, cred, st.ID, q)
		})
	if err != nil {
		return notFound("Posts not found", err)
	}
	return c.Render(http.StatusOK, postsView(listPage[backend.Post]{Site: st, Base: s.base(st.Slug), Page: posts}))
}

func (s *Storefront) post(c internal.Context) error {
	st, err := currentSite(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	p, err := load(c, s, s.api.Public.Posts.DetailPath(st.ID, id), nil,
		func(ctx context.Context, cred session.Credential) (backend.Post, error) {
			return s.api.Public.Posts.Detail(ctx, cred, st.ID, id)
		})
	if err != nil {
		return notFound("Post not found", err)
	}
	return c.Render(http.StatusOK, postView(st, s.base(st.Slug), p))
}

func (s *Storefront) seo(ctx context.Context, siteID string) (backend.SeoSetting, error) {
	return load(ctx, s, s.api.Public.SEO.Path(siteID), nil,
		func(ctx context.Context, cred session.Credential) (backend.SeoSetting, error) {
			return s.api.Public.SEO.Get(ctx, cred, siteID)
		})
}
