package storefront

import (
	"context"
	"strings"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/sitekit/internal/views"
	"github.com/dmitrymomot/sitekit/pkg/backend"
	"github.com/dmitrymomot/sitekit/pkg/cookie"
	"github.com/dmitrymomot/sitekit/pkg/sanitizer"
	"github.com/dmitrymomot/sitekit/pkg/site"
)

type homePage struct {
	Site     *backend.Site
	Base     string
	Template string
	Headers  []backend.Header
	SEO      backend.SeoSetting
	Products []backend.Product
	Services []backend.Service
}

type listPage[T any] struct {
	Site *backend.Site
	Base string
	Page backend.Page[T]
}

type contactPage struct {
	Site     *backend.Site
	Base     string
	Settings *backend.ContactSetting
	Form     contactFormData
	Flash    cookie.Flash
	HasFlash bool
}

type contactFormData struct {
	Base   string
	Input  backend.CreateContactMessage
	Errors *backend.ValidationError
}

// layout wraps a page in the site's header and footer.
func layout(s *backend.Site, base string, meta views.Meta, body templ.Component) templ.Component {
	if meta.Title == "" {
		meta.Title = s.Name
	}
	meta.Class = "tpl-" + site.Template(s.Template)
	return views.Document(meta, views.Func(func(ctx context.Context, h *views.Writer) {
		h.Raw(`<header class="site-header"><a class="brand" href="`)
		h.URL(base + "/")
		h.Raw(`">`)
		if hdr := s.Config.Header; hdr != nil && hdr.Logo != "" {
			h.Raw(`<img src="`)
			h.URL(hdr.Logo)
			h.Raw(`" alt="`)
			h.Text(s.Name)
			h.Raw(`">`)
		} else {
			h.Text(s.Name)
		}
		h.Raw(`</a><nav>`)
		if hdr := s.Config.Header; hdr != nil && len(hdr.MenuItems) > 0 {
			for _, item := range hdr.MenuItems {
				menuLink(h, item)
			}
		} else {
			for _, item := range []backend.MenuItem{
				{Label: "Products", Href: base + "/products"},
				{Label: "Services", Href: base + "/services"},
				{Label: "Posts", Href: base + "/posts"},
				{Label: "Contact", Href: base + "/contact"},
			} {
				menuLink(h, item)
			}
		}
		h.Raw(`</nav></header><main>`)
		h.Component(ctx, body)
		h.Raw(`</main><footer class="site-footer">`)
		if ftr := s.Config.Footer; ftr != nil {
			for _, link := range ftr.Links {
				menuLink(h, link)
			}
			for _, social := range ftr.SocialLinks {
				h.Raw(`<a class="social" rel="noopener" href="`)
				h.URL(social.URL)
				h.Raw(`">`)
				h.Text(social.Platform)
				h.Raw(`</a>`)
			}
			if ftr.Copyright != "" {
				h.Raw(`<p>`)
				h.Text(ftr.Copyright)
				h.Raw(`</p>`)
			}
		}
		h.Raw(`</footer>`)
	}))
}

func menuLink(h *views.Writer, item backend.MenuItem) {
	h.Raw(`<a href="`)
	h.URL(item.Href)
	h.Raw(`"`)
	if item.External {
		h.Raw(` target="_blank" rel="noopener"`)
	}
	h.Raw(`>`)
	h.Text(item.Label)
	h.Raw(`</a>`)
}

// taglines per template variant.
var taglines = map[string]string{
	site.TemplatePetshop:      "Everything your pet needs in one place",
	site.TemplateShoeCleaning: "Professional care for your favourite shoes",
}

func homeView(p homePage) templ.Component {
	meta := views.Meta{
		Title:       p.SEO.MetaTitle,
		Description: sanitizer.Text(p.SEO.MetaDescription),
		Keywords:    p.SEO.Keywords,
	}
	return layout(p.Site, p.Base, meta, views.Func(func(ctx context.Context, h *views.Writer) {
		h.Raw(`<section class="hero">`)
		if len(p.Headers) > 0 {
			hero := p.Headers[0]
			if hero.MediaURL != "" {
				h.Raw(`<img class="hero-media" src="`)
				h.URL(hero.MediaURL)
				h.Raw(`" alt="">`)
			}
			h.Raw(`<h1>`)
			h.Text(hero.Title)
			h.Raw(`</h1>`)
			if hero.Subtitle != "" {
				h.Raw(`<p>`)
				h.Text(hero.Subtitle)
				h.Raw(`</p>`)
			}
			if hero.CTALabel != "" && hero.CTALink != "" {
				h.Raw(`<a class="cta" href="`)
				h.URL(hero.CTALink)
				h.Raw(`">`)
				h.Text(hero.CTALabel)
				h.Raw(`</a>`)
			}
		} else {
			h.Raw(`<h1>Welcome to `)
			h.Text(p.Site.Name)
			h.Raw(`</h1>`)
			if tagline, ok := taglines[p.Template]; ok {
				h.Raw(`<p>`)
				h.Text(tagline)
				h.Raw(`</p>`)
			} else {
				h.Raw(`<p>This is the default template. Please configure a custom template for this site.</p>`)
			}
		}
		h.Raw(`</section>`)

		if p.Template == site.TemplateShoeCleaning && len(p.Services) > 0 {
			h.Raw(`<section class="services"><h2>Our services</h2>`)
			for _, svc := range p.Services {
				serviceCard(h, svc)
			}
			h.Raw(`</section>`)
		}
		if len(p.Products) > 0 {
			h.Raw(`<section class="featured"><h2>Featured products</h2><div class="grid">`)
			for _, prod := range p.Products {
				productCard(h, p.Base, prod)
			}
			h.Raw(`</div><a class="more" href="`)
			h.URL(p.Base + "/products")
			h.Raw(`">Shop now</a></section>`)
		}
	}))
}

func productCard(h *views.Writer, base string, p backend.Product) {
	h.Raw(`<article class="product" id="product-`)
	h.Text(p.ID)
	h.Raw(`"><a href="`)
	h.URL(base + "/products/" + p.ID)
	h.Raw(`">`)
	if len(p.Images) > 0 {
		h.Raw(`<img loading="lazy" src="`)
		h.URL(p.Images[0])
		h.Raw(`" alt="`)
		h.Text(p.Name)
		h.Raw(`">`)
	}
	h.Raw(`<h3>`)
	h.Text(p.Name)
	h.Raw(`</h3></a><p class="price">`)
	h.Text(views.Money(p.Price))
	h.Raw(`</p></article>`)
}

func serviceCard(h *views.Writer, s backend.Service) {
	h.Raw(`<article class="service"><h3>`)
	h.Text(s.Name)
	h.Raw(`</h3><p>`)
	h.Text(sanitizer.Text(s.Description))
	h.Raw(`</p><p class="price">`)
	h.Text(views.Money(s.Price))
	h.Raw(`</p></article>`)
}

// productGrid is the htmx-swappable part of the products page.
func productGrid(p listPage[backend.Product]) templ.Component {
	return views.Func(func(ctx context.Context, h *views.Writer) {
		h.Raw(`<div id="products" class="grid">`)
		for _, prod := range p.Page.Data {
			productCard(h, p.Base, prod)
		}
		if len(p.Page.Data) == 0 {
			h.Raw(`<p class="empty">No products available.</p>`)
		}
		h.Raw(`</div>`)
		h.Component(ctx, views.Pagination(p.Page.Meta, p.Base+"/products"))
	})
}

func productsView(p listPage[backend.Product]) templ.Component {
	return layout(p.Site, p.Base, views.Meta{Title: "Products · " + p.Site.Name}, views.Func(func(ctx context.Context, h *views.Writer) {
		h.Raw(`<h1>Products</h1>`)
		h.Component(ctx, productGrid(p))
	}))
}

func productView(s *backend.Site, base string, p backend.Product) templ.Component {
	return layout(s, base, views.Meta{Title: p.Name + " · " + s.Name, Description: sanitizer.Text(p.Description)},
		views.Func(func(_ context.Context, h *views.Writer) {
			h.Raw(`<article class="product-detail"><h1>`)
			h.Text(p.Name)
			h.Raw(`</h1>`)
			for _, img := range p.Images {
				h.Raw(`<img src="`)
				h.URL(img)
				h.Raw(`" alt="`)
				h.Text(p.Name)
				h.Raw(`">`)
			}
			h.Raw(`<p class="price">`)
			h.Text(views.Money(p.Price))
			h.Raw(`</p><div class="description">`)
			h.Raw(sanitizer.Content(p.Description))
			h.Raw(`</div></article>`)
		}))
}

func servicesView(p listPage[backend.Service]) templ.Component {
	return layout(p.Site, p.Base, views.Meta{Title: "Services · " + p.Site.Name}, views.Func(func(ctx context.Context, h *views.Writer) {
		h.Raw(`<h1>Services</h1><div class="grid">`)
		for _, svc := range p.Page.Data {
			serviceCard(h, svc)
		}
		if len(p.Page.Data) == 0 {
			h.Raw(`<p class="empty">No services available.</p>`)
		}
		h.Raw(`</div>`)
		h.Component(ctx, views.Pagination(p.Page.Meta, p.Base+"/services"))
	}))
}

func postsView(p listPage[backend.Post]) templ.Component {
	return layout(p.Site, p.Base, views.Meta{Title: "Posts · " + p.Site.Name}, views.Func(func(ctx context.Context, h *views.Writer) {
		h.Raw(`<h1>Posts</h1>`)
		for _, post := range p.Page.Data {
			h.Raw(`<article class="post-summary"><h2><a href="`)
			h.URL(p.Base + "/posts/" + post.ID)
			h.Raw(`">`)
			h.Text(post.Title)
			h.Raw(`</a></h2><time>`)
			h.Text(post.CreatedAt.Format("Jan 2, 2006"))
			h.Raw(`</time><p>`)
			h.Text(excerpt(post))
			h.Raw(`</p></article>`)
		}
		if len(p.Page.Data) == 0 {
			h.Raw(`<p class="empty">No posts yet.</p>`)
		}
		h.Component(ctx, views.Pagination(p.Page.Meta, p.Base+"/posts"))
	}))
}

// postView renders a post. Content is HTML authored in the console and is
// sanitized before it reaches the page.
func postView(s *backend.Site, base string, p backend.Post) templ.Component {
	return layout(s, base, views.Meta{Title: p.Title + " · " + s.Name, Description: excerpt(p)},
		views.Func(func(_ context.Context, h *views.Writer) {
			h.Raw(`<article class="post"><h1>`)
			h.Text(p.Title)
			h.Raw(`</h1>`)
			if p.FeaturedImage != "" {
				h.Raw(`<img class="featured" src="`)
				h.URL(p.FeaturedImage)
				h.Raw(`" alt="`)
				h.Text(p.Title)
				h.Raw(`">`)
			}
			h.Raw(`<div class="content">`)
			h.Raw(sanitizer.Content(p.Content))
			h.Raw(`</div></article>`)
		}))
}

const excerptLen = 200

func excerpt(p backend.Post) string {
	text := p.Excerpt
	if text == "" {
		text = p.Content
	}
	text = strings.Join(strings.Fields(sanitizer.Text(text)), " ")
	if r := []rune(text); len(r) > excerptLen {
		return string(r[:excerptLen]) + "…"
	}
	return text
}

func contactView(p contactPage) templ.Component {
	if p.Form.Base == "" {
		p.Form.Base = p.Base
	}
	return layout(p.Site, p.Base, views.Meta{Title: "Contact · " + p.Site.Name}, views.Func(func(ctx context.Context, h *views.Writer) {
		h.Raw(`<h1>Contact us</h1>`)
		h.Component(ctx, views.Flash(p.Flash, p.HasFlash))
		if cs := p.Settings; cs != nil {
			h.Raw(`<dl class="contact-details">`)
			for _, row := range [][2]string{
				{"Email", cs.Email},
				{"Phone", cs.Phone},
				{"Address", cs.Address},
				{"Working hours", cs.WorkingHours},
			} {
				if row[1] == "" {
					continue
				}
				h.Raw(`<dt>`)
				h.Text(row[0])
				h.Raw(`</dt><dd>`)
				h.Text(row[1])
				h.Raw(`</dd>`)
			}
			h.Raw(`</dl>`)
		}
		h.Component(ctx, contactFormView(p.Form))
	}))
}

func contactFormView(f contactFormData) templ.Component {
	return views.Func(func(ctx context.Context, h *views.Writer) {
		h.Raw(`<form id="contact-form" method="post" action="`)
		h.URL(f.Base + "/contact")
		h.Raw(`" hx-post="`)
		h.URL(f.Base + "/contact")
		h.Raw(`" hx-swap="outerHTML">`)
		h.Component(ctx, views.FieldErrors(f.Errors))
		for _, field := range []struct{ name, label, kind, value string }{
			{"name", "Name", "text", f.Input.Name},
			{"email", "Email", "email", f.Input.Email},
			{"phone", "Phone", "tel", f.Input.Phone},
		} {
			h.Raw(`<label>`)
			h.Text(field.label)
			h.Raw(` <input name="`)
			h.Text(field.name)
			h.Raw(`" type="`)
			h.Text(field.kind)
			h.Raw(`" value="`)
			h.Text(field.value)
			h.Raw(`"></label>`)
		}
		h.Raw(`<label>Message <textarea name="message">`)
		h.Text(f.Input.Message)
		h.Raw(`</textarea></label><button type="submit">Send</button></form>`)
	})
}

func contactThanks() templ.Component {
	return views.Func(func(_ context.Context, h *views.Writer) {
		h.Raw(`<div id="contact-form" class="flash flash-success">Thank you! We will get back to you soon.</div>`)
	})
}
