package console

import (
	"context"
	"encoding/json"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/sitekit/internal/views"
	"github.com/dmitrymomot/sitekit/pkg/backend"
	"github.com/dmitrymomot/sitekit/pkg/cookie"
)

type row struct {
	ID    string
	Label string
}

type tableData struct {
	Title  string
	Base   string
	Rows   []row
	Meta   backend.PageMeta
	Search string
}

type loginData struct {
	Action   string
	Email    string
	Message  string
	Errors   *backend.ValidationError
	Flash    cookie.Flash
	HasFlash bool
}

type dashboardData struct {
	User     *backend.User
	Sites    []backend.Site
	Messages []backend.ContactMessage
}

var navigation = []backend.MenuItem{
	{Label: "Dashboard", Href: "/admin/dashboard"},
	{Label: "Sites", Href: "/admin/sites"},
	{Label: "Products", Href: "/admin/products"},
	{Label: "Services", Href: "/admin/services"},
	{Label: "Posts", Href: "/admin/posts"},
	{Label: "Headers", Href: "/admin/headers"},
	{Label: "SEO", Href: "/admin/seo"},
	{Label: "Contact", Href: "/admin/contact-settings"},
	{Label: "Messages", Href: "/admin/contact-messages"},
	{Label: "Users", Href: "/admin/users"},
}

// shell is the console page frame.
func shell(u *backend.User, title string, body templ.Component) templ.Component {
	return views.Document(views.Meta{Title: title + " · Admin", Class: "console"}, views.Func(func(ctx context.Context, h *views.Writer) {
		h.Raw(`<aside><nav>`)
		for _, item := range navigation {
			h.Raw(`<a href="`)
			h.URL(item.Href)
			h.Raw(`">`)
			h.Text(item.Label)
			h.Raw(`</a>`)
		}
		h.Raw(`</nav>`)
		if u != nil {
			h.Raw(`<p class="principal">`)
			h.Text(u.Email)
			h.Raw(` <small>`)
			h.Text(string(u.Role))
			h.Raw(`</small></p>`)
		}
		h.Raw(`<form method="post" action="/admin/logout"><button type="submit">Sign out</button></form></aside><section id="content"><h1>`)
		h.Text(title)
		h.Raw(`</h1>`)
		h.Component(ctx, body)
		h.Raw(`</section>`)
	}))
}

// tableView is both the list page body and its htmx fragment.
func tableView(v tableData) templ.Component {
	return views.Func(func(ctx context.Context, h *views.Writer) {
		h.Raw(`<div id="table">`)
		if v.Meta.TotalPages > 0 {
			h.Raw(`<form hx-get="`)
			h.URL(v.Base)
			h.Raw(`" hx-target="#table" hx-swap="outerHTML"><input type="search" name="search" value="`)
			h.Text(v.Search)
			h.Raw(`" placeholder="Search"></form>`)
		}
		h.Raw(`<table><tbody>`)
		for _, r := range v.Rows {
			h.Raw(`<tr id="row-`)
			h.Text(r.ID)
			h.Raw(`"><td><a href="`)
			h.URL(v.Base + "/" + r.ID)
			h.Raw(`">`)
			h.Text(r.Label)
			h.Raw(`</a></td></tr>`)
		}
		h.Raw(`</tbody></table>`)
		if len(v.Rows) == 0 {
			h.Raw(`<p class="empty">Nothing here yet.</p>`)
		}
		h.Component(ctx, views.Pagination(v.Meta, v.Base))
		h.Raw(`</div>`)
	})
}

// recordView shows a record as indented JSON; editing happens through the
// JSON actions.
func recordView(collection, base string, record any) templ.Component {
	return views.Func(func(_ context.Context, h *views.Writer) {
		data, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			h.Raw(`<p class="error">This record cannot be displayed.</p>`)
			return
		}
		h.Raw(`<pre class="record">`)
		h.Text(string(data))
		h.Raw(`</pre><a href="`)
		h.URL(base)
		h.Raw(`">Back to `)
		h.Text(collection)
		h.Raw(`</a>`)
	})
}

func loginView(d loginData) templ.Component {
	return views.Document(views.Meta{Title: "Sign in · Admin", Class: "console login"}, views.Func(func(ctx context.Context, h *views.Writer) {
		h.Raw(`<main><h1>Sign in</h1>`)
		h.Component(ctx, views.Flash(d.Flash, d.HasFlash))
		if d.Message != "" {
			h.Raw(`<p class="flash flash-error">`)
			h.Text(d.Message)
			h.Raw(`</p>`)
		}
		h.Component(ctx, views.FieldErrors(d.Errors))
		h.Raw(`<form method="post" action="`)
		h.URL(d.Action)
		h.Raw(`"><label>Email <input type="email" name="email" value="`)
		h.Text(d.Email)
		h.Raw(`" autocomplete="username"></label>`)
		h.Raw(`<label>Password <input type="password" name="password" autocomplete="current-password"></label>`)
		h.Raw(`<button type="submit">Sign in</button></form></main>`)
	}))
}

func dashboardView(d dashboardData) templ.Component {
	return views.Func(func(_ context.Context, h *views.Writer) {
		h.Raw(`<p class="sites-count">`)
		h.Textf("You manage %d site(s).", len(d.Sites))
		h.Raw(`</p><ul class="sites">`)
		for _, s := range d.Sites {
			h.Raw(`<li><a href="`)
			h.URL("/admin/sites/" + s.ID)
			h.Raw(`">`)
			h.Text(s.Name)
			h.Raw(`</a> <a href="`)
			h.URL("/" + s.Slug)
			h.Raw(`" target="_blank">View</a></li>`)
		}
		h.Raw(`</ul>`)
		if len(d.Messages) > 0 {
			h.Raw(`<h2>Latest messages</h2><ul class="messages">`)
			for _, m := range d.Messages {
				h.Raw(`<li class="status-`)
				h.Text(string(m.Status))
				h.Raw(`"><a href="`)
				h.URL("/admin/contact-messages/" + m.ID)
				h.Raw(`">`)
				h.Text(m.Name)
				h.Raw(`</a></li>`)
			}
			h.Raw(`</ul>`)
		}
	})
}
