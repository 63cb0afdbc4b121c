package storefront

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrymomot/sitekit/internal"
	"github.com/dmitrymomot/sitekit/pkg/backend"
	"github.com/dmitrymomot/sitekit/pkg/cookie"
	"github.com/dmitrymomot/sitekit/pkg/session"
)

// contactForm renders the form with the site's contact details.
func (s *Storefront) contactForm(c internal.Context) error {
	st, err := currentSite(c)
	if err != nil {
		return err
	}
	flash, ok := c.Flash()
	return c.Render(http.StatusOK, contactView(contactPage{
		Site:     st,
		Base:     s.base(st.Slug),
		Settings: s.contactSettings(c, st.ID),
		Flash:    flash,
		HasFlash: ok,
	}))
}

// contact submits a message. Invalid input re-renders the form with 422;
// success redirects back to the form with a flash, or swaps in a thank-you
// fragment for htmx.
func (s *Storefront) contact(c internal.Context) error {
	st, err := currentSite(c)
	if err != nil {
		return err
	}

	in := backend.CreateContactMessage{
		Name:    strings.TrimSpace(c.Form("name")),
		Email:   strings.TrimSpace(c.Form("email")),
		Phone:   strings.TrimSpace(c.Form("phone")),
		Message: strings.TrimSpace(c.Form("message")),
	}

	_, err = s.api.Public.ContactMessages.Create(c, c.Credential(), st.ID, in)
	var verr *backend.ValidationError
	switch {
	case errors.As(err, &verr):
		form := contactFormData{Base: s.base(st.Slug), Input: in, Errors: verr}
		return c.RenderPartial(http.StatusUnprocessableEntity,
			contactView(contactPage{Site: st, Base: form.Base, Settings: s.contactSettings(c, st.ID), Form: form}),
			contactFormView(form),
		)
	case err != nil:
		return err
	}

	c.LogInfo("contact message submitted")

	if c.IsHTMX() {
		return c.Render(http.StatusOK, contactThanks())
	}
	if err := c.SetFlash("success", "Thank you! We will get back to you soon."); err != nil && !errors.Is(err, cookie.ErrNoSecret) {
		return err
	}
	return c.Redirect(http.StatusSeeOther, s.base(st.Slug)+"/contact")
}

// contactSettings reads the public contact details. A site without them
// renders the form alone.
func (s *Storefront) contactSettings(c internal.Context, siteID string) *backend.ContactSetting {
	cs, err := load(c, s, s.api.Public.ContactSettings.Path(siteID), nil,
		func(ctx context.Context, cred session.Credential) (backend.ContactSetting, error) {
			return s.api.Public.ContactSettings.Get(ctx, cred, siteID)
		})
	if !s.optional(c, "contact settings", err) {
		return nil
	}
	return &cs
}
