// Package cookie handles the cookies the web app owns: presence checks for the
// backend session token and signed one-shot flash notices.
//
//	m := cookie.New(cookie.WithSecret(cfg.CookieSecret), cookie.WithSecure(true))
//	if !m.Has(r, cookie.TokenName) {
//	    // redirect to login
//	}
//	_ = m.SetFlash(w, cookie.Flash{Kind: "success", Message: "Site created"})
package cookie
