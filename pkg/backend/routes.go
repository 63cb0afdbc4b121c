package backend

import "net/url"

// Backend paths.
const (
	PathLogin  = "/auth/login"
	PathLogout = "/auth/logout"
	PathMe     = "/auth/me"

	adminPrefix  = "/api/admin/"
	publicPrefix = "/api/public/sites/"
	siteBySlug   = "/api/sites/slug/"
)

// PublicSitesPath prefixes every public per-site path.
const PublicSitesPath = publicPrefix

// Admin collection paths.
const (
	PathUsers           = adminPrefix + "users"
	PathSites           = adminPrefix + "sites"
	PathHeaders         = adminPrefix + "headers"
	PathSEO             = adminPrefix + "seo"
	PathProducts        = adminPrefix + "products"
	PathServices        = adminPrefix + "services"
	PathPosts           = adminPrefix + "posts"
	PathContactSettings = adminPrefix + "contact-settings"
	PathContactMessages = adminPrefix + "contact-messages"
)

// SiteBySlugPath returns the site lookup path for slug.
func SiteBySlugPath(slug string) string {
	return siteBySlug + url.PathEscape(slug)
}

// PublicPath returns the public collection path of a site
// ("/api/public/sites/{siteID}/products").
func PublicPath(siteID, collection string) string {
	return publicPrefix + url.PathEscape(siteID) + "/" + collection
}

func detailPath(base, id string) string {
	return base + "/" + url.PathEscape(id)
}
