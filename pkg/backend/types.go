package backend

import (
	"encoding/json"
	"time"
)

// Response is the backend's single-record envelope.
type Response[T any] struct {
	Data       T      `json:"data"`
	Message    string `json:"message,omitempty"`
	StatusCode int    `json:"statusCode,omitempty"`
}

// Page is a paginated list.
type Page[T any] struct {
	Data []T      `json:"data"`
	Meta PageMeta `json:"meta"`
}

// PageMeta describes the page position.
type PageMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// HasNext reports whether a following page exists.
func (m PageMeta) HasNext() bool { return m.Page < m.TotalPages }

// HasPrev reports whether a preceding page exists.
func (m PageMeta) HasPrev() bool { return m.Page > 1 }

// Role is a console user role.
type Role string

const (
	RoleSuperadmin Role = "superadmin"
	RoleAdmin      Role = "admin"
	RoleEditor     Role = "editor"
)

// User is a console principal.
type User struct {
	ID      string   `json:"id"`
	Email   string   `json:"email"`
	Role    Role     `json:"role"`
	SiteIDs []string `json:"siteIds"`
}

// CanAccess reports whether the user may manage the site.
// Superadmins manage every site.
func (u *User) CanAccess(siteID string) bool {
	if u == nil {
		return false
	}
	if u.Role == RoleSuperadmin {
		return true
	}
	for _, id := range u.SiteIDs {
		if id == siteID {
			return true
		}
	}
	return false
}

// LoginInput is the login form.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is the login response.
type LoginResult struct {
	Data struct {
		AccessToken string `json:"accessToken"`
		User        User   `json:"user"`
	} `json:"data"`
}

// Site is a tenant.
type Site struct {
	ID        string     `json:"id"`
	Slug      string     `json:"slug"`
	Name      string     `json:"name"`
	Domain    string     `json:"domain,omitempty"`
	Template  string     `json:"template"`
	Theme     Theme      `json:"theme"`
	Config    SiteConfig `json:"config,omitzero"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Theme holds a site's palette and typography.
type Theme struct {
	PrimaryColor    string `json:"primaryColor" validate:"omitempty,hexcolor"`
	SecondaryColor  string `json:"secondaryColor" validate:"omitempty,hexcolor"`
	BackgroundColor string `json:"backgroundColor" validate:"omitempty,hexcolor"`
	TextColor       string `json:"textColor,omitempty" validate:"omitempty,hexcolor"`
	FontFamily      string `json:"fontFamily,omitempty"`
}

// SiteConfig is a site's layout configuration. Keys other than header and
// footer are kept verbatim in Extra.
type SiteConfig struct {
	Header *SiteHeader                `json:"header,omitempty"`
	Footer *SiteFooter                `json:"footer,omitempty"`
	Extra  map[string]json.RawMessage `json:"-"`
}

// UnmarshalJSON splits known keys from extra ones.
func (c *SiteConfig) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = SiteConfig{}
	for key, value := range raw {
		switch key {
		case "header":
			c.Header = new(SiteHeader)
			if err := json.Unmarshal(value, c.Header); err != nil {
				return err
			}
		case "footer":
			c.Footer = new(SiteFooter)
			if err := json.Unmarshal(value, c.Footer); err != nil {
				return err
			}
		default:
			if c.Extra == nil {
				c.Extra = make(map[string]json.RawMessage)
			}
			c.Extra[key] = value
		}
	}
	return nil
}

// MarshalJSON merges extra keys back in.
func (c SiteConfig) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Extra)+2)
	for k, v := range c.Extra {
		out[k] = v
	}
	if c.Header != nil {
		out["header"] = c.Header
	}
	if c.Footer != nil {
		out["footer"] = c.Footer
	}
	return json.Marshal(out)
}

// SiteHeader configures the site's navigation bar.
type SiteHeader struct {
	Logo       string     `json:"logo,omitempty"`
	MenuItems  []MenuItem `json:"menuItems,omitempty"`
	ShowSearch bool       `json:"showSearch,omitempty"`
}

// SiteFooter configures the site's footer.
type SiteFooter struct {
	Copyright   string       `json:"copyright,omitempty"`
	Links       []MenuItem   `json:"links,omitempty"`
	SocialLinks []SocialLink `json:"socialLinks,omitempty"`
}

// MenuItem is a navigation link.
type MenuItem struct {
	Label    string `json:"label"`
	Href     string `json:"href"`
	External bool   `json:"external,omitempty"`
}

// SocialLink is a footer social profile link.
type SocialLink struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
	Icon     string `json:"icon,omitempty"`
}

// Publication status shared by products and posts.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// PostType distinguishes news from blog posts.
type PostType string

const (
	PostNews PostType = "news"
	PostBlog PostType = "blog"
)

// MessageStatus is a contact message's triage state.
type MessageStatus string

const (
	MessageNew      MessageStatus = "new"
	MessageRead     MessageStatus = "read"
	MessageResolved MessageStatus = "resolved"
)

type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Images      []string  `json:"images"`
	Status      Status    `json:"status"`
	SiteID      string    `json:"siteId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Post struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	Excerpt       string    `json:"excerpt,omitempty"`
	FeaturedImage string    `json:"featuredImage,omitempty"`
	Type          PostType  `json:"type,omitempty"`
	Status        Status    `json:"status"`
	SiteID        string    `json:"siteId"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type Service struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	SiteID      string    `json:"siteId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Header is a landing page hero banner.
type Header struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Subtitle  string    `json:"subtitle,omitempty"`
	CTALabel  string    `json:"ctaLabel,omitempty"`
	CTALink   string    `json:"ctaLink,omitempty"`
	MediaURL  string    `json:"mediaUrl,omitempty"`
	SiteID    string    `json:"siteId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type SeoSetting struct {
	ID              string    `json:"id"`
	MetaTitle       string    `json:"metaTitle"`
	MetaDescription string    `json:"metaDescription"`
	Keywords        []string  `json:"keywords"`
	SiteID          string    `json:"siteId"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type ContactSetting struct {
	ID           string    `json:"id"`
	SiteID       string    `json:"siteId"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Address      string    `json:"address,omitempty"`
	WorkingHours string    `json:"workingHours,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type ContactMessage struct {
	ID        string        `json:"id"`
	SiteID    string        `json:"siteId"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Phone     string        `json:"phone,omitempty"`
	Message   string        `json:"message"`
	Status    MessageStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}
