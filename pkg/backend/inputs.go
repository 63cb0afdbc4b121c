package backend

// ListQuery is the common list filter.
type ListQuery struct {
	Page   int    `query:"page,omitempty" validate:"omitempty,min=1"`
	Limit  int    `query:"limit,omitempty" validate:"omitempty,min=1,max=100"`
	Search string `query:"search,omitempty"`
	Sort   string `query:"sort,omitempty"`
}

// ProductQuery filters product lists.
type ProductQuery struct {
	Page       int    `query:"page,omitempty" validate:"omitempty,min=1"`
	Limit      int    `query:"limit,omitempty" validate:"omitempty,min=1,max=100"`
	Search     string `query:"search,omitempty"`
	Sort       string `query:"sort,omitempty"`
	Status     Status `query:"status,omitempty" validate:"omitempty,oneof=draft published"`
	CategoryID string `query:"categoryId,omitempty"`
}

// PostQuery filters post lists.
type PostQuery struct {
	Page   int      `query:"page,omitempty" validate:"omitempty,min=1"`
	Limit  int      `query:"limit,omitempty" validate:"omitempty,min=1,max=100"`
	Search string   `query:"search,omitempty"`
	Sort   string   `query:"sort,omitempty"`
	Type   PostType `query:"type,omitempty" validate:"omitempty,oneof=news blog"`
	Status Status   `query:"status,omitempty" validate:"omitempty,oneof=draft published"`
}

type CreateUser struct {
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=8"`
	Role     Role     `json:"role" validate:"required,oneof=superadmin admin editor"`
	SiteIDs  []string `json:"siteIds,omitempty"`
}

type UpdateUser struct {
	Email    *string  `json:"email,omitempty" validate:"omitempty,email"`
	Password *string  `json:"password,omitempty" validate:"omitempty,min=8"`
	Role     *Role    `json:"role,omitempty" validate:"omitempty,oneof=superadmin admin editor"`
	SiteIDs  []string `json:"siteIds,omitempty"`
}

type CreateSite struct {
	Name     string      `json:"name" validate:"required,max=120"`
	Slug     string      `json:"slug" validate:"required,slug"`
	Domain   string      `json:"domain,omitempty" validate:"omitempty,fqdn"`
	Template string      `json:"template" validate:"required"`
	Theme    Theme       `json:"theme"`
	Config   *SiteConfig `json:"config,omitempty"`
}

type UpdateSite struct {
	Name     *string     `json:"name,omitempty" validate:"omitempty,max=120"`
	Slug     *string     `json:"slug,omitempty" validate:"omitempty,slug"`
	Domain   *string     `json:"domain,omitempty" validate:"omitempty,fqdn"`
	Template *string     `json:"template,omitempty"`
	Theme    *Theme      `json:"theme,omitempty"`
	Config   *SiteConfig `json:"config,omitempty"`
}

type CreateProduct struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Price       float64  `json:"price" validate:"gte=0"`
	Images      []string `json:"images" validate:"dive,url"`
	SiteID      string   `json:"siteId" validate:"required"`
	Status      Status   `json:"status,omitempty" validate:"omitempty,oneof=draft published"`
}

type UpdateProduct struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,min=1"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	Images      []string `json:"images,omitempty" validate:"omitempty,dive,url"`
	SiteID      *string  `json:"siteId,omitempty"`
	Status      *Status  `json:"status,omitempty" validate:"omitempty,oneof=draft published"`
}

type CreatePost struct {
	Title         string   `json:"title" validate:"required"`
	Content       string   `json:"content" validate:"required"`
	Excerpt       string   `json:"excerpt,omitempty"`
	FeaturedImage string   `json:"featuredImage,omitempty" validate:"omitempty,url"`
	Type          PostType `json:"type,omitempty" validate:"omitempty,oneof=news blog"`
	Status        Status   `json:"status,omitempty" validate:"omitempty,oneof=draft published"`
	SiteID        string   `json:"siteId" validate:"required"`
}

type UpdatePost struct {
	Title         *string   `json:"title,omitempty" validate:"omitempty,min=1"`
	Content       *string   `json:"content,omitempty"`
	Excerpt       *string   `json:"excerpt,omitempty"`
	FeaturedImage *string   `json:"featuredImage,omitempty" validate:"omitempty,url"`
	Type          *PostType `json:"type,omitempty" validate:"omitempty,oneof=news blog"`
	Status        *Status   `json:"status,omitempty" validate:"omitempty,oneof=draft published"`
}

type CreateService struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"gte=0"`
	SiteID      string  `json:"siteId" validate:"required"`
}

type UpdateService struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,min=1"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
}

type CreateHeader struct {
	Title    string `json:"title" validate:"required"`
	Subtitle string `json:"subtitle,omitempty"`
	CTALabel string `json:"ctaLabel,omitempty"`
	CTALink  string `json:"ctaLink,omitempty" validate:"omitempty,uri"`
	MediaURL string `json:"mediaUrl,omitempty" validate:"omitempty,url"`
	SiteID   string `json:"siteId" validate:"required"`
}

type UpdateHeader struct {
	Title    *string `json:"title,omitempty" validate:"omitempty,min=1"`
	Subtitle *string `json:"subtitle,omitempty"`
	CTALabel *string `json:"ctaLabel,omitempty"`
	CTALink  *string `json:"ctaLink,omitempty" validate:"omitempty,uri"`
	MediaURL *string `json:"mediaUrl,omitempty" validate:"omitempty,url"`
}

type CreateSeoSetting struct {
	MetaTitle       string   `json:"metaTitle" validate:"required,max=120"`
	MetaDescription string   `json:"metaDescription" validate:"max=320"`
	Keywords        []string `json:"keywords"`
	SiteID          string   `json:"siteId" validate:"required"`
}

type UpdateSeoSetting struct {
	MetaTitle       *string  `json:"metaTitle,omitempty" validate:"omitempty,min=1,max=120"`
	MetaDescription *string  `json:"metaDescription,omitempty" validate:"omitempty,max=320"`
	Keywords        []string `json:"keywords,omitempty"`
}

type CreateContactSetting struct {
	SiteID       string `json:"siteId" validate:"required"`
	Email        string `json:"email,omitempty" validate:"omitempty,email"`
	Phone        string `json:"phone,omitempty"`
	Address      string `json:"address,omitempty"`
	WorkingHours string `json:"workingHours,omitempty"`
}

type UpdateContactSetting struct {
	Email        *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone        *string `json:"phone,omitempty"`
	Address      *string `json:"address,omitempty"`
	WorkingHours *string `json:"workingHours,omitempty"`
}

// CreateContactMessage is the public contact form.
type CreateContactMessage struct {
	Name    string        `json:"name" validate:"required,max=200"`
	Email   string        `json:"email" validate:"required,email"`
	Phone   string        `json:"phone,omitempty" validate:"omitempty,max=40"`
	Message string        `json:"message" validate:"required,max=5000"`
	Status  MessageStatus `json:"status,omitempty" validate:"omitempty,oneof=new read resolved"`
}

type UpdateContactMessage struct {
	Status *MessageStatus `json:"status,omitempty" validate:"omitempty,oneof=new read resolved"`
}
