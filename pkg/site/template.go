package site

import "strings"

// Template variants.
const (
	TemplateDefault      = "default"
	TemplateShoeCleaning = "shoe-cleaning"
	TemplatePetshop      = "petshop"
)

// Template returns the rendering variant for a template identifier.
// Unknown identifiers get the default variant.
func Template(id string) string {
	switch strings.ToLower(strings.TrimSpace(id)) {
	case TemplateShoeCleaning:
		return TemplateShoeCleaning
	case TemplatePetshop:
		return TemplatePetshop
	default:
		return TemplateDefault
	}
}
