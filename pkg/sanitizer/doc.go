// Package sanitizer cleans backend-provided rich text before the storefront
// renders it unescaped.
package sanitizer
