// Package hostrouter splits traffic between the console and tenant
// storefronts by request host.
//
//	router := hostrouter.New(hostrouter.Routes{
//	    "admin.example.com": console,
//	    "*.example.com":     storefront, // tenant from the subdomain
//	}, storefront) // path-based tenants on the apex
//
// [Tenant] extracts the tenant slug from a subdomain host.
package hostrouter
