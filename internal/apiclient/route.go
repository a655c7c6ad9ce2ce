package apiclient

import (
	"strings"
	"unicode"
)

// routeLabel normalizes a request path for metrics labels so IDs and slugs
// don't explode label cardinality: "/admin/products/64f1c2/with-files?x=1"
// becomes "/admin/products/:id/with-files".
func routeLabel(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}

	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, seg := range segments {
		if i == 0 || seg == "" {
			continue
		}
		if isDynamic(segments[i-1], seg) {
			segments[i] = ":id"
		}
	}
	return "/" + strings.Join(segments, "/")
}

// fixed path segments that follow a resource name.
var staticSegments = map[string]bool{
	"admin": true, "all": true, "category": true, "with-files": true,
	"status": true, "password": true, "permanent": true, "stats": true,
	"login": true, "verify": true, "forgot-password": true, "reset-password": true,
	"create-payment-intent": true, "confirm": true, "cancel": true, "single": true,
	"products": true, "categories": true, "hero-slides": true, "orders": true,
	"users": true, "payments": true, "upload": true, "auth": true,
}

func isDynamic(prev, seg string) bool {
	if staticSegments[seg] {
		return false
	}
	// "/products/category/:slug" and "/categories/:slug"
	if prev == "category" || prev == "categories" {
		return true
	}
	for _, r := range seg {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return len(seg) >= 16
}
