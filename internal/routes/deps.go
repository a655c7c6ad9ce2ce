package routes

import (
	"net/http"

	"github.com/dukerupert/adorn/internal/handler/api"
)

// APIDeps contains dependencies for the session API routes
type APIDeps struct {
	CartHandler     *api.CartHandler
	WishlistHandler *api.WishlistHandler
	CheckoutHandler *api.CheckoutHandler
	CatalogHandler  *api.CatalogHandler
	ThemeHandler    *api.ThemeHandler
}

// OpsDeps contains dependencies for health and metrics endpoints
type OpsDeps struct {
	// MetricsHandler serves /metrics; nil disables the endpoint.
	MetricsHandler http.Handler
}
