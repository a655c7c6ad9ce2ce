package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RegisterAPIRoutes registers the session API under /api.
func RegisterAPIRoutes(e *echo.Echo, deps APIDeps) {
	g := e.Group("/api")

	cart := deps.CartHandler
	g.GET("/cart", cart.View)
	g.DELETE("/cart", cart.Clear)
	g.POST("/cart/items", cart.Add)
	g.PATCH("/cart/items/:id", cart.Update)
	g.DELETE("/cart/items/:id", cart.Remove)

	wishlist := deps.WishlistHandler
	g.GET("/wishlist", wishlist.View)
	g.POST("/wishlist", wishlist.Add)
	g.DELETE("/wishlist/:id", wishlist.Remove)

	co := deps.CheckoutHandler
	g.GET("/checkout", co.Status)
	g.GET("/checkout/quote", co.Quote)
	g.POST("/checkout", co.Submit)

	catalog := deps.CatalogHandler
	g.GET("/products", catalog.Products)
	g.GET("/products/:id", catalog.Product)
	g.GET("/categories", catalog.Categories)

	theme := deps.ThemeHandler
	g.GET("/theme", theme.View)
	g.PUT("/theme", theme.Update)
}

// RegisterOpsRoutes registers /healthz and /metrics.
func RegisterOpsRoutes(e *echo.Echo, deps OpsDeps) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	if deps.MetricsHandler != nil {
		e.GET("/metrics", echo.WrapHandler(deps.MetricsHandler))
	}
}
