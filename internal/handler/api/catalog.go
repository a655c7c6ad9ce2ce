package api

import (
	"net/http"

	"github.com/dukerupert/adorn/internal/domain"
	"github.com/dukerupert/adorn/internal/service"
	"github.com/labstack/echo/v4"
)

// CatalogHandler proxies catalog reads to the backend.
type CatalogHandler struct {
	catalog service.CatalogService
}

func NewCatalogHandler(catalog service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// Products handles GET /api/products[?category=slug]
func (h *CatalogHandler) Products(c echo.Context) error {
	ctx := c.Request().Context()

	var (
		products []domain.Product
		err      error
	)
	if slug := c.QueryParam("category"); slug != "" {
		products, err = h.catalog.ListProductsByCategory(ctx, slug)
	} else {
		products, err = h.catalog.ListProducts(ctx)
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, products)
}

// Product handles GET /api/products/:id
func (h *CatalogHandler) Product(c echo.Context) error {
	p, err := h.catalog.GetProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Categories handles GET /api/categories
func (h *CatalogHandler) Categories(c echo.Context) error {
	cats, err := h.catalog.ListCategories(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cats)
}
