package api

import (
	"net/http"

	"github.com/dukerupert/adorn/internal/store"
	"github.com/labstack/echo/v4"
)

// CartHandler handles the /api/cart routes
type CartHandler struct {
	cart     *store.Cart
	products ProductLookup
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cart *store.Cart, products ProductLookup) *CartHandler {
	return &CartHandler{cart: cart, products: products}
}

type quantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// View handles GET /api/cart
func (h *CartHandler) View(c echo.Context) error {
	return c.JSON(http.StatusOK, h.cart.Summary())
}

// Add handles POST /api/cart/items
// Adding a product already in the cart increments its quantity.
func (h *CartHandler) Add(c echo.Context) error {
	var req productRequest
	if err := bind(c, "cart.add", &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	product, err := h.products.GetProduct(ctx, req.ProductID)
	if err != nil {
		return err
	}
	if err := h.cart.AddItem(ctx, *product); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.cart.Summary())
}

// Update handles PATCH /api/cart/items/:id
// Quantity 0 removes the item; negative quantities are rejected.
func (h *CartHandler) Update(c echo.Context) error {
	var req quantityRequest
	if err := bind(c, "cart.update", &req); err != nil {
		return err
	}

	if err := h.cart.UpdateQuantity(c.Request().Context(), c.Param("id"), *req.Quantity); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.cart.Summary())
}

// Remove handles DELETE /api/cart/items/:id. Removing an absent item succeeds.
func (h *CartHandler) Remove(c echo.Context) error {
	if err := h.cart.RemoveItem(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.cart.Summary())
}

// Clear handles DELETE /api/cart
func (h *CartHandler) Clear(c echo.Context) error {
	if err := h.cart.Clear(c.Request().Context()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.cart.Summary())
}
