package api

import (
	"net/http"

	"github.com/dukerupert/adorn/internal/domain"
	"github.com/dukerupert/adorn/internal/store"
	"github.com/labstack/echo/v4"
)

// WishlistHandler handles the /api/wishlist routes
type WishlistHandler struct {
	wishlist *store.Wishlist
	products ProductLookup
}

func NewWishlistHandler(wishlist *store.Wishlist, products ProductLookup) *WishlistHandler {
	return &WishlistHandler{wishlist: wishlist, products: products}
}

type wishlistResponse struct {
	Items []domain.Product `json:"items"`
	Count int              `json:"count"`
}

func (h *WishlistHandler) respond(c echo.Context) error {
	items := h.wishlist.Items()
	return c.JSON(http.StatusOK, wishlistResponse{Items: items, Count: len(items)})
}

// View handles GET /api/wishlist
func (h *WishlistHandler) View(c echo.Context) error {
	return h.respond(c)
}

// Add handles POST /api/wishlist. Adding twice is a no-op.
func (h *WishlistHandler) Add(c echo.Context) error {
	var req productRequest
	if err := bind(c, "wishlist.add", &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if !h.wishlist.Contains(req.ProductID) {
		product, err := h.products.GetProduct(ctx, req.ProductID)
		if err != nil {
			return err
		}
		if err := h.wishlist.Add(ctx, *product); err != nil {
			return err
		}
	}
	return h.respond(c)
}

// Remove handles DELETE /api/wishlist/:id
func (h *WishlistHandler) Remove(c echo.Context) error {
	if err := h.wishlist.Remove(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return h.respond(c)
}
