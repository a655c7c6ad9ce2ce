package api

import (
	"net/http"

	"github.com/dukerupert/adorn/internal/store"
	"github.com/labstack/echo/v4"
)

type ThemeHandler struct {
	theme *store.ThemeStore
}

func NewThemeHandler(theme *store.ThemeStore) *ThemeHandler {
	return &ThemeHandler{theme: theme}
}

type themeBody struct {
	Dark *bool `json:"dark" validate:"required"`
}

// View handles GET /api/theme
func (h *ThemeHandler) View(c echo.Context) error {
	dark := h.theme.IsDark()
	return c.JSON(http.StatusOK, themeBody{Dark: &dark})
}

// Update handles PUT /api/theme
func (h *ThemeHandler) Update(c echo.Context) error {
	var req themeBody
	if err := bind(c, "theme.update", &req); err != nil {
		return err
	}
	if err := h.theme.SetDark(c.Request().Context(), *req.Dark); err != nil {
		return err
	}
	return h.View(c)
}
