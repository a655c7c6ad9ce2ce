package api

import (
	"net/http"

	"github.com/dukerupert/adorn/internal/checkout"
	"github.com/dukerupert/adorn/internal/domain"
	"github.com/dukerupert/adorn/internal/shipping"
	"github.com/labstack/echo/v4"
)

// CheckoutHandler handles the /api/checkout routes
type CheckoutHandler struct {
	checkout Checkouter
}

func NewCheckoutHandler(c Checkouter) *CheckoutHandler {
	return &CheckoutHandler{checkout: c}
}

type checkoutRequest struct {
	CustomerInfo  domain.CustomerInfo `json:"customerInfo"`
	PaymentMethod string              `json:"paymentMethod"`
}

type checkoutStatus struct {
	Step    checkout.Step     `json:"step"`
	Regions []shipping.Region `json:"regions"`
}

// Status handles GET /api/checkout
func (h *CheckoutHandler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, checkoutStatus{
		Step:    h.checkout.Step(),
		Regions: h.checkout.Regions(),
	})
}

// Quote handles GET /api/checkout/quote?region=
func (h *CheckoutHandler) Quote(c echo.Context) error {
	q, err := h.checkout.Quote(c.Request().Context(), c.QueryParam("region"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, q)
}

// Submit handles POST /api/checkout
// Validation happens inside Submit so field errors come back in one response.
func (h *CheckoutHandler) Submit(c echo.Context) error {
	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("checkout.submit", "Request body must be valid JSON")
	}

	result, err := h.checkout.Submit(c.Request().Context(), req.CustomerInfo, req.PaymentMethod)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, result)
}
