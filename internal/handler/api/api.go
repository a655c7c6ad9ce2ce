// Package api implements the JSON session API: cart, wishlist, checkout,
// catalog and theme for one local shopper.
package api

import (
	"context"

	"github.com/dukerupert/adorn/internal/checkout"
	"github.com/dukerupert/adorn/internal/domain"
	"github.com/dukerupert/adorn/internal/service"
	"github.com/dukerupert/adorn/internal/shipping"
	"github.com/labstack/echo/v4"
)

// ProductLookup resolves a product ID to the catalog product.
type ProductLookup interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
}

// Checkouter is the checkout flow as the handlers use it.
type Checkouter interface {
	Quote(ctx context.Context, region string) (domain.Quote, error)
	Regions() []shipping.Region
	Step() checkout.Step
	Submit(ctx context.Context, info domain.CustomerInfo, paymentMethod string) (*checkout.Result, error)
}

// bind decodes the JSON body into v and checks its validate tags.
func bind(c echo.Context, op string, v any) error {
	if err := c.Bind(v); err != nil {
		return domain.Invalid(op, "Request body must be valid JSON")
	}
	return service.Validate(op, v)
}

type productRequest struct {
	ProductID string `json:"productId" validate:"required"`
}
