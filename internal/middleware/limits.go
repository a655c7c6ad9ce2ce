package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/dukerupert/adorn/internal/domain"
	"github.com/labstack/echo/v4"
)

// Common size limits
const (
	KB = 1024
	MB = 1024 * KB

	// DefaultMaxBodySize is the default maximum request body size (1MB).
	// The session API only accepts small JSON bodies.
	DefaultMaxBodySize = 1 * MB
)

// ErrBodyTooLarge is returned for request bodies over the limit.
var ErrBodyTooLarge = &domain.Error{Code: domain.EINVALID, Message: "Request body too large"}

// MaxBodySize limits the size of request bodies.
// If no size is provided, DefaultMaxBodySize is used.
func MaxBodySize(maxBytes ...int64) echo.MiddlewareFunc {
	limit := int64(DefaultMaxBodySize)
	if len(maxBytes) > 0 {
		limit = maxBytes[0]
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.ContentLength > limit {
				return ErrBodyTooLarge
			}
			if req.Body != nil {
				req.Body = http.MaxBytesReader(c.Response(), req.Body, limit)
			}
			return next(c)
		}
	}
}

// DefaultTimeout is the default request timeout. Checkout talks to the
// backend and the card provider, so it gets the longest budget.
const DefaultTimeout = 60 * time.Second

// Timeout bounds the request context. Handlers pass the context to every
// backend call, so a slow backend surfaces as a network error.
func Timeout(timeout ...time.Duration) echo.MiddlewareFunc {
	d := DefaultTimeout
	if len(timeout) > 0 {
		d = timeout[0]
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, cancel := context.WithTimeout(c.Request().Context(), d)
			defer cancel()
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
