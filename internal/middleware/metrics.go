package middleware

import (
	"time"

	"github.com/dukerupert/adorn/internal/telemetry"
	"github.com/labstack/echo/v4"
)

// Metrics records request count and latency per route. The route label is the
// registered pattern (/api/cart/items/:id), so IDs never reach label values.
func Metrics(m *telemetry.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if m != nil {
				m.HTTPInFlight.Inc()
				defer m.HTTPInFlight.Dec()
			}

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.ObserveHTTPRequest(c.Request().Method, route, c.Response().Status, time.Since(start))
			return nil
		}
	}
}
