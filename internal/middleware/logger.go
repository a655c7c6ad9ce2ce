package middleware

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// WithRequestLogger injects a request-scoped logger into the context and logs
// each completed request. The logger carries request_id, method and path.
// Place it after RequestID.
func WithRequestLogger(base zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			start := time.Now()

			logCtx := base.With().
				Str("method", req.Method).
				Str("path", req.URL.Path)
			if id := GetRequestID(req.Context()); id != "" {
				logCtx = logCtx.Str("request_id", id)
			}
			logger := logCtx.Logger()
			c.SetRequest(req.WithContext(logger.WithContext(req.Context())))

			err := next(c)
			if err != nil {
				// Let the error handler write the response so the status is known.
				c.Error(err)
			}

			status := c.Response().Status
			event := logger.Info()
			switch {
			case status >= 500:
				event = logger.Error()
			case status >= 400:
				event = logger.Warn()
			}
			event.
				Int("status", status).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP()).
				Msg("http request")
			return nil
		}
	}
}

// GetLogger retrieves the request-scoped logger from the context.
// If no logger is found, returns the provided fallback logger, or a disabled
// logger when there is none.
func GetLogger(ctx context.Context, fallback ...zerolog.Logger) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	if len(fallback) > 0 {
		return &fallback[0]
	}
	return zerolog.Ctx(ctx)
}
