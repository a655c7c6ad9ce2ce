// Package routes assembles the echo server for the session API.
package routes

import (
	"time"

	"github.com/dukerupert/adorn/internal/handler"
	"github.com/dukerupert/adorn/internal/middleware"
	"github.com/dukerupert/adorn/internal/telemetry"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

// ServerConfig tunes the global middleware.
type ServerConfig struct {
	Logger         zerolog.Logger
	Metrics        *telemetry.Metrics
	MaxBodySize    int64
	RequestTimeout time.Duration
}

// NewServer builds the echo instance with the global middleware chain and
// every route registered. Order matters: the request ID must exist before
// the logger reads it, and recovery sits innermost so panics still get
// logged and counted.
func NewServer(cfg ServerConfig, api APIDeps, ops OpsDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.HTTPErrorHandler

	maxBody := cfg.MaxBodySize
	if maxBody <= 0 {
		maxBody = middleware.DefaultMaxBodySize
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = middleware.DefaultTimeout
	}

	e.Use(
		middleware.RequestID,
		middleware.WithRequestLogger(cfg.Logger),
		middleware.Metrics(cfg.Metrics),
		middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig()),
		middleware.MaxBodySize(maxBody),
		middleware.Timeout(timeout),
		echomw.Recover(),
	)

	RegisterOpsRoutes(e, ops)
	RegisterAPIRoutes(e, api)
	return e
}
