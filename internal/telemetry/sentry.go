package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/dukerupert/adorn/internal"
	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"
)

// Sentry reports unexpected errors to Sentry. The zero value is a disabled
// reporter, safe to call.
type Sentry struct {
	enabled bool
}

// InitSentry initializes the global Sentry client.
// Returns the reporter and a cleanup function to call on shutdown.
func InitSentry(cfg internal.SentryConfig, logger zerolog.Logger) (*Sentry, func(), error) {
	if !cfg.Enabled {
		logger.Debug().Msg("Sentry disabled (SENTRY_ENABLED=false)")
		return &Sentry{}, func() {}, nil
	}

	if cfg.DSN == "" {
		logger.Warn().Msg("Sentry DSN not configured, disabling error tracking")
		return &Sentry{}, func() {}, nil
	}

	sampleRate := cfg.SampleRate
	if sampleRate == 0 {
		sampleRate = 1.0
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		SampleRate:       sampleRate,
		TracesSampleRate: cfg.TracesSampleRate,
		Debug:            cfg.Debug,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize Sentry: %w", err)
	}

	logger.Info().
		Str("environment", cfg.Environment).
		Str("release", cfg.Release).
		Float64("sample_rate", sampleRate).
		Msg("Sentry initialized")

	return &Sentry{enabled: true}, func() { sentry.Flush(2 * time.Second) }, nil
}

// IsEnabled returns whether events are sent.
func (s *Sentry) IsEnabled() bool {
	return s != nil && s.enabled
}

// CaptureError captures err with tags. The hub on ctx is used when present.
func (s *Sentry) CaptureError(ctx context.Context, err error, tags map[string]string) {
	if !s.IsEnabled() || err == nil {
		return
	}

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		hub.CaptureException(err)
	})
}

// AddBreadcrumb records a breadcrumb for the next captured event.
func (s *Sentry) AddBreadcrumb(category, message string, data map[string]any) {
	if !s.IsEnabled() {
		return
	}

	sentry.AddBreadcrumb(&sentry.Breadcrumb{
		Category: category,
		Message:  message,
		Data:     data,
		Level:    sentry.LevelInfo,
	})
}
