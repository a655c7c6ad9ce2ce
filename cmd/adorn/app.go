package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dukerupert/adorn/internal"
	"github.com/dukerupert/adorn/internal/apiclient"
	"github.com/dukerupert/adorn/internal/billing"
	"github.com/dukerupert/adorn/internal/checkout"
	"github.com/dukerupert/adorn/internal/events"
	"github.com/dukerupert/adorn/internal/service"
	"github.com/dukerupert/adorn/internal/shipping"
	"github.com/dukerupert/adorn/internal/storage"
	"github.com/dukerupert/adorn/internal/store"
	"github.com/dukerupert/adorn/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
)

// app holds everything a command may need. Checkout collaborators are built
// on first use so catalog commands never touch the payment provider or the
// event broker.
type app struct {
	cfg    *internal.Config
	logger zerolog.Logger
	flags  *cliFlags
	stdin  io.Reader
	out    io.Writer

	registry *prometheus.Registry
	metrics  *telemetry.Metrics
	storage  storage.Storage
	state    *store.State
	api      *apiclient.Client
	services *service.Services
	fees     *shipping.FeeTable

	checkout *checkout.Checkout
	closers  []func()
}

func newApp(ctx context.Context, cfg *internal.Config, logger zerolog.Logger, flags *cliFlags, stdin io.Reader, out io.Writer) (*app, error) {
	a := &app{
		cfg:      cfg,
		logger:   logger,
		flags:    flags,
		stdin:    stdin,
		out:      out,
		registry: prometheus.NewRegistry(),
	}
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.metrics = telemetry.NewMetrics(a.registry, "adorn")

	fees, err := shipping.ParseFees(cfg.Checkout.DeliveryFees)
	if err != nil {
		return nil, fmt.Errorf("invalid DELIVERY_FEES: %w", err)
	}
	a.fees = fees

	logger.Debug().Str("provider", cfg.State.Provider).Msg("Opening client state")
	st, err := storage.NewStorage(ctx, cfg.State)
	if err != nil {
		return nil, fmt.Errorf("state storage initialization failed: %w", err)
	}
	a.storage = st
	if c, ok := st.(storage.Closer); ok {
		a.closers = append(a.closers, func() {
			if err := c.Close(); err != nil {
				logger.Warn().Err(err).Msg("Failed to close state storage")
			}
		})
	}

	a.state, err = store.Open(ctx, st, store.Options{Logger: logger, Metrics: a.metrics})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to load client state: %w", err)
	}

	a.api = apiclient.New(cfg.API.BaseURL,
		apiclient.WithTimeout(cfg.API.Timeout),
		apiclient.WithTokenSource(a.state.Token),
		apiclient.WithLogger(logger),
		apiclient.WithMetrics(a.metrics),
		apiclient.WithRateLimit(cfg.API.RateLimit),
		apiclient.WithUserAgent(cfg.API.UserAgent),
	)

	a.services, err = service.New(a.api, a.state.Token)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	return a, nil
}

// Checkout returns the checkout orchestrator. Without a payment provider key
// it is still built, but refuses to take payments.
func (a *app) Checkout() (*checkout.Checkout, error) {
	if a.checkout != nil {
		return a.checkout, nil
	}

	var authorizer billing.Authorizer = billing.Unconfigured{}
	if err := a.cfg.ValidateCheckout(); err != nil {
		a.logger.Warn().Err(err).Msg("Card payments disabled")
	} else {
		stripeCfg := billing.StripeConfig{
			APIKey:         a.cfg.Stripe.PublishableKey,
			MaxRetries:     2,
			TimeoutSeconds: 30,
		}
		sa, err := billing.NewStripeAuthorizer(stripeCfg, a.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Stripe authorizer: %w", err)
		}
		a.logger.Info().Bool("test_mode", stripeCfg.IsTestMode()).Msg("Stripe authorizer initialized")
		authorizer = sa
	}

	publisher, err := events.New(a.cfg.Events, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize event publisher: %w", err)
	}
	a.closers = append(a.closers, func() {
		if err := publisher.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("Failed to close event publisher")
		}
	})

	sentry, flush, err := telemetry.InitSentry(a.cfg.Sentry, a.logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, flush)

	a.checkout, err = checkout.New(checkout.Deps{
		Cart:       a.state.Cart,
		Payments:   a.services.Payments,
		Authorizer: authorizer,
		Fees:       a.fees,
		Events:     publisher,
		Metrics:    a.metrics,
		Sentry:     sentry,
		Logger:     a.logger,
		Currency:   a.cfg.Checkout.Currency,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize checkout: %w", err)
	}
	return a.checkout, nil
}

// Close releases connections in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// money formats minor units for display: "NGN 1,500.00".
func (a *app) money(minor int64) string {
	return strings.ToUpper(a.cfg.Checkout.Currency) + " " + groupThousands(service.FromMinor(minor).StringFixed(2))
}

func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String()
	if frac != "" {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}
