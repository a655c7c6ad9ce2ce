package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dukerupert/adorn/internal/handler/api"
	"github.com/dukerupert/adorn/internal/routes"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 10 * time.Second

func cmdServe(ctx context.Context, a *app, args []string) error {
	co, err := a.Checkout()
	if err != nil {
		return err
	}

	catalog := a.services.Catalog
	e := routes.NewServer(
		routes.ServerConfig{Logger: a.logger, Metrics: a.metrics},
		routes.APIDeps{
			CartHandler:     api.NewCartHandler(a.state.Cart, catalog),
			WishlistHandler: api.NewWishlistHandler(a.state.Wishlist, catalog),
			CheckoutHandler: api.NewCheckoutHandler(co),
			CatalogHandler:  api.NewCatalogHandler(catalog),
			ThemeHandler:    api.NewThemeHandler(a.state.Theme),
		},
		routes.OpsDeps{
			MetricsHandler: promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}),
		},
	)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info().
			Str("address", a.cfg.ListenAddr).
			Str("api_url", a.cfg.API.BaseURL).
			Msg("Starting session API")
		if err := e.Start(a.cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info().Msg("Shutting down session API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
