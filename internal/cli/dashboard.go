package cli

import (
	"context"
	"fmt"

	"gofinances/internal/backend"
	"gofinances/internal/config"
	"gofinances/internal/dashboard"
	applog "gofinances/internal/log"
)

// Salutation opens the dashboard greeting.
const Salutation = "Olá,"

// OpenBackend opens the store selected by cfg.
func OpenBackend(ctx context.Context, cfg *config.Config, logger *applog.Logger) (*backend.Result, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", bcfg.Type, err)
	}
	return res, nil
}

// NewController builds the dashboard controller for cfg on top of res.
func NewController(cfg *config.Config, res *backend.Result, logger *applog.Logger) *dashboard.Controller {
	return dashboard.NewController(dashboard.Config{
		Reader: res.Reader,
		Key:    cfg.StorageKey,
		Aggregator: dashboard.NewAggregator(
			dashboard.WithLocale(cfg.ResolvedLocale()),
			dashboard.WithLocation(cfg.Location()),
		),
		Greeting: dashboard.Greeting{
			Salutation: Salutation,
			UserName:   cfg.UserName,
			PhotoURL:   cfg.UserPhotoURL,
		},
		LoadTimeout: cfg.LoadTimeout,
		Logger:      logger,
	})
}
