package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"gofinances/internal/amqp"
	"gofinances/internal/cli"
	"gofinances/internal/dashboard"
	apphttp "gofinances/internal/http"
	applog "gofinances/internal/log"
	"gofinances/internal/middleware/ratelimit"
	"gofinances/internal/worker"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

// run logs its own failures; main only turns them into the exit status.
func run() error {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg, err := cli.LoadConfig(logger)
	if err != nil {
		return err
	}

	res, err := cli.OpenBackend(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to open backend", applog.FieldError, err,
			applog.FieldErrorType, applog.ErrorTypeStorage, "backend", cfg.DataBackend)
		return err
	}
	defer func() {
		if err := res.Close(); err != nil {
			logger.Warn("Backend close failed", applog.FieldError, err)
		}
	}()

	ctrl := cli.NewController(cfg, res, logger)
	srv := apphttp.NewServer(apphttp.Options{
		Addr:      ":" + cfg.Port,
		Dashboard: ctrl,
		Key:       cfg.StorageKey,
		Logger:    logger,
		CacheTTL:  cfg.CacheTTL,
		RefreshLimit: ratelimit.Config{
			Requests: cfg.RefreshRateLimit,
			Window:   time.Minute,
		},
		Storage:        res,
		TrustedProxies: cfg.TrustedProxies,
	})

	var consumer *amqp.Client
	if cfg.AMQPEnabled() {
		consumer, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err,
				applog.FieldErrorType, applog.ErrorTypeNetwork)
			return err
		}
	} else {
		logger.Info("AMQP disabled, change notifications will not be consumed")
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		if consumer != nil {
			if err := consumer.Close(); err != nil {
				logger.Warn("AMQP close failed", applog.FieldError, err)
			}
		}
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting gofinances server",
			"port", cfg.Port, "backend", cfg.DataBackend, applog.FieldOperation, applog.OpStartup)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	// Any member failing takes the listener down with it.
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	// Load once up front so /readyz flips as soon as storage answers.
	g.Go(func() error {
		if err := srv.HandleChange(gctx, cfg.StorageKey); err != nil {
			logger.Warn("Initial dashboard load failed", applog.FieldError, err)
		}
		return nil
	})
	if consumer != nil {
		g.Go(func() error {
			err := consumer.ConsumeTransactionsChanged(gctx, func(ctx context.Context, msg *amqp.ChangeMessage) error {
				err := srv.HandleChange(ctx, msg.Key)
				if errors.Is(err, dashboard.ErrCorruptedData) {
					// A redelivery reads the same bytes.
					return nil
				}
				return err
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	if cfg.RefreshInterval > 0 {
		g.Go(func() error {
			return worker.NewRefreshWorker(srv, cfg.StorageKey, cfg.RefreshInterval, logger).Run(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err)
		return err
	}
	<-done
	logger.Info("Server stopped gracefully")
	return nil
}
