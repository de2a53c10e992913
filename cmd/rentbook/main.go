package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rentbook/internal/infra/config"
	ginserver "rentbook/internal/infra/http/gin"
	"rentbook/internal/infra/obs"
	"rentbook/internal/infra/payments"
	"rentbook/internal/infra/pricing"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		obs.NewLogger(os.Getenv("APP_ENV")).Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)
	slog.SetDefault(logger)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("rentbook stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	feeFile, err := pricing.LoadFile(cfg.FeesFile)
	if err != nil {
		return err
	}
	fees, err := feeFile.Build(cfg.FeeOverrides)
	if err != nil {
		return err
	}

	inf, err := buildInfrastructure(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		inf.close(closeCtx, logger)
	}()

	app, err := buildApplication(appDeps{
		infra:          inf,
		fees:           fees,
		payments:       payments.NewMock(cfg.PaymentDelay, logger),
		sessionTTL:     cfg.SessionTTL,
		completionCron: cfg.CompletionCron,
		sweepCron:      cfg.SessionSweepCron,
	}, logger)
	if err != nil {
		return err
	}

	fixturesPath := cfg.ListingsFixtures
	if fixturesPath == "" {
		fixturesPath = defaultListingFixturesPath()
	}
	if _, err := loadListingFixtures(ctx, app.factory, fixturesPath, time.Now(), logger); err != nil {
		logger.Warn("listing fixtures load failed", "error", err, "path", fixturesPath)
	}

	for _, worker := range inf.workers {
		go func(run func(context.Context) error) {
			if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("background worker stopped", "error", err)
			}
		}(worker)
	}
	app.scheduler.Start(ctx)

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Checks:  inf.checks,
		Timeout: 2 * time.Second,
	}, app.handlers)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-app.scheduler.Stop().Done()
	logger.Info("HTTP server stopped")
	return nil
}
