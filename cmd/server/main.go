// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"umkmpos/internal/catalog"
	"umkmpos/internal/config"
	"umkmpos/internal/httpapi"
	"umkmpos/internal/logging"
	"umkmpos/internal/reporting"
	"umkmpos/internal/sales"
	"umkmpos/internal/server"
	"umkmpos/internal/store"
	"umkmpos/internal/store/breaker"
	"umkmpos/internal/store/memory"
	"umkmpos/internal/store/postgres"
	"umkmpos/internal/telemetry"
)

// repository is a store that can also answer health probes.
type repository interface {
	store.Repository
	server.Pinger
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "umkmpos: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.ServiceName, cfg.OTLPEndpoint, logger)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			logger.Warn("failed to flush telemetry", zap.Error(err))
		}
	}()

	repo, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer repo.Close()

	router := server.NewRouter(server.Services{
		Catalog:   catalog.NewService(repo, logger),
		Sales:     sales.NewService(repo, logger),
		Reporting: reporting.NewService(repo, logger, cfg.Location()),
	}, server.Options{
		Logger:       logger,
		WriteLimiter: httpapi.NewWriteLimiter(cfg.WriteRateLimit, cfg.WriteRateBurst),
		Health:       repo,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("store", cfg.StoreDriver),
			zap.String("report_timezone", cfg.Location().String()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}
	return nil
}

func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (repository, error) {
	if cfg.StoreDriver == config.DriverMemory {
		logger.Warn("using in-memory store; data is lost on exit")
		return memory.New(), nil
	}

	pg, err := postgres.Open(ctx, cfg.DatabaseURL, cfg.DBConnectAttempts, logger)
	if err != nil {
		return nil, err
	}
	if err := pg.Migrate(ctx); err != nil {
		pg.Close()
		return nil, err
	}
	return breaker.Wrap(pg, breaker.DefaultSettings(), logger), nil
}
