// cmd/integrity/main.go

// Command integrity checks a PostgreSQL ledger for broken stock and money
// invariants. It exits non-zero when an error-severity probe is violated.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"umkmpos/internal/config"
	"umkmpos/internal/integrity"
	"umkmpos/internal/logging"
	"umkmpos/internal/store/postgres"
	"umkmpos/internal/telemetry"
)

func main() {
	healthy, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "integrity: %v\n", err)
		os.Exit(2)
	}
	if !healthy {
		os.Exit(1)
	}
}

func run() (bool, error) {
	cfg, err := config.Load()
	if err != nil {
		return false, err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return false, err
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.ServiceName+"-integrity", cfg.OTLPEndpoint, logger)
	if err != nil {
		return false, err
	}
	defer shutdownTelemetry(context.Background())

	pg, err := postgres.Open(ctx, cfg.DatabaseURL, cfg.DBConnectAttempts, logger)
	if err != nil {
		return false, err
	}
	defer pg.Close()

	checker := integrity.NewChecker(logger)
	checker.RegisterDefaults(pg)
	result := checker.Run(ctx)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return false, err
	}

	logger.Info("integrity check finished",
		zap.Bool("healthy", result.Healthy()),
		zap.Int("violations", len(result.Violations)),
		zap.Int("warnings", len(result.Warnings)),
		zap.Duration("duration", result.Duration))
	return result.Healthy(), nil
}
