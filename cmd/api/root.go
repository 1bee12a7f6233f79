package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/PratikDhanave/telemetry-ingest-service/internal/config"
	"github.com/PratikDhanave/telemetry-ingest-service/internal/logging"
	"github.com/PratikDhanave/telemetry-ingest-service/internal/store"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "api",
		Short:         "Game telemetry ingestion service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP ingestion server",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Insert sample events into the configured store",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runSeed(cmd.Context())
			},
		},
	)
	return root
}

// bootstrap loads config, builds the logger and opens the configured store.
func bootstrap(ctx context.Context) (config.Config, *slog.Logger, store.EventStore, error) {
	// Load runtime config from environment (.env honoured for local dev).
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return config.Config{}, nil, nil, err
	}

	logger, err := logging.New(os.Stdout, cfg.LogLevel)
	if err != nil {
		slog.Error("invalid log level", "error", err)
		return config.Config{}, nil, nil, err
	}
	slog.SetDefault(logger)

	st, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to open store", "driver", cfg.StoreDriver, "error", err)
		return config.Config{}, nil, nil, err
	}
	return cfg, logger, st, nil
}

func openStore(ctx context.Context, cfg config.Config) (store.EventStore, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		return store.OpenSQLite(cfg.SQLitePath)
	case config.DriverPostgres:
		// Connect to durable storage (Postgres) using a connection pool.
		db, err := store.NewPostgresStore(cfg.DBURL)
		if err != nil {
			return nil, err
		}
		// Ensure required tables exist so `docker compose up --build` is enough.
		if err := db.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

func runSeed(ctx context.Context) error {
	_, logger, st, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	logger.Info("seeding fixtures")
	n, err := store.Seed(ctx, st)
	if err != nil {
		logger.Error("seeding failed", "inserted", n, "error", err)
		return err
	}
	logger.Info("seeding finished", "inserted", n)
	return nil
}
