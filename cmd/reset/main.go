// Command reset empties the reviews, emergencies and assistances tables.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"venuepipe/internal/config"
	"venuepipe/internal/logging"
	"venuepipe/internal/storage"
)

func main() {
	cfg, err := config.LoadStorage(config.ResolvePath(os.Getenv(config.PathEnv)))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.NewLogger(cfg.Logging.Level, os.Stdout)
	if err := run(cfg, logger); err != nil {
		logger.Error("reset failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	store, err := storage.NewStore(cfg.Storage)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := store.Reset(ctx); err != nil {
		return err
	}
	logger.Info("database reset", "tables", []string{"reviews", "assistances", "emergencies"})
	return nil
}
