package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"venuepipe/internal/api"
	"venuepipe/internal/config"
	"venuepipe/internal/engine"
	"venuepipe/internal/ingest"
	"venuepipe/internal/logging"
	"venuepipe/internal/storage"
)

// Version is set at build time via -ldflags "-X main.Version=..."
var Version = "dev"

func main() {
	var toFile bool
	flag.BoolVar(&toFile, "l", false, "log progress to a file")
	flag.BoolVar(&toFile, "log", false, "log progress to a file")
	flag.Parse()

	cfg, err := config.Load(config.ResolvePath(os.Getenv(config.PathEnv)))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger, closer, err := logging.Open(cfg.Logging, toFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open log file: %v\n", err)
		os.Exit(1)
	}
	err = run(cfg, logger)
	if err != nil {
		logger.Error("pipeline stopped", "err", err)
	}
	_ = closer.Close()
	if err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.NewStore(cfg.Storage)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	err = store.Ping(pingCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.Storage.CreateTables {
		if err := store.Init(ctx); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}

	source, err := ingest.NewKafkaSource(cfg.Kafka)
	if err != nil {
		return fmt.Errorf("configure kafka: %w", err)
	}
	defer source.Close()
	logger.Info("kafka consumer configured",
		"brokers", cfg.Kafka.Brokers,
		"topic", cfg.Kafka.Topic,
		"group_id", cfg.Kafka.GroupID,
		"security_protocol", cfg.Kafka.SecurityProtocol,
		"auto_offset_reset", cfg.Kafka.AutoOffsetReset,
	)

	eng := engine.NewEngine(cfg, logger, source, store, nil)
	srv := api.NewServer(cfg, eng, eng.Rejections(), logger, Version)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return eng.Run(gctx) })
	g.Go(func() error { return srv.Run(gctx) })
	return g.Wait()
}
