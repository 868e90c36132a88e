package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flightdesk/flightdesk/internal/bootstrap"
	"github.com/flightdesk/flightdesk/internal/config"
	"github.com/flightdesk/flightdesk/internal/observability"
	"github.com/flightdesk/flightdesk/internal/record"
	"github.com/flightdesk/flightdesk/internal/seed"
)

func main() {
	cfg, err := config.LoadFromEnv("flightdesk-seed")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := observability.NewLogger(cfg, os.Stdout)

	start, err := time.Parse(record.DateLayout, cfg.Seed.StartDate)
	if err != nil {
		logger.Error("invalid seed start date", slog.String("start_date", cfg.Seed.StartDate), slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := bootstrap.OpenObjectStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to initialize object store", slog.Any("error", err))
		os.Exit(1)
	}
	service, err := seed.NewService(store, cfg.Warehouse.Table, cfg.Seed.Seed, logger)
	if err != nil {
		logger.Error("failed to initialize seeder", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("seeding flight table",
		slog.String("table", cfg.Warehouse.Table),
		slog.String("bucket", cfg.ObjectStore.Bucket),
		slog.String("start_date", cfg.Seed.StartDate),
		slog.Int("days", cfg.Seed.Days),
		slog.Int("flights_per_day", cfg.Seed.FlightsPerDay),
	)
	summary, err := service.Run(ctx, start, cfg.Seed.Days, cfg.Seed.FlightsPerDay)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("seeding failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("seeding finished",
		slog.Int("files", summary.Files),
		slog.Int("skipped", summary.Skipped),
		slog.Int("flights", summary.Flights),
		slog.Int64("bytes", summary.Bytes),
	)
}
