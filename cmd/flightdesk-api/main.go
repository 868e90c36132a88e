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

	"github.com/flightdesk/flightdesk/internal/api"
	"github.com/flightdesk/flightdesk/internal/bootstrap"
	"github.com/flightdesk/flightdesk/internal/config"
	"github.com/flightdesk/flightdesk/internal/observability"
)

func main() {
	cfg, err := config.LoadFromEnv("flightdesk-api")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, os.Stdout)
	session, err := bootstrap.OpenSession(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to open warehouse session", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = session.Close() }()

	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      api.NewHandler(cfg, bootstrap.APIDependencies(cfg, session, logger)),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting api server",
			slog.String("addr", cfg.HTTP.Address),
			slog.String("warehouse_driver", cfg.Warehouse.Driver),
			slog.String("table", cfg.Warehouse.Table),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down api server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		_ = server.Close()
		os.Exit(1)
	}
}
