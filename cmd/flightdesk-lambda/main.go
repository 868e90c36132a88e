package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/flightdesk/flightdesk/internal/bootstrap"
	"github.com/flightdesk/flightdesk/internal/config"
	"github.com/flightdesk/flightdesk/internal/observability"
)

// One binary serves every query function; FLIGHTDESK_LAMBDA_FUNCTION picks
// which one this deployment answers, or "http" for the whole API.
func main() {
	cfg, err := config.LoadFromEnv("flightdesk-lambda")
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

	onSIGTERM := lambda.WithEnableSIGTERM(func() {
		_ = session.Close()
	})

	if cfg.Lambda.Function == config.LambdaFunctionHTTP {
		logger.Info("starting lambda http proxy",
			slog.String("warehouse_driver", cfg.Warehouse.Driver),
			slog.String("table", cfg.Warehouse.Table),
		)
		lambda.StartWithOptions(bootstrap.NewLambdaProxy(cfg, session, logger).ProxyWithContext, onSIGTERM)
		return
	}

	handler := bootstrap.NewHandler(cfg, session, logger)
	fn, ok := handler.Lookup(cfg.Lambda.Function)
	if !ok {
		logger.Error("unknown function", slog.String("function", cfg.Lambda.Function))
		os.Exit(1)
	}

	logger.Info("starting lambda handler",
		slog.String("function", cfg.Lambda.Function),
		slog.String("warehouse_driver", cfg.Warehouse.Driver),
		slog.String("table", cfg.Warehouse.Table),
	)
	lambda.StartWithOptions(fn, onSIGTERM)
}
