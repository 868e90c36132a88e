// Package bootstrap wires configuration into the warehouse session and query
// handlers shared by the flightdesk binaries.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"

	"github.com/flightdesk/flightdesk/internal/api"
	"github.com/flightdesk/flightdesk/internal/config"
	"github.com/flightdesk/flightdesk/internal/flights"
	"github.com/flightdesk/flightdesk/internal/handler"
	"github.com/flightdesk/flightdesk/internal/storage"
	s3store "github.com/flightdesk/flightdesk/internal/storage/s3"
	"github.com/flightdesk/flightdesk/internal/warehouse"
	"github.com/flightdesk/flightdesk/internal/warehouse/duckdb"
	"github.com/flightdesk/flightdesk/internal/warehouse/postgres"
)

func OpenObjectStore(ctx context.Context, cfg config.Config) (*s3store.Store, error) {
	store, err := s3store.New(ctx, s3store.Config{
		Endpoint:         cfg.ObjectStore.Endpoint,
		Region:           cfg.ObjectStore.Region,
		Bucket:           cfg.ObjectStore.Bucket,
		AccessKeyID:      cfg.ObjectStore.AccessKeyID,
		SecretAccessKey:  cfg.ObjectStore.SecretAccessKey,
		UseSSL:           cfg.ObjectStore.UseSSL,
		Prefix:           cfg.ObjectStore.Prefix,
		AutoCreateBucket: cfg.ObjectStore.AutoCreateBucket,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize object store: %w", err)
	}
	return store, nil
}

// OpenSession opens the configured warehouse. The session lives for the
// whole process and is shared by every invocation.
func OpenSession(ctx context.Context, cfg config.Config, logger *slog.Logger) (*warehouse.Session, error) {
	switch cfg.Warehouse.Driver {
	case config.DriverPostgres:
		return postgres.Open(ctx, postgres.DBConfig{
			DSN:             cfg.Warehouse.DSN,
			MaxOpenConns:    cfg.Warehouse.MaxOpenConns,
			MaxIdleConns:    cfg.Warehouse.MaxIdleConns,
			ConnMaxIdleTime: cfg.Warehouse.ConnMaxIdleTime,
			ConnMaxLifetime: cfg.Warehouse.ConnMaxLifetime,
		}, logger)
	case config.DriverDuckDB:
		var store storage.ObjectStore
		if cfg.Warehouse.MountParquet {
			s3, err := OpenObjectStore(ctx, cfg)
			if err != nil {
				return nil, err
			}
			store = s3
		}
		return duckdb.Open(ctx, duckdb.Config{
			DSN:          cfg.Warehouse.DSN,
			Table:        cfg.Warehouse.Table,
			Store:        store,
			MaxOpenConns: cfg.Warehouse.MaxOpenConns,
		}, logger)
	default:
		return nil, fmt.Errorf("unsupported warehouse driver %q", cfg.Warehouse.Driver)
	}
}

func NewHandler(cfg config.Config, session flights.Session, logger *slog.Logger) *handler.Handler {
	return handler.New(flights.NewService(session, cfg.Warehouse.Table, logger), logger)
}

func APIDependencies(cfg config.Config, session *warehouse.Session, logger *slog.Logger) api.Dependencies {
	return api.Dependencies{
		Logger:    logger,
		Functions: NewHandler(cfg, session, logger),
		Readiness: api.CombineReadinessChecks(
			api.CheckWarehouse(session.Ping),
			api.CheckObjectStoreConfig(cfg),
		),
		DependencyTimeout: time.Second,
	}
}

// NewLambdaProxy serves the full HTTP API from a single Lambda behind an
// API Gateway HTTP API or a function URL.
func NewLambdaProxy(cfg config.Config, session *warehouse.Session, logger *slog.Logger) *httpadapter.HandlerAdapterV2 {
	return httpadapter.NewV2(api.NewHandler(cfg, APIDependencies(cfg, session, logger)))
}
