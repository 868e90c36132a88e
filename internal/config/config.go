package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type LookupFunc func(string) (string, bool)

type Profile string

const (
	ProfileDev  Profile = "dev"
	ProfileTest Profile = "test"
	ProfileProd Profile = "prod"
)

const (
	DriverDuckDB   = "duckdb"
	DriverPostgres = "postgres"
)

// LambdaFunctionHTTP makes the Lambda binary proxy API Gateway requests to
// the HTTP API instead of answering a single query function.
const LambdaFunctionHTTP = "http"

type Config struct {
	Profile       Profile
	Service       ServiceConfig
	HTTP          HTTPConfig
	Warehouse     WarehouseConfig
	ObjectStore   ObjectStoreConfig
	Lambda        LambdaConfig
	Seed          SeedConfig
	Observability ObservabilityConfig
}

type ServiceConfig struct {
	Name string
}

type HTTPConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type WarehouseConfig struct {
	Driver          string
	DSN             string
	Table           string
	MountParquet    bool
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

type ObjectStoreConfig struct {
	Endpoint         string
	Region           string
	Bucket           string
	AccessKeyID      string
	SecretAccessKey  string
	UseSSL           bool
	Prefix           string
	AutoCreateBucket bool
}

type LambdaConfig struct {
	Function string
}

type SeedConfig struct {
	StartDate     string
	Days          int
	FlightsPerDay int
	Seed          int64
}

type ObservabilityConfig struct {
	LogLevel slog.Level
	LogJSON  bool
}

// LoadFromEnv reads the process environment after merging a .env file from
// the working directory, if one exists. Variables already set win.
func LoadFromEnv(serviceName string) (Config, error) {
	_ = godotenv.Load()
	return Load(serviceName, os.LookupEnv)
}

func Load(serviceName string, lookup LookupFunc) (Config, error) {
	if lookup == nil {
		return Config{}, fmt.Errorf("lookup function is required")
	}

	profile := ProfileDev
	if raw, ok := lookup("FLIGHTDESK_PROFILE"); ok {
		profile = Profile(strings.ToLower(strings.TrimSpace(raw)))
	}
	if !isValidProfile(profile) {
		return Config{}, fmt.Errorf("invalid FLIGHTDESK_PROFILE: %q", profile)
	}

	cfg := defaultsForProfile(profile)
	if serviceName != "" {
		cfg.Service.Name = serviceName
	}

	if err := applyString(lookup, "FLIGHTDESK_SERVICE_NAME", &cfg.Service.Name); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "FLIGHTDESK_HTTP_ADDR", &cfg.HTTP.Address); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "FLIGHTDESK_HTTP_READ_TIMEOUT", &cfg.HTTP.ReadTimeout); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "FLIGHTDESK_HTTP_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "FLIGHTDESK_HTTP_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "FLIGHTDESK_WAREHOUSE_DRIVER", &cfg.Warehouse.Driver); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "FLIGHTDESK_WAREHOUSE_DSN", &cfg.Warehouse.DSN); err != nil {
		return Config{}, err
	}
	// SNOW_TABLE is the name earlier deployments of these functions used.
	if err := applyString(lookup, "SNOW_TABLE", &cfg.Warehouse.Table); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "FLIGHTDESK_WAREHOUSE_TABLE", &cfg.Warehouse.Table); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "FLIGHTDESK_WAREHOUSE_MOUNT_PARQUET", &cfg.Warehouse.MountParquet); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "FLIGHTDESK_WAREHOUSE_MAX_OPEN_CONNS", &cfg.Warehouse.MaxOpenConns); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "FLIGHTDESK_WAREHOUSE_MAX_IDLE_CONNS", &cfg.Warehouse.MaxIdleConns); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "FLIGHTDESK_WAREHOUSE_CONN_MAX_IDLE_TIME", &cfg.Warehouse.ConnMaxIdleTime); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "FLIGHTDESK_WAREHOUSE_CONN_MAX_LIFETIME", &cfg.Warehouse.ConnMaxLifetime); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "FLIGHTDESK_OBJECTSTORE_ENDPOINT", &cfg.ObjectStore.Endpoint); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "FLIGHTDESK_OBJECTSTORE_REGION", &cfg.ObjectStore.Region); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "FLIGHTDESK_OBJECTSTORE_BUCKET", &cfg.ObjectStore.Bucket); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "FLIGHTDESK_OBJECTSTORE_ACCESS_KEY", &cfg.ObjectStore.AccessKeyID); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "FLIGHTDESK_OBJECTSTORE_SECRET_KEY", &cfg.ObjectStore.SecretAccessKey); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "FLIGHTDESK_OBJECTSTORE_USE_SSL", &cfg.ObjectStore.UseSSL); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "FLIGHTDESK_OBJECTSTORE_PREFIX", &cfg.ObjectStore.Prefix); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "FLIGHTDESK_OBJECTSTORE_AUTO_CREATE_BUCKET", &cfg.ObjectStore.AutoCreateBucket); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "FLIGHTDESK_LAMBDA_FUNCTION", &cfg.Lambda.Function); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "FLIGHTDESK_SEED_START_DATE", &cfg.Seed.StartDate); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "FLIGHTDESK_SEED_DAYS", &cfg.Seed.Days); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "FLIGHTDESK_SEED_FLIGHTS_PER_DAY", &cfg.Seed.FlightsPerDay); err != nil {
		return Config{}, err
	}
	if err := applyInt64(lookup, "FLIGHTDESK_SEED_RANDOM_SEED", &cfg.Seed.Seed); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "FLIGHTDESK_LOG_JSON", &cfg.Observability.LogJSON); err != nil {
		return Config{}, err
	}
	if err := applyLogLevel(lookup, "FLIGHTDESK_LOG_LEVEL", &cfg.Observability.LogLevel); err != nil {
		return Config{}, err
	}

	cfg.Warehouse.Driver = strings.ToLower(cfg.Warehouse.Driver)
	if cfg.Service.Name == "" {
		return Config{}, fmt.Errorf("service name is required")
	}
	if cfg.Warehouse.Table == "" {
		return Config{}, fmt.Errorf("warehouse table is required")
	}
	switch cfg.Warehouse.Driver {
	case DriverDuckDB:
	case DriverPostgres:
		if cfg.Warehouse.DSN == "" {
			return Config{}, fmt.Errorf("warehouse dsn is required for the postgres driver")
		}
	default:
		return Config{}, fmt.Errorf("invalid FLIGHTDESK_WAREHOUSE_DRIVER: %q", cfg.Warehouse.Driver)
	}
	if cfg.HTTP.Address == "" {
		return Config{}, fmt.Errorf("http address is required")
	}
	return cfg, nil
}

func defaultsForProfile(profile Profile) Config {
	cfg := Config{
		Profile: profile,
		Service: ServiceConfig{Name: "flightdesk-api"},
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Warehouse: WarehouseConfig{
			Driver:          DriverDuckDB,
			DSN:             "",
			Table:           "flights",
			MountParquet:    true,
			MaxOpenConns:    10,
			MaxIdleConns:    10,
			ConnMaxIdleTime: 5 * time.Minute,
			ConnMaxLifetime: 30 * time.Minute,
		},
		ObjectStore: ObjectStoreConfig{
			Endpoint:         "localhost:9000",
			Region:           "us-east-1",
			Bucket:           "flightdesk",
			AccessKeyID:      "minio",
			SecretAccessKey:  "miniostorage",
			UseSSL:           false,
			Prefix:           "",
			AutoCreateBucket: true,
		},
		Lambda: LambdaConfig{
			Function: "busy_airports",
		},
		Seed: SeedConfig{
			StartDate:     "2024-01-01",
			Days:          31,
			FlightsPerDay: 2000,
			Seed:          1,
		},
		Observability: ObservabilityConfig{
			LogLevel: slog.LevelDebug,
			LogJSON:  true,
		},
	}

	switch profile {
	case ProfileTest:
		cfg.HTTP.Address = ":18080"
		cfg.Warehouse.MountParquet = false
		cfg.Observability.LogLevel = slog.LevelWarn
	case ProfileProd:
		cfg.Observability.LogLevel = slog.LevelInfo
		cfg.ObjectStore.UseSSL = true
		cfg.ObjectStore.AutoCreateBucket = false
	}

	return cfg
}

func isValidProfile(profile Profile) bool {
	switch profile {
	case ProfileDev, ProfileTest, ProfileProd:
		return true
	default:
		return false
	}
}

func applyString(lookup LookupFunc, key string, dst *string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	*dst = strings.TrimSpace(raw)
	return nil
}

func applyDuration(lookup LookupFunc, key string, dst *time.Duration) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyBool(lookup LookupFunc, key string, dst *bool) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyInt(lookup LookupFunc, key string, dst *int) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyInt64(lookup LookupFunc, key string, dst *int64) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyLogLevel(lookup LookupFunc, key string, dst *slog.Level) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	level := strings.ToLower(strings.TrimSpace(raw))
	switch level {
	case "debug":
		*dst = slog.LevelDebug
	case "info":
		*dst = slog.LevelInfo
	case "warn", "warning":
		*dst = slog.LevelWarn
	case "error":
		*dst = slog.LevelError
	default:
		return fmt.Errorf("invalid %s: %q", key, raw)
	}
	return nil
}
