package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/flightdesk/flightdesk/internal/config"
	"github.com/flightdesk/flightdesk/internal/flights"
	"github.com/flightdesk/flightdesk/internal/handler"
	"github.com/flightdesk/flightdesk/internal/observability"
)

type ReadinessCheck func(ctx context.Context) error

// FunctionLookup resolves query functions by name.
type FunctionLookup interface {
	Lookup(name string) (handler.Func, bool)
}

type Dependencies struct {
	Logger            *slog.Logger
	Readiness         ReadinessCheck
	DependencyTimeout time.Duration
	Functions         FunctionLookup
}

const maxEventBytes = 1 << 20

func NewHandler(cfg config.Config, deps Dependencies) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "service": cfg.Service.Name})
	})

	mux.HandleFunc("GET /v1/ready", func(w http.ResponseWriter, r *http.Request) {
		if deps.Readiness == nil {
			writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
			return
		}
		timeout := deps.DependencyTimeout
		if timeout <= 0 {
			timeout = 2 * time.Second
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		if err := deps.Readiness(ctx); err != nil {
			writeError(r.Context(), w, http.StatusServiceUnavailable, "NOT_READY", err.Error(), true, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
	})

	mux.Handle("GET /v1/metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/functions", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"functions": handler.Names()})
	})

	mux.HandleFunc("POST /v1/functions/{name}", func(w http.ResponseWriter, r *http.Request) {
		handleInvoke(deps, w, r)
	})

	middlewares := []func(http.Handler) http.Handler{
		observability.TraceMiddleware,
		observability.MetricsMiddleware,
	}
	if deps.Logger != nil {
		middlewares = append(middlewares, observability.LoggingMiddleware(deps.Logger))
	}
	return chain(mux, middlewares...)
}

// handleInvoke runs one query function with the request body as its event.
func handleInvoke(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Functions == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "FUNCTIONS_NOT_CONFIGURED", "query functions are not configured", false, nil)
		return
	}
	name := r.PathValue("name")
	fn, ok := deps.Functions.Lookup(name)
	if !ok {
		writeError(r.Context(), w, http.StatusNotFound, "FUNCTION_NOT_FOUND", "unknown function", false, map[string]any{"function": name})
		return
	}

	event, err := decodeEvent(r.Body)
	if err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid event body", false, map[string]any{"details": err.Error()})
		return
	}

	result, err := fn(r.Context(), event)
	if err != nil {
		if errors.Is(err, flights.ErrInvalidArgument) {
			writeError(r.Context(), w, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error(), false, map[string]any{"function": name})
			return
		}
		writeError(r.Context(), w, http.StatusBadGateway, "QUERY_EXECUTION_FAILED", err.Error(), true, map[string]any{"function": name})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// An empty body is an event without arguments.
func decodeEvent(body io.Reader) (handler.Event, error) {
	decoder := json.NewDecoder(io.LimitReader(body, maxEventBytes))
	decoder.UseNumber()
	event := handler.Event{}
	if err := decoder.Decode(&event); err != nil {
		if errors.Is(err, io.EOF) {
			return handler.Event{}, nil
		}
		return nil, err
	}
	return event, nil
}

func CheckWarehouse(ping func(ctx context.Context) error) ReadinessCheck {
	return func(ctx context.Context) error {
		if ping == nil {
			return errors.New("warehouse session is not configured")
		}
		return ping(ctx)
	}
}

func CheckObjectStoreConfig(cfg config.Config) ReadinessCheck {
	return func(_ context.Context) error {
		if cfg.Warehouse.Driver != config.DriverDuckDB || !cfg.Warehouse.MountParquet {
			return nil
		}
		if cfg.ObjectStore.Endpoint == "" {
			return errors.New("object store endpoint is not configured")
		}
		if cfg.ObjectStore.Bucket == "" {
			return errors.New("object store bucket is not configured")
		}
		return nil
	}
}

func CombineReadinessChecks(checks ...ReadinessCheck) ReadinessCheck {
	filtered := make([]ReadinessCheck, 0, len(checks))
	for _, check := range checks {
		if check != nil {
			filtered = append(filtered, check)
		}
	}
	return func(ctx context.Context) error {
		for _, check := range filtered {
			if err := check(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}

func chain(base http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	wrapped := base
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}
	return wrapped
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, code, message string, retryable bool, extra map[string]any) {
	writeJSON(w, status, map[string]any{
		"error_code": code,
		"message":    message,
		"retryable":  retryable,
		"context":    extra,
		"trace_id":   observability.TraceIDFromContext(ctx),
	})
}
