// Package handler adapts invocation events to flight queries and shapes the
// results for JSON transport.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/flightdesk/flightdesk/internal/flights"
	"github.com/flightdesk/flightdesk/internal/observability"
	"github.com/flightdesk/flightdesk/internal/record"
)

const (
	FunctionBusyAirports         = "busy_airports"
	FunctionAirportDaily         = "airport_daily"
	FunctionAirportDailyCarriers = "airport_daily_carriers"
)

// Func is the signature every query function exposes to a runtime.
type Func func(ctx context.Context, event Event) (record.List, error)

type Handler struct {
	service *flights.Service
	logger  *slog.Logger
}

func New(service *flights.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{service: service, logger: logger}
}

func (h *Handler) BusyAirports(ctx context.Context, event Event) (record.List, error) {
	return h.invoke(ctx, FunctionBusyAirports, event, func(ctx context.Context) ([]record.Map, error) {
		return h.service.BusyAirports(ctx, flights.BusyAirportsParams{
			Begin:  event.Argument("begin"),
			End:    event.Argument("end"),
			DepArr: event.Argument("deparr"),
			NRows:  event.LimitArgument("nrows"),
		})
	})
}

func (h *Handler) AirportDaily(ctx context.Context, event Event) (record.List, error) {
	return h.invoke(ctx, FunctionAirportDaily, event, func(ctx context.Context) ([]record.Map, error) {
		return h.service.AirportDaily(ctx, flights.AirportDailyParams{
			Airport: event.Argument("airport"),
			Begin:   event.Argument("begin"),
			End:     event.Argument("end"),
		})
	})
}

func (h *Handler) AirportDailyCarriers(ctx context.Context, event Event) (record.List, error) {
	return h.invoke(ctx, FunctionAirportDailyCarriers, event, func(ctx context.Context) ([]record.Map, error) {
		return h.service.AirportDailyCarriers(ctx, flights.AirportDailyCarriersParams{
			Airport: event.Argument("airport"),
			Begin:   event.Argument("begin"),
			End:     event.Argument("end"),
			DepArr:  event.Argument("deparr"),
		})
	})
}

// Lookup resolves a function by its deployed name.
func (h *Handler) Lookup(name string) (Func, bool) {
	switch name {
	case FunctionBusyAirports:
		return h.BusyAirports, true
	case FunctionAirportDaily:
		return h.AirportDaily, true
	case FunctionAirportDailyCarriers:
		return h.AirportDailyCarriers, true
	default:
		return nil, false
	}
}

func Names() []string {
	return []string{FunctionBusyAirports, FunctionAirportDaily, FunctionAirportDailyCarriers}
}

func (h *Handler) invoke(ctx context.Context, function string, event Event, run func(context.Context) ([]record.Map, error)) (record.List, error) {
	start := time.Now()
	h.logEvent(ctx, function, event)

	rows, err := run(ctx)
	if err != nil {
		outcome := observability.OutcomeError
		if errors.Is(err, flights.ErrInvalidArgument) {
			outcome = observability.OutcomeInvalidArgument
		}
		observability.ObserveFunction(function, outcome, 0, time.Since(start))
		return nil, err
	}

	result := make(record.List, 0, len(rows))
	for _, row := range rows {
		result = append(result, row)
	}
	record.Stringify(result)
	observability.ObserveFunction(function, observability.OutcomeOK, len(result), time.Since(start))
	return result, nil
}

func (h *Handler) logEvent(ctx context.Context, function string, event Event) {
	raw, err := json.Marshal(event)
	if err != nil {
		h.logger.InfoContext(ctx, "event", slog.String("function", function), slog.Any("event", event))
		return
	}
	h.logger.InfoContext(ctx, "event", slog.String("function", function), slog.String("event", string(raw)))
}
