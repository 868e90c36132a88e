package flights

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/flightdesk/flightdesk/internal/record"
	"github.com/flightdesk/flightdesk/internal/warehouse"
)

const (
	ColumnFlightDate       = "FLIGHT_DATE"
	ColumnDepartureAirport = "DEPAPT"
	ColumnArrivalAirport   = "ARRAPT"
	ColumnCarrier          = "CARRIER"

	DefaultBusyAirportRows = 20
)

type Session interface {
	Table(name string) *warehouse.Frame
}

// Service runs the flight aggregations against one table. It holds no
// per-request state.
type Service struct {
	Session Session
	Table   string
	Logger  *slog.Logger
}

func NewService(session Session, table string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{Session: session, Table: table, Logger: logger}
}

type BusyAirportsParams struct {
	Begin  *string
	End    *string
	DepArr *string
	NRows  *string
}

type AirportDailyParams struct {
	Airport *string
	Begin   *string
	End     *string
}

type AirportDailyCarriersParams struct {
	Airport *string
	Begin   *string
	End     *string
	DepArr  *string
}

// OperativeColumn picks the airport column a query works on. Only the exact
// value "ARRAPT" selects arrivals.
func OperativeColumn(depArr *string) string {
	if depArr != nil && *depArr == ColumnArrivalAirport {
		return ColumnArrivalAirport
	}
	return ColumnDepartureAirport
}

// BusyAirports returns {apt, ct} for the airports with the most flights,
// busiest first.
func (s *Service) BusyAirports(ctx context.Context, params BusyAirportsParams) ([]record.Map, error) {
	frame, err := s.dateFiltered(ctx, params.Begin, params.End)
	if err != nil {
		return nil, err
	}
	limit, err := s.rowLimit(ctx, params.NRows)
	if err != nil {
		return nil, err
	}

	frame = frame.WithColumnRenamed(OperativeColumn(params.DepArr), "apt").
		GroupBy("apt").
		Agg(warehouse.As(warehouse.Count(warehouse.Col("apt")), "ct")).
		Sort(warehouse.Desc(warehouse.Col("ct")), warehouse.Asc(warehouse.Col("apt"))).
		Limit(limit)
	return s.collect(ctx, "busy_airports", frame)
}

// AirportDaily returns {FLIGHT_DATE, depct, arrct} per flight date.
func (s *Service) AirportDaily(ctx context.Context, params AirportDailyParams) ([]record.Map, error) {
	frame, err := s.dateFiltered(ctx, params.Begin, params.End)
	if err != nil {
		return nil, err
	}
	airport := optional(params.Airport)

	frame = frame.GroupBy(ColumnFlightDate).
		Agg(
			warehouse.As(countWhere(warehouse.Eq(warehouse.Col(ColumnDepartureAirport), warehouse.Lit(airport))), "depct"),
			warehouse.As(countWhere(warehouse.Eq(warehouse.Col(ColumnArrivalAirport), warehouse.Lit(airport))), "arrct"),
		).
		Sort(warehouse.Asc(warehouse.Col(ColumnFlightDate)))
	return s.collect(ctx, "airport_daily", frame)
}

// AirportDailyCarriers returns {FLIGHT_DATE, CARRIER, ct} for tracked
// carriers at one airport.
func (s *Service) AirportDailyCarriers(ctx context.Context, params AirportDailyCarriersParams) ([]record.Map, error) {
	frame, err := s.dateFiltered(ctx, params.Begin, params.End)
	if err != nil {
		return nil, err
	}

	frame = frame.Filter(warehouse.IsIn(warehouse.Col(ColumnCarrier), trackedCarrierArgs()...)).
		Filter(warehouse.Eq(warehouse.Col(OperativeColumn(params.DepArr)), warehouse.Lit(optional(params.Airport)))).
		GroupBy(ColumnFlightDate, ColumnCarrier).
		Agg(warehouse.As(warehouse.Count(warehouse.Col(ColumnFlightDate)), "ct")).
		Sort(warehouse.Asc(warehouse.Col(ColumnFlightDate)), warehouse.Asc(warehouse.Col(ColumnCarrier)))
	return s.collect(ctx, "airport_daily_carriers", frame)
}

// dateFiltered applies an inclusive FLIGHT_DATE range only when both bounds
// are present.
func (s *Service) dateFiltered(ctx context.Context, begin, end *string) (*warehouse.Frame, error) {
	frame := s.Session.Table(s.Table)
	if isBlank(begin) || isBlank(end) {
		return frame, nil
	}
	beginDate, err := record.ParseDate(*begin)
	if err != nil {
		s.Logger.ErrorContext(ctx, "Bad dates provided", slog.Any("error", err))
		return nil, invalidArgument(msgBadDates)
	}
	endDate, err := record.ParseDate(*end)
	if err != nil {
		s.Logger.ErrorContext(ctx, "Bad dates provided", slog.Any("error", err))
		return nil, invalidArgument(msgBadDates)
	}
	return frame.Filter(warehouse.And(
		warehouse.Gte(warehouse.Col(ColumnFlightDate), warehouse.DateLit(beginDate.String())),
		warehouse.Lte(warehouse.Col(ColumnFlightDate), warehouse.DateLit(endDate.String())),
	)), nil
}

func (s *Service) rowLimit(ctx context.Context, nrows *string) (int, error) {
	if isBlank(nrows) {
		return DefaultBusyAirportRows, nil
	}
	limit, err := strconv.Atoi(strings.TrimSpace(*nrows))
	if err != nil {
		s.Logger.ErrorContext(ctx, msgNRowsInteger, slog.String("nrows", *nrows))
		return 0, invalidArgument(msgNRowsInteger)
	}
	if limit < 0 {
		s.Logger.ErrorContext(ctx, msgNRowsNonNegative, slog.Int("nrows", limit))
		return 0, invalidArgument(msgNRowsNonNegative)
	}
	return limit, nil
}

func (s *Service) collect(ctx context.Context, query string, frame *warehouse.Frame) ([]record.Map, error) {
	rows, err := frame.Collect(ctx)
	if err != nil {
		s.Logger.ErrorContext(ctx, "Failed to retrieve data frame",
			slog.String("query", query),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	return rows, nil
}

func countWhere(predicate warehouse.Expr) warehouse.Expr {
	return warehouse.Cast(
		warehouse.Sum(warehouse.When(predicate, warehouse.Lit(1)).Otherwise(warehouse.Lit(0))),
		"BIGINT",
	)
}

func optional(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}

func isBlank(value *string) bool {
	return value == nil || *value == ""
}
