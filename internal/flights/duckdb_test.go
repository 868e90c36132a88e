package flights

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/flightdesk/flightdesk/internal/record"
	"github.com/flightdesk/flightdesk/internal/storage"
	"github.com/flightdesk/flightdesk/internal/storage/memory"
	"github.com/flightdesk/flightdesk/internal/warehouse/duckdb"
)

var fixtureFlights = map[string][]FlightRecord{
	"2024-01-01": {
		{FlightDate: "2024-01-01", Carrier: "AA", FlightNum: "AA100", DepApt: "JFK", ArrApt: "LAX"},
		{FlightDate: "2024-01-01", Carrier: "DL", FlightNum: "DL200", DepApt: "JFK", ArrApt: "ATL"},
		{FlightDate: "2024-01-01", Carrier: "NK", FlightNum: "NK300", DepApt: "JFK", ArrApt: "MIA"},
		{FlightDate: "2024-01-01", Carrier: "UA", FlightNum: "UA400", DepApt: "LAX", ArrApt: "JFK"},
	},
	"2024-01-02": {
		{FlightDate: "2024-01-02", Carrier: "AA", FlightNum: "AA101", DepApt: "JFK", ArrApt: "SEA"},
		{FlightDate: "2024-01-02", Carrier: "AS", FlightNum: "AS500", DepApt: "SEA", ArrApt: "JFK"},
		{FlightDate: "2024-01-02", Carrier: "WN", FlightNum: "WN600", DepApt: "ATL", ArrApt: "JFK"},
	},
	"2024-01-03": {
		{FlightDate: "2024-01-03", Carrier: "DL", FlightNum: "DL201", DepApt: "ATL", ArrApt: "LAX"},
	},
}

func TestBusyAirportsAgainstDuckDB(t *testing.T) {
	service := newDuckDBService(t)
	ctx := context.Background()

	rows, err := service.BusyAirports(ctx, BusyAirportsParams{})
	if err != nil {
		t.Fatalf("BusyAirports() error = %v", err)
	}
	assertAirportCounts(t, rows, []string{"JFK", "ATL", "LAX", "SEA"}, []int64{4, 2, 1, 1})

	rows, err = service.BusyAirports(ctx, BusyAirportsParams{NRows: ptr("2")})
	if err != nil {
		t.Fatalf("BusyAirports(nrows=2) error = %v", err)
	}
	assertAirportCounts(t, rows, []string{"JFK", "ATL"}, []int64{4, 2})

	rows, err = service.BusyAirports(ctx, BusyAirportsParams{Begin: ptr("2024-01-02"), End: ptr("2024-01-03")})
	if err != nil {
		t.Fatalf("BusyAirports(dates) error = %v", err)
	}
	assertAirportCounts(t, rows, []string{"ATL", "JFK", "SEA"}, []int64{2, 1, 1})

	rows, err = service.BusyAirports(ctx, BusyAirportsParams{DepArr: ptr("ARRAPT")})
	if err != nil {
		t.Fatalf("BusyAirports(ARRAPT) error = %v", err)
	}
	assertAirportCounts(t, rows, []string{"JFK", "LAX", "ATL", "MIA", "SEA"}, []int64{3, 2, 1, 1, 1})

	rows, err = service.BusyAirports(ctx, BusyAirportsParams{NRows: ptr("0")})
	if err != nil {
		t.Fatalf("BusyAirports(nrows=0) error = %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("nrows=0 rows = %d", len(rows))
	}
}

func TestAirportDailyAgainstDuckDB(t *testing.T) {
	service := newDuckDBService(t)

	rows, err := service.AirportDaily(context.Background(), AirportDailyParams{Airport: ptr("JFK")})
	if err != nil {
		t.Fatalf("AirportDaily() error = %v", err)
	}
	want := []struct {
		date  string
		depct int64
		arrct int64
	}{
		{"2024-01-01", 3, 1},
		{"2024-01-02", 1, 2},
		{"2024-01-03", 0, 0},
	}
	if len(rows) != len(want) {
		t.Fatalf("rows = %d, want %d", len(rows), len(want))
	}
	for i, expected := range want {
		date, ok := rows[i][ColumnFlightDate].(record.Date)
		if !ok {
			t.Fatalf("row %d FLIGHT_DATE = %#v, want record.Date", i, rows[i][ColumnFlightDate])
		}
		if date.String() != expected.date {
			t.Fatalf("row %d FLIGHT_DATE = %s, want %s", i, date, expected.date)
		}
		if rows[i]["depct"] != record.Int(expected.depct) || rows[i]["arrct"] != record.Int(expected.arrct) {
			t.Fatalf("row %d = %#v", i, rows[i])
		}
	}

	rows, err = service.AirportDaily(context.Background(), AirportDailyParams{Airport: ptr("JFK"), Begin: ptr("2024-01-02"), End: ptr("2024-01-02")})
	if err != nil {
		t.Fatalf("AirportDaily(dates) error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("single-day rows = %d", len(rows))
	}
}

func TestAirportDailyCarriersAgainstDuckDB(t *testing.T) {
	service := newDuckDBService(t)

	rows, err := service.AirportDailyCarriers(context.Background(), AirportDailyCarriersParams{Airport: ptr("JFK")})
	if err != nil {
		t.Fatalf("AirportDailyCarriers() error = %v", err)
	}
	assertCarrierRows(t, rows, []string{"2024-01-01/AA", "2024-01-01/DL", "2024-01-02/AA"})

	rows, err = service.AirportDailyCarriers(context.Background(), AirportDailyCarriersParams{Airport: ptr("JFK"), DepArr: ptr("ARRAPT")})
	if err != nil {
		t.Fatalf("AirportDailyCarriers(ARRAPT) error = %v", err)
	}
	assertCarrierRows(t, rows, []string{"2024-01-01/UA", "2024-01-02/AS", "2024-01-02/WN"})

	rows, err = service.AirportDailyCarriers(context.Background(), AirportDailyCarriersParams{Airport: ptr("MIA"), DepArr: ptr("ARRAPT")})
	if err != nil {
		t.Fatalf("AirportDailyCarriers(MIA) error = %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("untracked carrier rows = %#v", rows)
	}
}

func TestGeneratedDayRoundTripsThroughParquet(t *testing.T) {
	records := NewGenerator(7).Day(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 50)
	if len(records) != 50 {
		t.Fatalf("records = %d", len(records))
	}
	for _, flight := range records {
		if flight.FlightDate != "2024-03-01" {
			t.Fatalf("FlightDate = %q", flight.FlightDate)
		}
		if flight.DepApt == flight.ArrApt {
			t.Fatalf("flight %+v departs and arrives at the same airport", flight)
		}
	}
	again := NewGenerator(7).Day(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 50)
	for i := range records {
		if records[i] != again[i] {
			t.Fatalf("generator is not deterministic at %d: %+v vs %+v", i, records[i], again[i])
		}
	}
	if _, err := EncodeParquet(records); err != nil {
		t.Fatalf("EncodeParquet() error = %v", err)
	}
	if _, err := EncodeParquet(nil); err == nil {
		t.Fatal("EncodeParquet(nil) expected error")
	}
}

func newDuckDBService(t *testing.T) *Service {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	for day, records := range fixtureFlights {
		flightDate, err := time.Parse(record.DateLayout, day)
		if err != nil {
			t.Fatalf("time.Parse(%q) error = %v", day, err)
		}
		payload, err := EncodeParquet(records)
		if err != nil {
			t.Fatalf("EncodeParquet() error = %v", err)
		}
		key, err := storage.BuildFlightFilePath("flights", flightDate, 0)
		if err != nil {
			t.Fatalf("BuildFlightFilePath() error = %v", err)
		}
		if _, err := store.Put(ctx, key, bytes.NewReader(payload), int64(len(payload)), storage.PutOptions{}); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
	}

	session, err := duckdb.Open(ctx, duckdb.Config{Table: "flights", Store: store}, nil)
	if err != nil {
		t.Fatalf("duckdb.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = session.Close() })
	return NewService(session, "flights", nil)
}

func assertAirportCounts(t *testing.T, rows []record.Map, airports []string, counts []int64) {
	t.Helper()
	if len(rows) != len(airports) {
		t.Fatalf("rows = %#v, want %d airports", rows, len(airports))
	}
	for i := range airports {
		if rows[i]["apt"] != record.String(airports[i]) || rows[i]["ct"] != record.Int(counts[i]) {
			t.Fatalf("row %d = %#v, want %s/%d", i, rows[i], airports[i], counts[i])
		}
	}
}

func assertCarrierRows(t *testing.T, rows []record.Map, want []string) {
	t.Helper()
	if len(rows) != len(want) {
		t.Fatalf("rows = %#v, want %v", rows, want)
	}
	for i, expected := range want {
		date, _ := rows[i][ColumnFlightDate].(record.Date)
		carrier, _ := rows[i][ColumnCarrier].(record.String)
		if got := date.String() + "/" + string(carrier); got != expected {
			t.Fatalf("row %d = %s, want %s", i, got, expected)
		}
		if rows[i]["ct"] != record.Int(1) {
			t.Fatalf("row %d ct = %#v", i, rows[i]["ct"])
		}
	}
}
