package seed

import (
	"context"
	"testing"
	"time"

	"github.com/flightdesk/flightdesk/internal/flights"
	"github.com/flightdesk/flightdesk/internal/record"
	"github.com/flightdesk/flightdesk/internal/storage/memory"
	"github.com/flightdesk/flightdesk/internal/warehouse/duckdb"
)

func TestRunWritesOnePartitionPerDay(t *testing.T) {
	store := memory.New()
	service, err := NewService(store, "flights", 1, nil)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	summary, err := service.Run(context.Background(), time.Date(2024, 1, 30, 0, 0, 0, 0, time.UTC), 3, 40)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Files != 3 || summary.Flights != 120 || summary.Bytes <= 0 {
		t.Fatalf("summary = %+v", summary)
	}

	listed, err := store.List(context.Background(), "flights/")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []string{
		"flights/date=2024-01-30/part-00000.parquet",
		"flights/date=2024-01-31/part-00000.parquet",
		"flights/date=2024-02-01/part-00000.parquet",
	}
	if len(listed) != len(want) {
		t.Fatalf("listed = %+v", listed)
	}
	for i := range want {
		if listed[i].Key != want[i] {
			t.Fatalf("listed[%d] = %q, want %q", i, listed[i].Key, want[i])
		}
	}
}

func TestRunSkipsUnchangedPartitions(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	first, err := NewService(store, "flights", 7, nil)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	if _, err := first.Run(ctx, start, 2, 25); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	again, err := NewService(store, "flights", 7, nil)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	summary, err := again.Run(ctx, start, 2, 25)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Files != 0 || summary.Skipped != 2 {
		t.Fatalf("rerun with same seed summary = %+v, want every partition skipped", summary)
	}

	reseeded, err := NewService(store, "flights", 8, nil)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	summary, err = reseeded.Run(ctx, start, 2, 25)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Files != 2 || summary.Skipped != 0 {
		t.Fatalf("rerun with new seed summary = %+v, want every partition rewritten", summary)
	}
}

func TestSeededTableAnswersBusyAirports(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	service, err := NewService(store, "flights", 42, nil)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	if _, err := service.Run(ctx, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 2, 300); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	session, err := duckdb.Open(ctx, duckdb.Config{Table: "flights", Store: store}, nil)
	if err != nil {
		t.Fatalf("duckdb.Open() error = %v", err)
	}
	defer func() { _ = session.Close() }()

	rows, err := flights.NewService(session, "flights", nil).BusyAirports(ctx, flights.BusyAirportsParams{})
	if err != nil {
		t.Fatalf("BusyAirports() error = %v", err)
	}
	if len(rows) == 0 || len(rows) > flights.DefaultBusyAirportRows {
		t.Fatalf("rows = %d", len(rows))
	}
	var total int64
	previous := int64(1 << 62)
	for _, row := range rows {
		count, ok := row["ct"].(record.Int)
		if !ok {
			t.Fatalf("ct = %#v", row["ct"])
		}
		if int64(count) > previous {
			t.Fatalf("rows are not sorted by count descending: %#v", rows)
		}
		previous = int64(count)
		total += int64(count)
	}
	if total != 600 {
		t.Fatalf("total departures = %d, want 600", total)
	}
}

func TestRunValidatesInput(t *testing.T) {
	if _, err := NewService(nil, "flights", 1, nil); err == nil {
		t.Fatal("NewService(nil store) expected error")
	}
	if _, err := NewService(memory.New(), "../flights", 1, nil); err == nil {
		t.Fatal("NewService(bad table) expected error")
	}
	service, err := NewService(memory.New(), "flights", 1, nil)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	if _, err := service.Run(context.Background(), time.Now(), 0, 10); err == nil {
		t.Fatal("Run(days=0) expected error")
	}
	if _, err := service.Run(context.Background(), time.Now(), 1, 0); err == nil {
		t.Fatal("Run(flights=0) expected error")
	}
}

func TestRunStopsOnCanceledContext(t *testing.T) {
	service, err := NewService(memory.New(), "flights", 1, nil)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := service.Run(ctx, time.Now(), 2, 10); err == nil {
		t.Fatal("Run() expected context error")
	}
}
