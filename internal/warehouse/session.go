package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/flightdesk/flightdesk/internal/observability"
	"github.com/flightdesk/flightdesk/internal/record"
)

// Session is a handle on an open warehouse connection pool. It is safe for
// concurrent use; database/sql owns the pooling.
type Session struct {
	db      *sql.DB
	logger  *slog.Logger
	closers []func() error
}

func NewSession(db *sql.DB, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Session{db: db, logger: logger}
}

// OnClose registers cleanup that runs after the database is closed.
func (s *Session) OnClose(fn func() error) {
	s.closers = append(s.closers, fn)
}

func (s *Session) Table(name string) *Frame {
	return &Frame{session: s, table: name, renames: map[string]string{}}
}

func (s *Session) Ping(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("warehouse session is not open")
	}
	return s.db.PingContext(ctx)
}

func (s *Session) Close() error {
	var firstErr error
	if s.db != nil {
		firstErr = s.db.Close()
	}
	for _, fn := range s.closers {
		if err := fn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Query runs sqlText and materializes every row as a record.Map keyed by
// result column name. Driver errors are returned unwrapped.
func (s *Session) Query(ctx context.Context, sqlText string, args ...any) (result []record.Map, err error) {
	if s.db == nil {
		return nil, fmt.Errorf("warehouse session is not open")
	}
	start := time.Now()
	defer func() {
		observability.ObserveWarehouseQuery(time.Since(start), err)
	}()

	s.logger.DebugContext(ctx, "warehouse_query", slog.String("sql", sqlText), slog.Int("args", len(args)))

	rows, err := s.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	result = make([]record.Map, 0)
	for rows.Next() {
		values := make([]any, len(columnTypes))
		scanTargets := make([]any, len(columnTypes))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return nil, err
		}
		row := make(record.Map, len(columnTypes))
		for i, columnType := range columnTypes {
			row[columnType.Name()] = record.FromDriver(values[i], columnType.DatabaseTypeName())
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
