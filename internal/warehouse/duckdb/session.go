package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb/v2"

	"github.com/flightdesk/flightdesk/internal/storage"
	"github.com/flightdesk/flightdesk/internal/warehouse"
)

type Config struct {
	// DSN is a database file path; empty opens an in-memory database.
	DSN string
	// Table is mounted as a view over the parquet files stored under
	// <Table>/ in Store. A nil Store skips mounting and expects the table
	// to already exist in the database.
	Table        string
	Store        storage.ObjectStore
	MaxOpenConns int
}

func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*warehouse.Session, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	db, err := sql.Open("duckdb", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping duckdb: %w", err)
	}

	session := warehouse.NewSession(db, logger)
	if cfg.Store == nil {
		return session, nil
	}

	workDir, err := os.MkdirTemp("", "flightdesk-parquet-")
	if err != nil {
		_ = session.Close()
		return nil, fmt.Errorf("create parquet temp dir: %w", err)
	}
	session.OnClose(func() error { return os.RemoveAll(workDir) })

	mounted, err := mountTable(ctx, db, cfg.Store, cfg.Table, workDir)
	if err != nil {
		_ = session.Close()
		return nil, err
	}
	logger.InfoContext(ctx, "mounted flight table",
		slog.String("table", cfg.Table),
		slog.Int("files", mounted.files),
		slog.Int64("bytes", mounted.bytes),
	)
	return session, nil
}

type mountSummary struct {
	files int
	bytes int64
}

func mountTable(ctx context.Context, db *sql.DB, store storage.ObjectStore, table, workDir string) (mountSummary, error) {
	if strings.Contains(table, ".") {
		return mountSummary{}, fmt.Errorf("mounted table name must not be schema-qualified: %q", table)
	}
	prefix, err := storage.TablePrefix(table)
	if err != nil {
		return mountSummary{}, err
	}
	objects, err := store.List(ctx, prefix)
	if err != nil {
		return mountSummary{}, fmt.Errorf("list table files: %w", err)
	}

	localPaths := make([]string, 0, len(objects))
	var summary mountSummary
	for index, object := range objects {
		if !storage.IsParquetKey(object.Key) {
			continue
		}
		localPath := filepath.Join(workDir, fmt.Sprintf("%05d_%s", index, sanitizeFileComponent(path.Base(object.Key))))
		if err := download(ctx, store, object.Key, localPath); err != nil {
			return mountSummary{}, err
		}
		localPaths = append(localPaths, localPath)
		summary.files++
		summary.bytes += object.Size
	}
	if len(localPaths) == 0 {
		return mountSummary{}, fmt.Errorf("no parquet files found under %q", prefix)
	}

	// Parquet files carry FLIGHT_DATE as an ISO string; the view exposes it as DATE.
	viewSQL := fmt.Sprintf(
		`CREATE OR REPLACE VIEW %s AS SELECT * REPLACE (CAST("FLIGHT_DATE" AS DATE) AS "FLIGHT_DATE") FROM read_parquet(%s)`,
		quoteIdent(table), quoteStringArray(localPaths),
	)
	if _, err := db.ExecContext(ctx, viewSQL); err != nil {
		return mountSummary{}, fmt.Errorf("create view for table %q: %w", table, err)
	}
	return summary, nil
}

func download(ctx context.Context, store storage.ObjectStore, key, localPath string) error {
	reader, err := store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("get object %q: %w", key, err)
	}
	defer func() { _ = reader.Close() }()

	file, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("create local parquet file %q: %w", localPath, err)
	}
	if _, err := io.Copy(file, reader); err != nil {
		_ = file.Close()
		return fmt.Errorf("write local parquet file %q: %w", localPath, err)
	}
	return file.Close()
}

func quoteIdent(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

func quoteStringArray(values []string) string {
	quoted := make([]string, 0, len(values))
	for _, value := range values {
		quoted = append(quoted, `'`+strings.ReplaceAll(value, `'`, `''`)+`'`)
	}
	return "[" + strings.Join(quoted, ",") + "]"
}

func sanitizeFileComponent(value string) string {
	value = strings.ReplaceAll(value, "/", "_")
	value = strings.ReplaceAll(value, "..", "_")
	if value == "" {
		return "part.parquet"
	}
	return value
}
