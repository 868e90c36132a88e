// Package seed writes synthetic flight partitions to the object store so a
// local DuckDB warehouse has a table to mount.
package seed

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/flightdesk/flightdesk/internal/flights"
	"github.com/flightdesk/flightdesk/internal/storage"
)

const parquetContentType = "application/vnd.apache.parquet"

type Service struct {
	store     storage.ObjectStore
	table     string
	generator *flights.Generator
	log       *slog.Logger
}

type Summary struct {
	Files   int
	Skipped int
	Flights int
	Bytes   int64
}

func NewService(store storage.ObjectStore, table string, seed int64, logger *slog.Logger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("object store is required")
	}
	if err := storage.ValidateTableName(table); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		store:     store,
		table:     table,
		generator: flights.NewGenerator(seed),
		log:       logger,
	}, nil
}

// Run writes one partition per day starting at start. A partition whose stored
// ETag already matches the generated content is left alone; any other existing
// partition for the same date is overwritten.
func (s *Service) Run(ctx context.Context, start time.Time, days, flightsPerDay int) (Summary, error) {
	if days <= 0 {
		return Summary{}, fmt.Errorf("days must be > 0")
	}
	if flightsPerDay <= 0 {
		return Summary{}, fmt.Errorf("flights per day must be > 0")
	}

	var summary Summary
	for offset := 0; offset < days; offset++ {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		day := start.UTC().AddDate(0, 0, offset)
		written, skipped, err := s.writeDay(ctx, day, flightsPerDay)
		if err != nil {
			return summary, err
		}
		if skipped {
			summary.Skipped++
			s.log.DebugContext(ctx, "flight partition unchanged", slog.String("key", written.Key))
			continue
		}
		summary.Files++
		summary.Flights += flightsPerDay
		summary.Bytes += written.Size
		s.log.InfoContext(ctx, "wrote flight partition",
			slog.String("table", s.table),
			slog.String("key", written.Key),
			slog.Int("flights", flightsPerDay),
			slog.Int64("bytes", written.Size),
		)
	}
	return summary, nil
}

func (s *Service) writeDay(ctx context.Context, day time.Time, flightsPerDay int) (storage.ObjectInfo, bool, error) {
	payload, err := flights.EncodeParquet(s.generator.Day(day, flightsPerDay))
	if err != nil {
		return storage.ObjectInfo{}, false, fmt.Errorf("encode %s: %w", day.Format("2006-01-02"), err)
	}
	key, err := storage.BuildFlightFilePath(s.table, day, 0)
	if err != nil {
		return storage.ObjectInfo{}, false, err
	}

	existing, err := s.store.Stat(ctx, key)
	switch {
	case err == nil:
		if existing.ETag == contentETag(payload) {
			return existing, true, nil
		}
	case !errors.Is(err, storage.ErrObjectNotFound):
		return storage.ObjectInfo{}, false, fmt.Errorf("stat %s: %w", key, err)
	}

	info, err := s.store.Put(ctx, key, bytes.NewReader(payload), int64(len(payload)), storage.PutOptions{ContentType: parquetContentType})
	if err != nil {
		return storage.ObjectInfo{}, false, fmt.Errorf("upload %s: %w", key, err)
	}
	if info.Key == "" {
		info.Key = key
	}
	if info.Size == 0 {
		info.Size = int64(len(payload))
	}
	return info, false, nil
}

// contentETag is the ETag S3 assigns to a single-part upload.
func contentETag(payload []byte) string {
	sum := md5.Sum(payload)
	return hex.EncodeToString(sum[:])
}
