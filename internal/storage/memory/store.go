// Package memory is an ObjectStore held entirely in process memory.
package memory

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/flightdesk/flightdesk/internal/storage"
)

type object struct {
	data         []byte
	etag         string
	contentType  string
	lastModified time.Time
}

type Store struct {
	mu      sync.RWMutex
	objects map[string]object
}

func New() *Store {
	return &Store{objects: map[string]object{}}
}

func (s *Store) Put(_ context.Context, key string, body io.Reader, _ int64, opts storage.PutOptions) (storage.ObjectInfo, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return storage.ObjectInfo{}, err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return storage.ObjectInfo{}, fmt.Errorf("read object body: %w", err)
	}
	sum := md5.Sum(data)
	stored := object{
		data:         data,
		etag:         hex.EncodeToString(sum[:]),
		contentType:  opts.ContentType,
		lastModified: time.Now().UTC(),
	}

	s.mu.Lock()
	s.objects[key] = stored
	s.mu.Unlock()
	return info(key, stored), nil
}

func (s *Store) Get(_ context.Context, key string) (io.ReadCloser, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	stored, ok := s.objects[key]
	s.mu.RUnlock()
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(stored.data)), nil
}

func (s *Store) Stat(_ context.Context, key string) (storage.ObjectInfo, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return storage.ObjectInfo{}, err
	}
	s.mu.RLock()
	stored, ok := s.objects[key]
	s.mu.RUnlock()
	if !ok {
		return storage.ObjectInfo{}, storage.ErrObjectNotFound
	}
	return info(key, stored), nil
}

func (s *Store) List(_ context.Context, prefix string) ([]storage.ObjectInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	listed := make([]storage.ObjectInfo, 0)
	for key, stored := range s.objects {
		if strings.HasPrefix(key, strings.TrimLeft(prefix, "/")) {
			listed = append(listed, info(key, stored))
		}
	}
	sort.Slice(listed, func(i, j int) bool { return listed[i].Key < listed[j].Key })
	return listed, nil
}

func info(key string, stored object) storage.ObjectInfo {
	return storage.ObjectInfo{
		Key:          key,
		Size:         int64(len(stored.data)),
		ETag:         stored.etag,
		LastModified: stored.lastModified,
	}
}

// Keys are stored the way the S3 store addresses them: trimmed and without a
// leading slash.
func normalizeKey(key string) (string, error) {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return "", fmt.Errorf("object key is required")
	}
	return key, nil
}
