// file: internal/cache/cache.go
// version: 2.0.0
// guid: a1b2c3d4-e5f6-7a8b-9c0d-1e2f3a4b5c6d

package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/cockroachdb/pebble/v2"

	"github.com/jdfalk/audiobook-curator/internal/models"
)

// ErrMiss is returned when a key has no cached record.
var ErrMiss = errors.New("cache miss")

// Store is the durable resolution cache backed by PebbleDB.
//
// Key Schema:
// - query:<normalized query> -> Record JSON
// - file:<absolute path>     -> Record JSON
//
// Both namespaces are simple overwrite-on-write maps. There is no eviction:
// personal-library scale makes unbounded growth acceptable, and clearing is
// explicit and total.
type Store struct {
	mu sync.RWMutex
	db *pebble.DB
}

const (
	queryPrefix = "query:"
	filePrefix  = "file:"
)

// Open opens (or creates) the cache database at path.
func Open(path string) (*Store, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache db: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// NormalizeQuery lowercases and collapses whitespace so trivially different
// search strings share one cache entry.
func NormalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

// GetQuery returns the record cached for a search query, or ErrMiss.
func (s *Store) GetQuery(query string) (models.Record, error) {
	return s.get(queryPrefix + NormalizeQuery(query))
}

// PutQuery caches the record for a search query, overwriting any prior entry.
func (s *Store) PutQuery(query string, rec models.Record) error {
	return s.put(queryPrefix+NormalizeQuery(query), rec)
}

// GetFile returns the record cached for a file path, or ErrMiss.
func (s *Store) GetFile(path string) (models.Record, error) {
	return s.get(filePrefix + path)
}

// PutFile caches the resolved record for a file path.
func (s *Store) PutFile(path string, rec models.Record) error {
	return s.put(filePrefix+path, rec)
}

// Invalidate drops the file-namespace entry for path. A missing entry is
// not an error.
func (s *Store) Invalidate(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.db.Delete([]byte(filePrefix+path), pebble.Sync); err != nil {
		return fmt.Errorf("failed to invalidate %s: %w", path, err)
	}
	return nil
}

// Clear removes every entry in both namespaces.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, prefix := range []string{queryPrefix, filePrefix} {
		if err := s.deletePrefix(prefix); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) deletePrefix(prefix string) error {
	start := []byte(prefix)
	end := []byte(prefix)
	end[len(end)-1]++ // ':' -> ';' bounds the prefix range
	if err := s.db.DeleteRange(start, end, pebble.Sync); err != nil {
		return fmt.Errorf("failed to clear %s namespace: %w", prefix, err)
	}
	return nil
}

func (s *Store) get(key string) (models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rec models.Record
	value, closer, err := s.db.Get([]byte(key))
	if err == pebble.ErrNotFound {
		return rec, ErrMiss
	}
	if err != nil {
		return rec, fmt.Errorf("cache get %s: %w", key, err)
	}
	defer closer.Close()

	if err := json.Unmarshal(value, &rec); err != nil {
		return rec, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return rec, nil
}

func (s *Store) put(key string, rec models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := s.db.Set([]byte(key), data, pebble.Sync); err != nil {
		return fmt.Errorf("cache put %s: %w", key, err)
	}
	return nil
}
