package recordstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Store reads and writes whole collections through a Backend.
// Mutations are serialized: only one load-modify-save runs at a time.
type Store struct {
	backend Backend
	log     *zap.Logger
	mu      sync.Mutex
}

// New wraps a backend. A nil logger falls back to the global zap logger.
func New(backend Backend, log *zap.Logger) *Store {
	if log == nil {
		log = zap.L()
	}
	return &Store{backend: backend, log: log.Named("recordstore")}
}

// Backend returns the underlying backend
func (s *Store) Backend() Backend { return s.backend }

func (s *Store) Close() error { return s.backend.Close() }

// Keys lists every stored collection key
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	return s.backend.Keys(ctx)
}

// Drop removes a whole collection
func (s *Store) Drop(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.backend.Delete(ctx, key); err != nil {
		return fmt.Errorf("drop %s: %w", key, err)
	}
	return nil
}

// Documents loads a collection without a concrete type. Like Collection.Load it
// treats absent and unparsable payloads as empty.
func (s *Store) Documents(ctx context.Context, key string) ([]map[string]any, error) {
	return decode[map[string]any](ctx, s, key)
}

// decode loads key and unmarshals it. Only backend failures are returned;
// a payload that does not parse is logged and yields an empty collection.
func decode[T any](ctx context.Context, s *Store, key string) ([]T, error) {
	data, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok || len(data) == 0 {
		return []T{}, nil
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		s.log.Warn("Could not parse collection, treating as empty",
			zap.String("key", key),
			zap.Int("bytes", len(data)),
			zap.Error(err))
		return []T{}, nil
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func encode[T any](ctx context.Context, s *Store, key string, records []T) error {
	if records == nil {
		records = []T{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.backend.Put(ctx, key, data); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
