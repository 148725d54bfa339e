// Package recordstore persists named collections of JSON records under flat string keys.
// A collection is always loaded and saved as a whole.
package recordstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a record id is not present in a collection
	ErrNotFound = errors.New("record not found")
	// ErrInvalidKey is returned for keys that cannot be stored safely
	ErrInvalidKey = errors.New("invalid collection key")
)

// Backend stores raw collection payloads by key.
// Get reports ok=false when the key is absent.
type Backend interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

// ValidateKey rejects empty keys and keys that could escape a directory or
// collide with temporary files.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	if strings.HasSuffix(key, ".tmp") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_' || r == '-' || r == '.':
		default:
			return fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	if strings.Contains(key, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// Migrate copies every key from src to dst and returns the number of keys copied.
func Migrate(ctx context.Context, src, dst Backend) (int, error) {
	keys, err := src.Keys(ctx)
	if err != nil {
		return 0, fmt.Errorf("list source keys: %w", err)
	}
	copied := 0
	for _, key := range keys {
		data, ok, err := src.Get(ctx, key)
		if err != nil {
			return copied, fmt.Errorf("read %s: %w", key, err)
		}
		if !ok {
			continue
		}
		if err := dst.Put(ctx, key, data); err != nil {
			return copied, fmt.Errorf("write %s: %w", key, err)
		}
		copied++
	}
	return copied, nil
}
