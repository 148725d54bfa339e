package recordstore

import (
	"context"
	"slices"

	"casedesk/internal/model"
)

// Collection is a typed view of the records stored under one key
type Collection[T model.Entity[T]] struct {
	store *Store
	key   string
}

func NewCollection[T model.Entity[T]](store *Store, key string) *Collection[T] {
	return &Collection[T]{store: store, key: key}
}

func (c *Collection[T]) Key() string { return c.key }

// Load returns the records in insertion order. An absent or unparsable
// collection is returned as empty.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	return decode[T](ctx, c.store, c.key)
}

// Save overwrites the whole collection
func (c *Collection[T]) Save(ctx context.Context, records []T) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	return encode(ctx, c.store, c.key, records)
}

// Find returns the first record with the given id
func (c *Collection[T]) Find(ctx context.Context, id string) (T, error) {
	var zero T
	records, err := c.Load(ctx)
	if err != nil {
		return zero, err
	}
	if i := indexOf(records, id); i >= 0 {
		return records[i], nil
	}
	return zero, ErrNotFound
}

// Mutate loads the collection, applies fn and saves the result while holding
// the store lock. Nothing is written when fn returns an error.
func (c *Collection[T]) Mutate(ctx context.Context, fn func([]T) ([]T, error)) ([]T, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	records, err := decode[T](ctx, c.store, c.key)
	if err != nil {
		return nil, err
	}
	next, err := fn(records)
	if err != nil {
		return nil, err
	}
	if err := encode(ctx, c.store, c.key, next); err != nil {
		return nil, err
	}
	return next, nil
}

// Upsert replaces the record with the same id or appends it.
// It reports whether the record was appended.
func (c *Collection[T]) Upsert(ctx context.Context, record T) (bool, error) {
	created := false
	_, err := c.Mutate(ctx, func(records []T) ([]T, error) {
		if i := indexOf(records, record.Meta().ID); i >= 0 {
			records[i] = record
			return records, nil
		}
		created = true
		return append(records, record), nil
	})
	return created, err
}

// Replace overwrites an existing record and fails with ErrNotFound when it is absent
func (c *Collection[T]) Replace(ctx context.Context, record T) error {
	_, err := c.Mutate(ctx, func(records []T) ([]T, error) {
		i := indexOf(records, record.Meta().ID)
		if i < 0 {
			return nil, ErrNotFound
		}
		records[i] = record
		return records, nil
	})
	return err
}

// Remove deletes the record with the given id, keeping the relative order of the rest
func (c *Collection[T]) Remove(ctx context.Context, id string) (T, error) {
	var removed T
	_, err := c.Mutate(ctx, func(records []T) ([]T, error) {
		i := indexOf(records, id)
		if i < 0 {
			return nil, ErrNotFound
		}
		removed = records[i]
		return slices.Delete(records, i, i+1), nil
	})
	return removed, err
}

func indexOf[T model.Entity[T]](records []T, id string) int {
	return slices.IndexFunc(records, func(r T) bool { return r.Meta().ID == id })
}
