package model

import "time"

// Record holds the fields every persisted entity carries.
// Entity types embed it so the JSON layout stays flat.
type Record struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenantId,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// Meta returns the record metadata.
func (r Record) Meta() Record { return r }

// Entity is implemented by every type stored in a collection.
// WithMeta returns a copy of the value carrying the given metadata.
type Entity[T any] interface {
	Meta() Record
	WithMeta(Record) T
}

// Named is implemented by entities that have a human-readable name used in notifications.
type Named interface {
	DisplayName() string
}

// DisplayNameOf returns the display name of v, or fallback when v has none.
func DisplayNameOf(v any, fallback string) string {
	if n, ok := v.(Named); ok {
		if name := n.DisplayName(); name != "" {
			return name
		}
	}
	return fallback
}
