// Package blob stores export artifacts on the local filesystem or in S3.
package blob

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
)

var (
	ErrNotFound    = errors.New("blob not found")
	ErrUnsupported = errors.New("operation not supported by driver")
	ErrInvalidKey  = errors.New("invalid blob key")
)

// Drivers
const (
	DriverFS = "fs"
	DriverS3 = "s3"
)

// Info describes a stored object
type Info struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"contentType,omitempty"`
	LastModified time.Time `json:"lastModified,omitzero"`
}

// Store is implemented by every blob driver
type Store interface {
	Driver() string
	Put(ctx context.Context, key string, data []byte, contentType string) (Info, error)
	Get(ctx context.Context, key string) (Info, []byte, error)
	List(ctx context.Context, prefix string) ([]Info, error)
	PresignURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// Config selects and configures a driver
type Config struct {
	Driver    string
	Dir       string
	Bucket    string
	Region    string
	Endpoint  string
	PathStyle bool
}

// Open builds the store named by cfg.Driver
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", DriverFS:
		return NewFSStore(cfg.Dir)
	case DriverS3:
		return NewS3Store(ctx, S3Config{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			Endpoint:  cfg.Endpoint,
			PathStyle: cfg.PathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.Driver)
	}
}

// cleanKey normalizes a slash separated key and rejects keys escaping the root
func cleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return cleaned, nil
}
