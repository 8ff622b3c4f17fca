// Package storage provides the object stores behind exports: S3-compatible
// buckets and a local directory.
package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"family-archive/archive-api/internal/config"
	"family-archive/archive-api/internal/domain/archive"
)

// Backend is what the archive service needs from object storage.
type Backend interface {
	archive.ObjectStore
	archive.Authorizer
	Health(ctx context.Context) error
}

var (
	_ Backend = (*S3Storage)(nil)
	_ Backend = (*LocalStorage)(nil)
)

// NewBackend selects the backend named by ARCHIVE_STORAGE_BACKEND.
func NewBackend(ctx context.Context, cfg *config.Config, log zerolog.Logger) (Backend, error) {
	switch {
	case cfg.IsLocalStorage():
		return NewLocalStorage(cfg, log)
	case cfg.IsS3Storage():
		return NewS3Storage(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
