package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"family-archive/archive-api/internal/config"
	"family-archive/archive-api/internal/domain/archive"
	"family-archive/archive-api/internal/infrastructure/metrics"
)

var (
	errLocalStorageDisabled = errors.New("local storage is not configured; set ARCHIVE_LOCAL_STORAGE_PATH to enable")
	// ErrObjectNotFound is returned when a key has no file behind it.
	ErrObjectNotFound = errors.New("object not found")
	errInvalidKey     = errors.New("invalid object key")
)

// LocalStorage keeps objects on the local filesystem. Its "presigned" URLs
// point at the service's own /v1/files route.
type LocalStorage struct {
	basePath   string
	baseURL    string
	presignTTL time.Duration
	log        zerolog.Logger
	disabled   bool
	now        func() time.Time
}

// NewLocalStorage creates a filesystem storage backend.
func NewLocalStorage(cfg *config.Config, log zerolog.Logger) (*LocalStorage, error) {
	logger := log.With().Str("component", "local-storage").Logger()

	basePath := strings.TrimSpace(cfg.LocalStoragePath)
	if basePath == "" {
		logger.Warn().Msg("ARCHIVE_LOCAL_STORAGE_PATH is not set; local storage will be disabled")
		return &LocalStorage{log: logger, disabled: true, now: time.Now}, nil
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create local storage directory: %w", err)
	}
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("resolve local storage directory: %w", err)
	}

	storage := &LocalStorage{
		basePath:   abs,
		baseURL:    strings.TrimSuffix(strings.TrimSpace(cfg.LocalStorageBaseURL), "/"),
		presignTTL: cfg.S3PresignTTL,
		log:        logger,
		now:        time.Now,
	}

	logger.Info().
		Str("path", storage.basePath).
		Str("base_url", storage.baseURL).
		Msg("local storage initialized")

	return storage, nil
}

func (l *LocalStorage) ensureEnabled() error {
	if l.disabled {
		return errLocalStorageDisabled
	}
	return nil
}

// resolve maps key to a path inside basePath.
func (l *LocalStorage) resolve(key string) (string, error) {
	clean := filepath.Clean("/" + filepath.FromSlash(strings.TrimSpace(key)))
	if clean == string(filepath.Separator) {
		return "", errInvalidKey
	}
	full := filepath.Join(l.basePath, clean)
	rel, err := filepath.Rel(l.basePath, full)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", errInvalidKey
	}
	return full, nil
}

// Upload stores an object.
func (l *LocalStorage) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (err error) {
	if err := l.ensureEnabled(); err != nil {
		return err
	}
	started := time.Now()
	defer func() { metrics.RecordStorageOperation("put", err, started) }()

	fullPath, err := l.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	written, err := io.Copy(file, body)
	if err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	l.log.Debug().Str("key", key).Int64("bytes", written).Msg("object written to local storage")
	return nil
}

// Download opens an object. The content type is sniffed from its first bytes.
func (l *LocalStorage) Download(ctx context.Context, key string) (rc io.ReadCloser, contentType string, err error) {
	if err := l.ensureEnabled(); err != nil {
		return nil, "", err
	}
	started := time.Now()
	defer func() { metrics.RecordStorageOperation("get", err, started) }()

	fullPath, err := l.resolve(key)
	if err != nil {
		return nil, "", err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", fmt.Errorf("%w: %s", ErrObjectNotFound, key)
		}
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}

	contentType = "application/octet-stream"
	if mt, err := mimetype.DetectReader(file); err == nil {
		contentType = mt.String()
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, "", fmt.Errorf("failed to rewind file: %w", err)
	}
	return file, contentType, nil
}

// PresignGet returns a URL for the object. TTL is not enforced locally.
// Key segments are percent-escaped so names with '#', '?' or '%' survive.
func (l *LocalStorage) PresignGet(ctx context.Context, key string, ttl time.Duration) (_ string, err error) {
	if err := l.ensureEnabled(); err != nil {
		return "", err
	}
	started := time.Now()
	defer func() { metrics.RecordStorageOperation("presign", err, started) }()

	fullPath, err := l.resolve(key)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		return "", fmt.Errorf("%w: %s", ErrObjectNotFound, key)
	}

	if l.baseURL != "" {
		rel, err := filepath.Rel(l.basePath, fullPath)
		if err != nil {
			return "", errInvalidKey
		}
		segments := strings.Split(filepath.ToSlash(rel), "/")
		for i, seg := range segments {
			segments[i] = url.PathEscape(seg)
		}
		return l.baseURL + "/" + strings.Join(segments, "/"), nil
	}
	fileURL := url.URL{Scheme: "file", Path: filepath.ToSlash(fullPath)}
	return fileURL.String(), nil
}

// Authorize returns a retrieval URL for the object. The bucket is ignored:
// every key lives under the storage directory.
func (l *LocalStorage) Authorize(ctx context.Context, ref archive.ObjectRef) (*archive.Authorization, error) {
	rawURL, err := l.PresignGet(ctx, ref.Key, l.presignTTL)
	if err != nil {
		return nil, err
	}
	auth := &archive.Authorization{URL: rawURL}
	if l.presignTTL > 0 {
		auth.ExpiresAt = l.now().Add(l.presignTTL)
	}
	return auth, nil
}

// Health checks that the storage directory is writable.
func (l *LocalStorage) Health(ctx context.Context) error {
	if l.disabled {
		return nil
	}
	testFile := filepath.Join(l.basePath, ".health_check")
	if err := os.WriteFile(testFile, []byte("ok"), 0o644); err != nil {
		return fmt.Errorf("storage directory not writable: %w", err)
	}
	_ = os.Remove(testFile)
	return nil
}
