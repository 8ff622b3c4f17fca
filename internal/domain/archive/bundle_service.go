package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"family-archive/archive-api/internal/domain/photo"
	"family-archive/archive-api/internal/utils/archiveid"
)

// ObjectStore is the storage the server-side bundler reads originals from and
// writes finished bundles to.
type ObjectStore interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Download(ctx context.Context, key string) (io.ReadCloser, string, error)
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// BundleOptions configures a BundleService.
type BundleOptions struct {
	OriginalPrefix string
	BundlePrefix   string
	TTL            time.Duration
	MaxObjectBytes int64
	Now            func() time.Time
}

// Bundle describes an uploaded archive.
type Bundle struct {
	ID          string    `json:"id"`
	Key         string    `json:"key"`
	DownloadURL string    `json:"downloadUrl"`
	PhotoCount  int       `json:"photoCount"`
	Bytes       int64     `json:"bytes"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// BundleService builds archives server-side. It speaks the same error
// vocabulary as the bundling client: rejected requests are validation errors,
// everything else is unavailable.
type BundleService struct {
	source photo.Source
	store  ObjectStore
	opts   BundleOptions
	log    zerolog.Logger
}

// NewBundleService creates the server-side bundler.
func NewBundleService(source photo.Source, store ObjectStore, opts BundleOptions, log zerolog.Logger) *BundleService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.TTL <= 0 {
		opts.TTL = time.Hour
	}
	if opts.BundlePrefix == "" {
		opts.BundlePrefix = "bundles"
	}
	return &BundleService{
		source: source,
		store:  store,
		opts:   opts,
		log:    log.With().Str("component", "bundle-service").Logger(),
	}
}

// Build zips the given photos, in request order, into a single stored object and
// returns a presigned URL for it.
func (s *BundleService) Build(ctx context.Context, ids []int64) (*Bundle, error) {
	if len(ids) == 0 {
		return nil, NewBundlingValidationError(http.StatusBadRequest, "imageIds must not be empty")
	}

	photos, err := s.source.List(ctx)
	if err != nil {
		return nil, NewBundlingUnavailableError(http.StatusBadGateway, "list photos", err)
	}
	index := photo.Index(photos)

	selected := make([]photo.Photo, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		p, ok := index[id]
		if !ok {
			return nil, NewBundlingValidationError(http.StatusUnprocessableEntity, fmt.Sprintf("unknown image id %d", id))
		}
		selected = append(selected, p)
	}

	assembler := NewAssembler()
	for _, p := range selected {
		data, err := s.read(ctx, p.StorageKey(s.opts.OriginalPrefix))
		if err != nil {
			return nil, NewBundlingUnavailableError(http.StatusBadGateway, fmt.Sprintf("read image %d", p.ID), err)
		}
		if _, err := assembler.Add(p, data); err != nil {
			return nil, NewBundlingUnavailableError(http.StatusInternalServerError, "assemble bundle", err)
		}
	}
	blob, err := assembler.Finish()
	if err != nil {
		return nil, NewBundlingUnavailableError(http.StatusInternalServerError, "assemble bundle", err)
	}

	id := archiveid.NewBundle()
	key := fmt.Sprintf("%s/%s.zip", s.opts.BundlePrefix, id)
	if err := s.store.Upload(ctx, key, bytes.NewReader(blob), int64(len(blob)), "application/zip"); err != nil {
		return nil, NewBundlingUnavailableError(http.StatusBadGateway, "upload bundle", err)
	}
	url, err := s.store.PresignGet(ctx, key, s.opts.TTL)
	if err != nil {
		return nil, NewBundlingUnavailableError(http.StatusBadGateway, "presign bundle", err)
	}

	s.log.Info().
		Str("bundle_id", id).
		Int("photos", len(selected)).
		Int("bytes", len(blob)).
		Msg("bundle uploaded")

	return &Bundle{
		ID:          id,
		Key:         key,
		DownloadURL: url,
		PhotoCount:  len(selected),
		Bytes:       int64(len(blob)),
		ExpiresAt:   s.opts.Now().Add(s.opts.TTL),
	}, nil
}

func (s *BundleService) read(ctx context.Context, key string) ([]byte, error) {
	reader, _, err := s.store.Download(ctx, key)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	if s.opts.MaxObjectBytes <= 0 {
		return io.ReadAll(reader)
	}
	data, err := io.ReadAll(io.LimitReader(reader, s.opts.MaxObjectBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > s.opts.MaxObjectBytes {
		return nil, fmt.Errorf("object %s exceeds %d bytes", key, s.opts.MaxObjectBytes)
	}
	return data, nil
}
