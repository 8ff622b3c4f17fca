package archive_test

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"family-archive/archive-api/internal/domain/archive"
	"family-archive/archive-api/internal/domain/photo"
)

type staticSource struct {
	photos []photo.Photo
	err    error
}

func (s staticSource) List(ctx context.Context) ([]photo.Photo, error) {
	return s.photos, s.err
}

type memoryStore struct {
	objects    map[string][]byte
	uploadErr  error
	presignErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string][]byte{}}
}

func (m *memoryStore) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if m.uploadErr != nil {
		return m.uploadErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.objects[key] = data
	return nil
}

func (m *memoryStore) Download(ctx context.Context, key string) (io.ReadCloser, string, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, "", fmt.Errorf("object %s not found", key)
	}
	return io.NopCloser(bytes.NewReader(data)), "application/octet-stream", nil
}

func (m *memoryStore) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if m.presignErr != nil {
		return "", m.presignErr
	}
	return "https://r2.test/" + key + "?ttl=" + ttl.String(), nil
}

func newBundleService(source photo.Source, store archive.ObjectStore, maxBytes int64) *archive.BundleService {
	return archive.NewBundleService(source, store, archive.BundleOptions{
		OriginalPrefix: "original",
		BundlePrefix:   "bundles",
		TTL:            time.Hour,
		MaxObjectBytes: maxBytes,
		Now:            func() time.Time { return fixedNow },
	}, zerolog.Nop())
}

func TestBundleService_Build(t *testing.T) {
	store := newMemoryStore()
	photos := samplePhotos()
	for _, p := range photos {
		store.objects[p.StorageKey("original")] = []byte("bytes of " + p.Filename)
	}
	svc := newBundleService(staticSource{photos: photos}, store, 0)

	bundle, err := svc.Build(context.Background(), []int64{2, 3, 2})

	require.NoError(t, err)
	assert.Equal(t, 2, bundle.PhotoCount)
	assert.True(t, strings.HasPrefix(bundle.Key, "bundles/bnd_"))
	assert.True(t, strings.HasSuffix(bundle.Key, ".zip"))
	assert.Equal(t, "https://r2.test/"+bundle.Key+"?ttl=1h0m0s", bundle.DownloadURL)
	assert.Equal(t, fixedNow.Add(time.Hour), bundle.ExpiresAt)

	blob := store.objects[bundle.Key]
	require.NotEmpty(t, blob)
	assert.Equal(t, int64(len(blob)), bundle.Bytes)
	zr, err := zip.NewReader(bytes.NewReader(blob), int64(len(blob)))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
	assert.Equal(t, "cake.png", zr.File[0].Name)
	assert.Equal(t, "sea.jpg", zr.File[1].Name)
}

func TestBundleService_Errors(t *testing.T) {
	photos := samplePhotos()
	seeded := func() *memoryStore {
		s := newMemoryStore()
		for _, p := range photos {
			s.objects[p.StorageKey("original")] = []byte("0123456789")
		}
		return s
	}

	tests := []struct {
		name     string
		source   photo.Source
		store    func() *memoryStore
		maxBytes int64
		ids      []int64
		kind     archive.BundlingErrorKind
		status   int
	}{
		{
			name:   "empty ids",
			source: staticSource{photos: photos},
			store:  seeded,
			ids:    nil,
			kind:   archive.BundlingValidation,
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown id",
			source: staticSource{photos: photos},
			store:  seeded,
			ids:    []int64{1, 99},
			kind:   archive.BundlingValidation,
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "catalog down",
			source: staticSource{err: errors.New("connection refused")},
			store:  seeded,
			ids:    []int64{1},
			kind:   archive.BundlingUnavailable,
			status: http.StatusBadGateway,
		},
		{
			name:   "missing object",
			source: staticSource{photos: photos},
			store:  newMemoryStore,
			ids:    []int64{1},
			kind:   archive.BundlingUnavailable,
			status: http.StatusBadGateway,
		},
		{
			name:     "object too large",
			source:   staticSource{photos: photos},
			store:    seeded,
			maxBytes: 4,
			ids:      []int64{1},
			kind:     archive.BundlingUnavailable,
			status:   http.StatusBadGateway,
		},
		{
			name:   "upload fails",
			source: staticSource{photos: photos},
			store: func() *memoryStore {
				s := seeded()
				s.uploadErr = errors.New("bucket gone")
				return s
			},
			ids:    []int64{1},
			kind:   archive.BundlingUnavailable,
			status: http.StatusBadGateway,
		},
		{
			name:   "presign fails",
			source: staticSource{photos: photos},
			store: func() *memoryStore {
				s := seeded()
				s.presignErr = errors.New("no credentials")
				return s
			},
			ids:    []int64{1},
			kind:   archive.BundlingUnavailable,
			status: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newBundleService(tt.source, tt.store(), tt.maxBytes)

			bundle, err := svc.Build(context.Background(), tt.ids)

			assert.Nil(t, bundle)
			var be *archive.BundlingError
			require.ErrorAs(t, err, &be)
			assert.Equal(t, tt.kind, be.Kind)
			assert.Equal(t, tt.status, be.StatusCode)
		})
	}
}
