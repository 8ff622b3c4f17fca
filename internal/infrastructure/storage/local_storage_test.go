package storage_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"family-archive/archive-api/internal/config"
	"family-archive/archive-api/internal/domain/archive"
	"family-archive/archive-api/internal/infrastructure/fetcher"
	"family-archive/archive-api/internal/infrastructure/metrics"
	"family-archive/archive-api/internal/infrastructure/storage"
)

func newLocal(t *testing.T, baseURL string) (*storage.LocalStorage, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		LocalStoragePath:    dir,
		LocalStorageBaseURL: baseURL,
		S3PresignTTL:        time.Minute,
	}
	s, err := storage.NewLocalStorage(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewLocalStorage() error = %v", err)
	}
	return s, dir
}

func TestLocalStorage_RoundTrip(t *testing.T) {
	s, dir := newLocal(t, "http://localhost:8290/v1/files/")
	ctx := context.Background()
	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 32)...)

	if err := s.Upload(ctx, "original/7-cake.png", bytes.NewReader(png), int64(len(png)), "image/png"); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "original", "7-cake.png")); err != nil {
		t.Fatalf("expected file on disk: %v", err)
	}

	rc, contentType, err := s.Download(ctx, "original/7-cake.png")
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	if !bytes.Equal(got, png) {
		t.Fatalf("Download() returned %d bytes, want %d", len(got), len(png))
	}
	if contentType != "image/png" {
		t.Errorf("content type = %q, want image/png", contentType)
	}

	auth, err := s.Authorize(ctx, archive.ObjectRef{Bucket: "images", Key: "original/7-cake.png"})
	if err != nil {
		t.Fatalf("Authorize() error = %v", err)
	}
	if auth.URL != "http://localhost:8290/v1/files/original/7-cake.png" {
		t.Errorf("Authorize() url = %q", auth.URL)
	}
	if auth.ExpiresAt.IsZero() {
		t.Error("Authorize() should set an expiry")
	}
}

func TestLocalStorage_FileURLWithoutBaseURL(t *testing.T) {
	s, _ := newLocal(t, "")
	ctx := context.Background()
	if err := s.Upload(ctx, "bundles/b.zip", strings.NewReader("zip"), 3, "application/zip"); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	url, err := s.PresignGet(ctx, "bundles/b.zip", 0)
	if err != nil {
		t.Fatalf("PresignGet() error = %v", err)
	}
	if !strings.HasPrefix(url, "file://") || !strings.HasSuffix(url, "bundles/b.zip") {
		t.Errorf("PresignGet() = %q, want file url", url)
	}
}

func TestLocalStorage_MissingAndInvalidKeys(t *testing.T) {
	s, _ := newLocal(t, "")
	ctx := context.Background()

	if _, _, err := s.Download(ctx, "original/404-none.jpg"); !errors.Is(err, storage.ErrObjectNotFound) {
		t.Errorf("Download() error = %v, want ErrObjectNotFound", err)
	}
	if _, err := s.Authorize(ctx, archive.ObjectRef{Key: "original/404-none.jpg"}); !errors.Is(err, storage.ErrObjectNotFound) {
		t.Errorf("Authorize() error = %v, want ErrObjectNotFound", err)
	}
	if _, _, err := s.Download(ctx, ""); err == nil {
		t.Error("Download() of empty key should fail")
	}
}

func TestLocalStorage_KeysStayInsideBasePath(t *testing.T) {
	s, dir := newLocal(t, "")
	ctx := context.Background()

	if err := s.Upload(ctx, "../../escape.txt", strings.NewReader("x"), 1, "text/plain"); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "escape.txt")); err != nil {
		t.Errorf("traversal key should be confined to the storage directory: %v", err)
	}
}

func TestLocalStorage_Disabled(t *testing.T) {
	s, err := storage.NewLocalStorage(&config.Config{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewLocalStorage() error = %v", err)
	}
	if err := s.Health(context.Background()); err != nil {
		t.Errorf("Health() on disabled storage = %v", err)
	}
	if _, _, err := s.Download(context.Background(), "a"); err == nil {
		t.Error("Download() on disabled storage should fail")
	}
}

var awkwardKeys = []string{
	"original/5-plain.jpg",
	"original/6-img#1.jpg",
	"original/7-100%.jpg",
	"original/8-what?.jpg",
	"original/9-two words.jpg",
}

func TestLocalStorage_AuthorizedURLsFetchAwkwardNames(t *testing.T) {
	ctx := context.Background()
	f := fetcher.New(time.Second, 0, zerolog.Nop())

	t.Run("file url", func(t *testing.T) {
		s, _ := newLocal(t, "")
		for _, key := range awkwardKeys {
			body := "bytes of " + key
			if err := s.Upload(ctx, key, strings.NewReader(body), int64(len(body)), "image/jpeg"); err != nil {
				t.Fatalf("Upload(%q) error = %v", key, err)
			}
			auth, err := s.Authorize(ctx, archive.ObjectRef{Key: key})
			if err != nil {
				t.Fatalf("Authorize(%q) error = %v", key, err)
			}
			got, err := f.Fetch(ctx, auth.URL)
			if err != nil {
				t.Fatalf("Fetch(%q) error = %v", auth.URL, err)
			}
			if string(got) != body {
				t.Errorf("Fetch(%q) = %q, want %q", auth.URL, got, body)
			}
		}
	})

	t.Run("base url", func(t *testing.T) {
		var s *storage.LocalStorage
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rc, _, err := s.Download(r.Context(), strings.TrimPrefix(r.URL.Path, "/v1/files/"))
			if err != nil {
				http.NotFound(w, r)
				return
			}
			defer rc.Close()
			_, _ = io.Copy(w, rc)
		}))
		defer srv.Close()

		s, _ = newLocal(t, srv.URL+"/v1/files")
		for _, key := range awkwardKeys {
			body := "bytes of " + key
			if err := s.Upload(ctx, key, strings.NewReader(body), int64(len(body)), "image/jpeg"); err != nil {
				t.Fatalf("Upload(%q) error = %v", key, err)
			}
			auth, err := s.Authorize(ctx, archive.ObjectRef{Key: key})
			if err != nil {
				t.Fatalf("Authorize(%q) error = %v", key, err)
			}
			got, err := f.Fetch(ctx, auth.URL)
			if err != nil {
				t.Fatalf("Fetch(%q) error = %v", auth.URL, err)
			}
			if string(got) != body {
				t.Errorf("Fetch(%q) = %q, want %q", auth.URL, got, body)
			}
		}
	})
}

func TestLocalStorage_RecordsOperationMetrics(t *testing.T) {
	s, _ := newLocal(t, "")
	ctx := context.Background()
	count := func(op, status string) float64 {
		return testutil.ToFloat64(metrics.StorageOperationsTotal.WithLabelValues(op, status))
	}
	puts, gets, presigns, misses := count("put", "success"), count("get", "success"), count("presign", "success"), count("get", "error")

	if err := s.Upload(ctx, "original/1-a.jpg", strings.NewReader("a"), 1, "image/jpeg"); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	rc, _, err := s.Download(ctx, "original/1-a.jpg")
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	rc.Close()
	if _, err := s.PresignGet(ctx, "original/1-a.jpg", time.Minute); err != nil {
		t.Fatalf("PresignGet() error = %v", err)
	}
	if _, _, err := s.Download(ctx, "original/404.jpg"); err == nil {
		t.Fatal("Download() of missing key should fail")
	}

	if got := count("put", "success") - puts; got != 1 {
		t.Errorf("put successes = %v, want 1", got)
	}
	if got := count("get", "success") - gets; got != 1 {
		t.Errorf("get successes = %v, want 1", got)
	}
	if got := count("presign", "success") - presigns; got != 1 {
		t.Errorf("presign successes = %v, want 1", got)
	}
	if got := count("get", "error") - misses; got != 1 {
		t.Errorf("get errors = %v, want 1", got)
	}
}
