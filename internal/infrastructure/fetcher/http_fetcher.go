// Package fetcher downloads object bytes behind retrieval URLs.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// ErrTooLarge is returned when an object exceeds the configured size cap.
var ErrTooLarge = errors.New("object exceeds size limit")

// StatusError is a non-2xx answer from object storage.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("object fetch returned %s", e.Status)
}

// HTTPFetcher implements archive.ObjectFetcher. Besides http(s) it reads
// file:// URLs produced by local storage.
type HTTPFetcher struct {
	httpClient *resty.Client
	maxBytes   int64
	log        zerolog.Logger
}

// New creates a fetcher. maxBytes <= 0 disables the size cap.
func New(timeout time.Duration, maxBytes int64, log zerolog.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		httpClient: resty.New().SetTimeout(timeout),
		maxBytes:   maxBytes,
		log:        log.With().Str("component", "object-fetcher").Logger(),
	}
}

// Fetch returns the full body behind rawURL.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse object url: %w", err)
	}
	switch u.Scheme {
	case "http", "https":
		return f.fetchHTTP(ctx, rawURL)
	case "file":
		return f.fetchFile(u.Path)
	default:
		return nil, fmt.Errorf("unsupported object url scheme %q", u.Scheme)
	}
}

func (f *HTTPFetcher) fetchHTTP(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := f.httpClient.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(rawURL)
	if err != nil {
		return nil, err
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.IsError() {
		f.log.Debug().Int("status", resp.StatusCode()).Str("host", resp.RawResponse.Request.URL.Host).Msg("object fetch rejected")
		return nil, &StatusError{StatusCode: resp.StatusCode(), Status: resp.Status()}
	}
	if f.maxBytes > 0 && resp.RawResponse.ContentLength > f.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes announced", ErrTooLarge, resp.RawResponse.ContentLength)
	}
	return f.readCapped(body)
}

func (f *HTTPFetcher) fetchFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return f.readCapped(file)
}

func (f *HTTPFetcher) readCapped(r io.Reader) ([]byte, error) {
	if f.maxBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, f.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > f.maxBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}
