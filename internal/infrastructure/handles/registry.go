// Package handles keeps locally assembled archives in memory until they are
// downloaded or released.
package handles

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"family-archive/archive-api/internal/domain/archive"
	"family-archive/archive-api/internal/infrastructure/metrics"
	"family-archive/archive-api/internal/utils/archiveid"
)

// ErrHandleNotFound is returned for unknown, released or already downloaded handles.
var ErrHandleNotFound = errors.New("download handle not found")

type entry struct {
	handle *archive.Handle
	data   []byte
}

// Registry implements archive.HandleIssuer.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
	log     zerolog.Logger
}

// NewRegistry creates an empty handle registry.
func NewRegistry(now func() time.Time, log zerolog.Logger) *Registry {
	if now == nil {
		now = time.Now
	}
	return &Registry{
		entries: make(map[string]*entry),
		now:     now,
		log:     log.With().Str("component", "handle-registry").Logger(),
	}
}

// Issue stores data and returns a handle whose Release drops it.
func (r *Registry) Issue(ctx context.Context, data []byte, filename string) (*archive.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id := archiveid.NewHandle()
	handle := archive.NewHandle(id, filename, int64(len(data)), r.now(), func() { r.drop(id) })

	r.mu.Lock()
	r.entries[id] = &entry{handle: handle, data: data}
	count := len(r.entries)
	r.mu.Unlock()

	metrics.OpenHandles.Set(float64(count))
	r.log.Debug().Str("handle_id", id).Int("bytes", len(data)).Msg("handle issued")
	return handle, nil
}

// Take hands the archive out once. Later calls for the same id fail with
// ErrHandleNotFound. The caller releases the returned handle when done.
func (r *Registry) Take(id string) (*archive.Handle, []byte, error) {
	r.mu.Lock()
	e, ok := r.entries[id]
	if ok {
		delete(r.entries, id)
	}
	count := len(r.entries)
	r.mu.Unlock()

	if !ok {
		return nil, nil, ErrHandleNotFound
	}
	metrics.OpenHandles.Set(float64(count))
	return e.handle, e.data, nil
}

// Release frees a handle without downloading it.
func (r *Registry) Release(id string) error {
	r.mu.Lock()
	e, ok := r.entries[id]
	r.mu.Unlock()
	if !ok {
		return ErrHandleNotFound
	}
	e.handle.Release()
	return nil
}

// Sweep releases handles issued more than maxAge ago and returns how many
// were freed.
func (r *Registry) Sweep(maxAge time.Duration) int {
	cutoff := r.now().Add(-maxAge)

	r.mu.Lock()
	var stale []*archive.Handle
	for _, e := range r.entries {
		if e.handle.CreatedAt.Before(cutoff) {
			stale = append(stale, e.handle)
		}
	}
	r.mu.Unlock()

	for _, h := range stale {
		h.Release()
	}
	if len(stale) > 0 {
		r.log.Info().Int("released", len(stale)).Msg("abandoned handles released")
	}
	return len(stale)
}

// Len returns the number of handles waiting to be downloaded.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) drop(id string) {
	r.mu.Lock()
	delete(r.entries, id)
	count := len(r.entries)
	r.mu.Unlock()
	metrics.OpenHandles.Set(float64(count))
}

var _ archive.HandleIssuer = (*Registry)(nil)
