package archive

import (
	"context"
	"sync"
	"time"
)

// Handle references a locally assembled archive. It stays valid until Release
// is called; the caller releases it on every exit path once the download has
// been started.
type Handle struct {
	ID        string    `json:"handle_id"`
	Filename  string    `json:"filename"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`

	release     func()
	releaseOnce sync.Once
}

// NewHandle wraps an issued blob. release is invoked at most once.
func NewHandle(id, filename string, size int64, createdAt time.Time, release func()) *Handle {
	return &Handle{
		ID:        id,
		Filename:  filename,
		Size:      size,
		CreatedAt: createdAt,
		release:   release,
	}
}

// Release frees the blob behind the handle. Safe to call more than once.
func (h *Handle) Release() {
	if h == nil {
		return
	}
	h.releaseOnce.Do(func() {
		if h.release != nil {
			h.release()
		}
	})
}

// HandleIssuer turns an assembled blob into a handle.
type HandleIssuer interface {
	Issue(ctx context.Context, data []byte, filename string) (*Handle, error)
}
