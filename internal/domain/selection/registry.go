package selection

import (
	"errors"
	"sync"
	"time"

	"family-archive/archive-api/internal/utils/archiveid"
)

// ErrViewNotFound is returned for unknown or evicted view ids.
var ErrViewNotFound = errors.New("archive view not found")

// View is one on-screen archive view: the active bucket and its selection.
type View struct {
	ID        string
	BucketKey string
	Selection *Store
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SetBucket switches the active bucket. The selection is cleared even when the
// key does not change.
func (v *View) SetBucket(key string) {
	v.BucketKey = key
	v.Selection.OnBucketChanged()
}

// Snapshot is a read-only copy of a view.
type Snapshot struct {
	ID        string    `json:"id"`
	BucketKey string    `json:"bucket_key"`
	Selected  []int64   `json:"selected"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (v *View) snapshot() Snapshot {
	return Snapshot{
		ID:        v.ID,
		BucketKey: v.BucketKey,
		Selected:  v.Selection.IDs(),
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

// Registry keeps views in memory. Views are never persisted.
type Registry struct {
	mu         sync.Mutex
	views      map[string]*View
	defaultKey string
	now        func() time.Time
}

// NewRegistry creates a registry whose new views open on defaultKey.
func NewRegistry(defaultKey string, now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	return &Registry{
		views:      make(map[string]*View),
		defaultKey: defaultKey,
		now:        now,
	}
}

// Create opens a new view on the default bucket.
func (r *Registry) Create() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := r.now()
	view := &View{
		ID:        archiveid.NewView(),
		BucketKey: r.defaultKey,
		Selection: NewStore(),
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	r.views[view.ID] = view
	return view.snapshot()
}

// Get returns a snapshot of the view.
func (r *Registry) Get(id string) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	view, ok := r.views[id]
	if !ok {
		return Snapshot{}, ErrViewNotFound
	}
	return view.snapshot(), nil
}

// Update runs fn against the view while holding the registry lock and returns
// the resulting snapshot. An error from fn is returned unchanged.
func (r *Registry) Update(id string, fn func(v *View) error) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	view, ok := r.views[id]
	if !ok {
		return Snapshot{}, ErrViewNotFound
	}
	if err := fn(view); err != nil {
		return view.snapshot(), err
	}
	view.UpdatedAt = r.now()
	return view.snapshot(), nil
}

// Delete drops a view.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.views, id)
}

// EvictIdle removes views untouched for longer than idle and returns how many
// were removed.
func (r *Registry) EvictIdle(idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-idle)
	evicted := 0
	for id, view := range r.views {
		if view.UpdatedAt.Before(cutoff) {
			delete(r.views, id)
			evicted++
		}
	}
	return evicted
}

// Len returns the number of live views.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}
