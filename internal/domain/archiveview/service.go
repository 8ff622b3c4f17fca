// Package archiveview drives the archive screen: bucket navigation, the
// per-view selection and exports of that selection.
package archiveview

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"family-archive/archive-api/internal/domain/archive"
	"family-archive/archive-api/internal/domain/period"
	"family-archive/archive-api/internal/domain/photo"
	"family-archive/archive-api/internal/domain/selection"
)

// ErrBucketNotFound is returned for keys that are not part of the current
// bucket computation.
var ErrBucketNotFound = errors.New("bucket not found")

// Exporter is the archive exporter as seen by views.
type Exporter interface {
	Export(ctx context.Context, photos []photo.Photo) (*archive.Result, error)
}

// Navigation is the bucket list shown next to the photo grid.
type Navigation struct {
	Rolling []period.Bucket `json:"rolling"`
	Months  []period.Bucket `json:"months"`
	Years   []period.Bucket `json:"years"`
}

// Service coordinates catalog reads, bucket computation and view state.
type Service struct {
	source   photo.Source
	grouper  *period.Grouper
	views    *selection.Registry
	exporter Exporter
	now      func() time.Time
	log      zerolog.Logger
}

// NewService wires the archive view service.
func NewService(source photo.Source, grouper *period.Grouper, views *selection.Registry, exporter Exporter, now func() time.Time, log zerolog.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		source:   source,
		grouper:  grouper,
		views:    views,
		exporter: exporter,
		now:      now,
		log:      log.With().Str("component", "archive-view").Logger(),
	}
}

// Buckets recomputes every bucket from a fresh catalog read.
func (s *Service) Buckets(ctx context.Context) (period.Buckets, []photo.Photo, error) {
	photos, err := s.source.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	return s.grouper.ComputeBuckets(photos, s.now()), photos, nil
}

// Navigation returns the ordered bucket list.
func (s *Service) Navigation(ctx context.Context) (*Navigation, error) {
	buckets, _, err := s.Buckets(ctx)
	if err != nil {
		return nil, err
	}
	return &Navigation{
		Rolling: buckets.Rolling(),
		Months:  buckets.Months(),
		Years:   buckets.Years(),
	}, nil
}

// Bucket returns one bucket with its photos.
func (s *Service) Bucket(ctx context.Context, key string) (period.Bucket, error) {
	buckets, _, err := s.Buckets(ctx)
	if err != nil {
		return period.Bucket{}, err
	}
	bucket, ok := buckets.Get(key)
	if !ok {
		return period.Bucket{}, ErrBucketNotFound
	}
	return bucket, nil
}

// CreateView opens a view on the recent bucket with an empty selection.
func (s *Service) CreateView() selection.Snapshot {
	return s.views.Create()
}

// View returns the current state of a view.
func (s *Service) View(id string) (selection.Snapshot, error) {
	return s.views.Get(id)
}

// CloseView drops a view.
func (s *Service) CloseView(id string) {
	s.views.Delete(id)
}

// SetBucket switches the view to key and clears its selection.
func (s *Service) SetBucket(ctx context.Context, id, key string) (selection.Snapshot, error) {
	if _, err := s.views.Get(id); err != nil {
		return selection.Snapshot{}, err
	}
	if _, err := s.Bucket(ctx, key); err != nil {
		return selection.Snapshot{}, err
	}
	return s.views.Update(id, func(v *selection.View) error {
		v.SetBucket(key)
		return nil
	})
}

// Select marks one photo.
func (s *Service) Select(id string, photoID int64) (selection.Snapshot, error) {
	return s.views.Update(id, func(v *selection.View) error {
		v.Selection.Select(photoID)
		return nil
	})
}

// Deselect unmarks one photo.
func (s *Service) Deselect(id string, photoID int64) (selection.Snapshot, error) {
	return s.views.Update(id, func(v *selection.View) error {
		v.Selection.Deselect(photoID)
		return nil
	})
}

// SelectAll replaces the selection with every photo of the view's bucket.
func (s *Service) SelectAll(ctx context.Context, id string) (selection.Snapshot, error) {
	snap, err := s.views.Get(id)
	if err != nil {
		return selection.Snapshot{}, err
	}
	bucket, err := s.Bucket(ctx, snap.BucketKey)
	if err != nil {
		return selection.Snapshot{}, err
	}
	ids := bucket.IDs()
	return s.views.Update(id, func(v *selection.View) error {
		if v.BucketKey != bucket.Key {
			return ErrBucketNotFound
		}
		v.Selection.SelectAll(ids)
		return nil
	})
}

// Clear empties the selection.
func (s *Service) Clear(id string) (selection.Snapshot, error) {
	return s.views.Update(id, func(v *selection.View) error {
		v.Selection.Clear()
		return nil
	})
}

// ExportView exports the view's selection in selection order. The selection is
// cleared on success and kept on failure so the user can retry. A selection
// edited while the export ran is left as the user left it.
func (s *Service) ExportView(ctx context.Context, id string) (*archive.Result, error) {
	snap, err := s.views.Get(id)
	if err != nil {
		return nil, err
	}
	if len(snap.Selected) == 0 {
		return nil, archive.ErrEmptySelection
	}

	photos, err := s.source.List(ctx)
	if err != nil {
		return nil, err
	}
	selected := photo.Pick(photos, snap.Selected)
	if len(selected) < len(snap.Selected) {
		s.log.Warn().
			Str("view_id", id).
			Int("selected", len(snap.Selected)).
			Int("found", len(selected)).
			Msg("selected photos missing from catalog")
	}

	result, err := s.exporter.Export(ctx, selected)
	if err != nil {
		return nil, err
	}

	_, err = s.views.Update(id, func(v *selection.View) error {
		if slices.Equal(v.Selection.IDs(), snap.Selected) {
			v.Selection.Clear()
		}
		return nil
	})
	if err != nil && !errors.Is(err, selection.ErrViewNotFound) {
		return nil, err
	}
	return result, nil
}

// ExportIDs exports photos by id without a view.
func (s *Service) ExportIDs(ctx context.Context, ids []int64) (*archive.Result, error) {
	if len(ids) == 0 {
		return nil, archive.ErrEmptySelection
	}
	photos, err := s.source.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.exporter.Export(ctx, photo.Pick(photos, dedupe(ids)))
}

// EvictIdle drops views untouched for longer than idle.
func (s *Service) EvictIdle(idle time.Duration) int {
	return s.views.EvictIdle(idle)
}

// LiveViews returns the number of open views.
func (s *Service) LiveViews() int {
	return s.views.Len()
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
