package selection_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"family-archive/archive-api/internal/domain/selection"
)

func TestStore_SelectIsIdempotent(t *testing.T) {
	s := selection.NewStore()
	s.Select(5)
	s.Select(5)
	s.Select(2)

	assert.Equal(t, []int64{5, 2}, s.IDs())
	assert.True(t, s.Contains(5))
	assert.False(t, s.Contains(7))
}

func TestStore_SelectAllThenDeselect(t *testing.T) {
	s := selection.NewStore()
	s.Select(99)

	s.SelectAll([]int64{1, 2, 3, 4})
	require.Equal(t, 4, s.Len())
	assert.False(t, s.Contains(99), "select all must overwrite, not union")

	s.Deselect(3)
	assert.Equal(t, 3, s.Len())

	s.Deselect(42)
	assert.Equal(t, []int64{1, 2, 4}, s.IDs())
	assert.False(t, s.Contains(3))
}

func TestStore_OnBucketChangedAlwaysClears(t *testing.T) {
	for _, size := range []int{0, 1, 25} {
		s := selection.NewStore()
		for i := 0; i < size; i++ {
			s.Select(int64(i))
		}
		s.OnBucketChanged()
		assert.Zero(t, s.Len())
		assert.Empty(t, s.IDs())
	}
}

func TestStore_IDsReturnsCopy(t *testing.T) {
	s := selection.NewStore()
	s.Select(1)
	got := s.IDs()
	got[0] = 100
	assert.Equal(t, []int64{1}, s.IDs())
}

func TestRegistry_Lifecycle(t *testing.T) {
	clock := time.Date(2026, time.October, 14, 12, 0, 0, 0, time.UTC)
	r := selection.NewRegistry("recent", func() time.Time { return clock })

	created := r.Create()
	assert.Equal(t, "recent", created.BucketKey)
	assert.Empty(t, created.Selected)

	snap, err := r.Update(created.ID, func(v *selection.View) error {
		v.Selection.Select(1)
		v.Selection.Select(2)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, snap.Selected)

	snap, err = r.Update(created.ID, func(v *selection.View) error {
		v.SetBucket("year-2025")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "year-2025", snap.BucketKey)
	assert.Empty(t, snap.Selected)

	_, err = r.Get("view_unknown")
	assert.True(t, errors.Is(err, selection.ErrViewNotFound))
}

func TestRegistry_UpdateErrorIsReturned(t *testing.T) {
	r := selection.NewRegistry("recent", nil)
	view := r.Create()
	boom := errors.New("boom")

	_, err := r.Update(view.ID, func(v *selection.View) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestRegistry_EvictIdle(t *testing.T) {
	clock := time.Date(2026, time.October, 14, 12, 0, 0, 0, time.UTC)
	r := selection.NewRegistry("recent", func() time.Time { return clock })

	stale := r.Create()
	clock = clock.Add(3 * time.Hour)
	fresh := r.Create()

	assert.Equal(t, 1, r.EvictIdle(2*time.Hour))
	_, err := r.Get(stale.ID)
	assert.ErrorIs(t, err, selection.ErrViewNotFound)
	_, err = r.Get(fresh.ID)
	assert.NoError(t, err)
	assert.Equal(t, 1, r.Len())
}
