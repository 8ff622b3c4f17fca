// Package selection tracks which photos of the visible bucket are marked for export.
package selection

// Store is an ordered set of photo ids. It remembers the order in which ids were
// selected. A Store is not safe for concurrent use; callers serialise access.
type Store struct {
	order []int64
	index map[int64]struct{}
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{index: make(map[int64]struct{})}
}

// Select adds id if it is absent.
func (s *Store) Select(id int64) {
	if _, ok := s.index[id]; ok {
		return
	}
	s.index[id] = struct{}{}
	s.order = append(s.order, id)
}

// Deselect removes id if present.
func (s *Store) Deselect(id int64) {
	if _, ok := s.index[id]; !ok {
		return
	}
	delete(s.index, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// SelectAll replaces the selection with exactly ids.
func (s *Store) SelectAll(ids []int64) {
	s.Clear()
	for _, id := range ids {
		s.Select(id)
	}
}

// Clear empties the selection.
func (s *Store) Clear() {
	s.order = nil
	s.index = make(map[int64]struct{})
}

// OnBucketChanged drops every selection. Selections never survive a bucket change.
func (s *Store) OnBucketChanged() {
	s.Clear()
}

// Contains reports whether id is selected.
func (s *Store) Contains(id int64) bool {
	_, ok := s.index[id]
	return ok
}

// Len returns the number of selected ids.
func (s *Store) Len() int {
	return len(s.order)
}

// IDs returns a copy of the selected ids in selection order.
func (s *Store) IDs() []int64 {
	out := make([]int64, len(s.order))
	copy(out, s.order)
	return out
}
