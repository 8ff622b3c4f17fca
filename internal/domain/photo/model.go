package photo

import (
	"context"
	"fmt"
	"time"
)

// Photo is a catalog record owned by the external photo store. The archive
// subsystem only reads it.
type Photo struct {
	ID          int64     `json:"id"`
	Filename    string    `json:"filename"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Source lists the photos of the catalog.
type Source interface {
	List(ctx context.Context) ([]Photo, error)
}

// StorageKey returns the object key of the original upload under prefix.
func (p Photo) StorageKey(prefix string) string {
	if prefix == "" {
		return fmt.Sprintf("%d-%s", p.ID, p.Filename)
	}
	return fmt.Sprintf("%s/%d-%s", prefix, p.ID, p.Filename)
}

// Index maps photo ids to records.
func Index(photos []Photo) map[int64]Photo {
	out := make(map[int64]Photo, len(photos))
	for _, p := range photos {
		out[p.ID] = p
	}
	return out
}

// Pick returns the photos whose ids appear in ids, in the order of ids.
// Unknown ids are skipped.
func Pick(photos []Photo, ids []int64) []Photo {
	index := Index(photos)
	out := make([]Photo, 0, len(ids))
	for _, id := range ids {
		if p, ok := index[id]; ok {
			out = append(out, p)
		}
	}
	return out
}
