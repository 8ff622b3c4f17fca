// Package period groups catalog photos into named, overlapping time buckets.
package period

import (
	"fmt"
	"sort"
	"time"

	"family-archive/archive-api/internal/domain/photo"
)

const (
	// KeyRecent is the rolling bucket of the last seven days.
	KeyRecent = "recent"
	// KeyMonth is the rolling bucket of the last calendar month.
	KeyMonth = "month"

	yearKeyPrefix = "year-"
	recentDays    = 7
)

// Kind tells rolling buckets apart from calendar buckets.
type Kind string

const (
	KindRecent        Kind = "recent"
	KindLastMonth     Kind = "last_month"
	KindCalendarMonth Kind = "calendar_month"
	KindCalendarYear  Kind = "calendar_year"
)

// Bucket is a derived view over a subset of photos.
type Bucket struct {
	Key    string        `json:"key"`
	Name   string        `json:"name"`
	Kind   Kind          `json:"kind"`
	Year   int           `json:"year,omitempty"`
	Month  time.Month    `json:"month,omitempty"`
	Photos []photo.Photo `json:"photos"`
}

// IDs returns the ids of the bucket's photos in bucket order.
func (b Bucket) IDs() []int64 {
	ids := make([]int64, len(b.Photos))
	for i, p := range b.Photos {
		ids[i] = p.ID
	}
	return ids
}

// Buckets maps bucket keys to buckets for one computation.
type Buckets map[string]Bucket

// Get returns the bucket stored under key.
func (b Buckets) Get(key string) (Bucket, bool) {
	bucket, ok := b[key]
	return bucket, ok
}

// Rolling returns the recent and last-month buckets, in that order.
func (b Buckets) Rolling() []Bucket {
	out := make([]Bucket, 0, 2)
	for _, key := range []string{KeyRecent, KeyMonth} {
		if bucket, ok := b[key]; ok {
			out = append(out, bucket)
		}
	}
	return out
}

// Months returns calendar month buckets, newest first.
func (b Buckets) Months() []Bucket {
	return b.sortedKind(KindCalendarMonth)
}

// Years returns calendar year buckets, newest first.
func (b Buckets) Years() []Bucket {
	return b.sortedKind(KindCalendarYear)
}

func (b Buckets) sortedKind(kind Kind) []Bucket {
	out := make([]Bucket, 0, len(b))
	for _, bucket := range b {
		if bucket.Kind == kind {
			out = append(out, bucket)
		}
	}
	sortNewestFirst(out)
	return out
}

func sortNewestFirst(buckets []Bucket) {
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Year != buckets[j].Year {
			return buckets[i].Year > buckets[j].Year
		}
		return buckets[i].Month > buckets[j].Month
	})
}

// MonthKey returns the key of a calendar month bucket. Months are zero padded
// so that lexical and chronological order agree.
func MonthKey(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

// YearKey returns the key of a calendar year bucket.
func YearKey(year int) string {
	return fmt.Sprintf("%s%d", yearKeyPrefix, year)
}

// Grouper computes buckets. It holds no state besides its settings and is safe
// for concurrent use.
type Grouper struct {
	loc    *time.Location
	labels Labels
}

// NewGrouper creates a grouper that reads calendar fields in loc.
func NewGrouper(loc *time.Location, labels Labels) *Grouper {
	if loc == nil {
		loc = time.UTC
	}
	return &Grouper{loc: loc, labels: labels}
}

// ComputeBuckets partitions photos into the rolling buckets plus one bucket per
// populated calendar month and year. The rolling buckets are always present,
// possibly empty.
func (g *Grouper) ComputeBuckets(photos []photo.Photo, now time.Time) Buckets {
	now = now.In(g.loc)
	buckets := make(Buckets)

	// Rolling windows step back calendar days and months at the same wall
	// clock time in the catalog zone, so across a DST change the recent window
	// is 7x24h plus or minus an hour.
	buckets[KeyRecent] = Bucket{
		Key:    KeyRecent,
		Name:   g.labels.Recent,
		Kind:   KindRecent,
		Photos: InRange(photos, now.AddDate(0, 0, -recentDays), now),
	}
	buckets[KeyMonth] = Bucket{
		Key:    KeyMonth,
		Name:   g.labels.LastMonth,
		Kind:   KindLastMonth,
		Photos: InRange(photos, now.AddDate(0, -1, 0), now),
	}

	for _, bucket := range g.groupByMonth(photos) {
		buckets[bucket.Key] = bucket
	}
	for _, bucket := range g.groupByYear(photos) {
		buckets[bucket.Key] = bucket
	}
	return buckets
}

// SortedMonths returns the calendar month buckets of photos, newest first.
func (g *Grouper) SortedMonths(photos []photo.Photo) []Bucket {
	out := g.groupByMonth(photos)
	sortNewestFirst(out)
	return out
}

// SortedYears returns the calendar year buckets of photos, newest first.
func (g *Grouper) SortedYears(photos []photo.Photo) []Bucket {
	out := g.groupByYear(photos)
	sortNewestFirst(out)
	return out
}

func (g *Grouper) groupByMonth(photos []photo.Photo) []Bucket {
	index := make(map[string]int)
	var out []Bucket
	for _, p := range photos {
		created := p.CreatedAt.In(g.loc)
		year, month := created.Year(), created.Month()
		key := MonthKey(year, month)
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, Bucket{
				Key:   key,
				Name:  g.labels.MonthName(year, month),
				Kind:  KindCalendarMonth,
				Year:  year,
				Month: month,
			})
		}
		out[i].Photos = append(out[i].Photos, p)
	}
	return out
}

func (g *Grouper) groupByYear(photos []photo.Photo) []Bucket {
	index := make(map[int]int)
	var out []Bucket
	for _, p := range photos {
		year := p.CreatedAt.In(g.loc).Year()
		i, ok := index[year]
		if !ok {
			i = len(out)
			index[year] = i
			out = append(out, Bucket{
				Key:  YearKey(year),
				Name: g.labels.YearName(year),
				Kind: KindCalendarYear,
				Year: year,
			})
		}
		out[i].Photos = append(out[i].Photos, p)
	}
	return out
}

// InRange returns the photos created within [from, to], both ends inclusive,
// in input order.
func InRange(photos []photo.Photo, from, to time.Time) []photo.Photo {
	out := make([]photo.Photo, 0)
	for _, p := range photos {
		if p.CreatedAt.Before(from) || p.CreatedAt.After(to) {
			continue
		}
		out = append(out, p)
	}
	return out
}
