package responses

import (
	"time"

	"family-archive/archive-api/internal/domain/archive"
	"family-archive/archive-api/internal/domain/period"
	"family-archive/archive-api/internal/domain/photo"
)

// DownloadPathPrefix is where locally assembled archives are fetched.
const DownloadPathPrefix = "/v1/archive/downloads/"

// BucketSummary is a bucket without its photos.
type BucketSummary struct {
	Key   string      `json:"key"`
	Name  string      `json:"name"`
	Kind  period.Kind `json:"kind"`
	Count int         `json:"count"`
}

// NavigationResponse lists every bucket of the archive screen.
type NavigationResponse struct {
	Rolling []BucketSummary `json:"rolling"`
	Months  []BucketSummary `json:"months"`
	Years   []BucketSummary `json:"years"`
}

// BucketResponse is one bucket with its photos.
type BucketResponse struct {
	BucketSummary
	Photos []photo.Photo `json:"photos"`
}

// ExportResponse is the outcome of an export. A server bundle carries
// download_url; a local archive carries handle_id and its download path.
type ExportResponse struct {
	State        archive.State `json:"state"`
	Filename     string        `json:"filename"`
	PhotoCount   int           `json:"photo_count"`
	DownloadURL  string        `json:"download_url,omitempty"`
	HandleID     string        `json:"handle_id,omitempty"`
	DownloadPath string        `json:"download_path,omitempty"`
	Size         int64         `json:"size,omitempty"`
	CreatedAt    *time.Time    `json:"created_at,omitempty"`
}

// BundleResponse is the server-side bundler answer.
type BundleResponse struct {
	ID          string    `json:"id"`
	DownloadURL string    `json:"downloadUrl"`
	PhotoCount  int       `json:"photoCount"`
	Bytes       int64     `json:"bytes"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

func NewBucketSummary(b period.Bucket) BucketSummary {
	return BucketSummary{Key: b.Key, Name: b.Name, Kind: b.Kind, Count: len(b.Photos)}
}

func summaries(buckets []period.Bucket) []BucketSummary {
	out := make([]BucketSummary, len(buckets))
	for i, b := range buckets {
		out[i] = NewBucketSummary(b)
	}
	return out
}

func NewNavigationResponse(rolling, months, years []period.Bucket) NavigationResponse {
	return NavigationResponse{
		Rolling: summaries(rolling),
		Months:  summaries(months),
		Years:   summaries(years),
	}
}

func NewBucketResponse(b period.Bucket) BucketResponse {
	photos := b.Photos
	if photos == nil {
		photos = []photo.Photo{}
	}
	return BucketResponse{BucketSummary: NewBucketSummary(b), Photos: photos}
}

func NewExportResponse(r *archive.Result) ExportResponse {
	resp := ExportResponse{
		State:       r.State,
		Filename:    r.Filename,
		PhotoCount:  r.PhotoCount,
		DownloadURL: r.DownloadURL,
	}
	if r.Handle != nil {
		created := r.Handle.CreatedAt
		resp.HandleID = r.Handle.ID
		resp.DownloadPath = DownloadPathPrefix + r.Handle.ID
		resp.Size = r.Handle.Size
		resp.CreatedAt = &created
	}
	return resp
}

func NewBundleResponse(b *archive.Bundle) BundleResponse {
	return BundleResponse{
		ID:          b.ID,
		DownloadURL: b.DownloadURL,
		PhotoCount:  b.PhotoCount,
		Bytes:       b.Bytes,
		ExpiresAt:   b.ExpiresAt,
	}
}
