package entities

import (
	"time"

	"family-archive/archive-api/internal/domain/photo"
)

// Image mirrors the photo backend's images table. Only the columns the
// archive needs are mapped.
type Image struct {
	ID           int64     `gorm:"column:id;primaryKey"`
	Name         string    `gorm:"column:name"`
	Description  string    `gorm:"column:description"`
	Filename     string    `gorm:"column:filename"`
	OriginalPath string    `gorm:"column:original_path"`
	Status       string    `gorm:"column:status"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (Image) TableName() string {
	return "images"
}

// ToPhoto converts the row into a catalog record. created_at is a naive
// TIMESTAMP column; its wall clock is re-read in loc.
func (i Image) ToPhoto(loc *time.Location) photo.Photo {
	created := i.CreatedAt
	if loc != nil && !created.IsZero() {
		created = time.Date(created.Year(), created.Month(), created.Day(),
			created.Hour(), created.Minute(), created.Second(), created.Nanosecond(), loc)
	}
	return photo.Photo{
		ID:          i.ID,
		Filename:    i.Filename,
		Name:        i.Name,
		Description: i.Description,
		CreatedAt:   created,
	}
}
