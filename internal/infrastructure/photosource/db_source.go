package photosource

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"family-archive/archive-api/internal/domain/photo"
	"family-archive/archive-api/internal/infrastructure/database/entities"
	"family-archive/archive-api/internal/utils/platformerrors"
)

// DBSource reads the catalog straight from the photo backend's database.
type DBSource struct {
	db  *gorm.DB
	loc *time.Location
	log zerolog.Logger
}

// NewDBSource creates a read-only catalog source.
func NewDBSource(db *gorm.DB, loc *time.Location, log zerolog.Logger) *DBSource {
	return &DBSource{
		db:  db,
		loc: loc,
		log: log.With().Str("component", "db-photo-source").Logger(),
	}
}

// List returns every image, newest first.
func (s *DBSource) List(ctx context.Context) ([]photo.Photo, error) {
	var rows []entities.Image
	if err := s.db.WithContext(ctx).
		Select("id", "name", "description", "filename", "original_path", "status", "created_at").
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to list images", err, "1d6c1f2e-7a44-4b7e-9f0a-3c2d5e85b610")
	}

	photos := make([]photo.Photo, len(rows))
	for i, row := range rows {
		photos[i] = row.ToPhoto(s.loc)
	}
	s.log.Debug().Int("count", len(photos)).Msg("catalog loaded from database")
	return photos, nil
}
