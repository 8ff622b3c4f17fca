// Package photosource lists the family photo catalog, either through the
// photo backend's HTTP API or straight from its database.
package photosource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"family-archive/archive-api/internal/domain/photo"
	"family-archive/archive-api/internal/utils/platformerrors"
)

// ImagesPath is the catalog listing route under the backend base URL.
const ImagesPath = "/images"

// APISource implements photo.Source against the backend's GET /api/images.
type APISource struct {
	httpClient *resty.Client
	loc        *time.Location
	log        zerolog.Logger
}

// NewAPISource creates a catalog client. baseURL usually ends in "/api".
func NewAPISource(baseURL string, timeout time.Duration, loc *time.Location, log zerolog.Logger) *APISource {
	if loc == nil {
		loc = time.UTC
	}
	return &APISource{
		httpClient: resty.New().
			SetBaseURL(strings.TrimSuffix(strings.TrimSpace(baseURL), "/")).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
		loc: loc,
		log: log.With().Str("component", "api-photo-source").Logger(),
	}
}

type imageDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Filename    string `json:"filename"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

type listResponse struct {
	Count  int        `json:"count"`
	Images []imageDTO `json:"images"`
}

// List fetches the whole catalog.
func (s *APISource) List(ctx context.Context) ([]photo.Photo, error) {
	resp, err := s.httpClient.R().
		SetContext(ctx).
		Get(ImagesPath)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeUnavailable, "photo backend unreachable", err, "5b0f2a77-61f4-4bd6-9a43-8a9d0f1e2c31")
	}
	if resp.IsError() {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
			fmt.Sprintf("photo backend returned %d", resp.StatusCode()), nil, "0e7c6d14-3a9b-4f52-b8e1-6f4a2c9d7e08")
	}

	dtos, err := decodeImages(resp.Body())
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "malformed image list", err, "c2a9e4b1-8d7f-4e36-a051-94b3f6d2e7c5")
	}

	photos := make([]photo.Photo, 0, len(dtos))
	for _, dto := range dtos {
		created, err := photo.ParseTimestamp(dto.CreatedAt, s.loc)
		if err != nil {
			s.log.Warn().Int64("image_id", dto.ID).Str("created_at", dto.CreatedAt).Msg("skipping image with unreadable timestamp")
			continue
		}
		photos = append(photos, photo.Photo{
			ID:          dto.ID,
			Filename:    dto.Filename,
			Name:        dto.Name,
			Description: dto.Description,
			CreatedAt:   created,
		})
	}
	return photos, nil
}

// decodeImages accepts {"images": [...]} as well as a bare array.
func decodeImages(body []byte) ([]imageDTO, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var dtos []imageDTO
		if err := json.Unmarshal(trimmed, &dtos); err != nil {
			return nil, err
		}
		return dtos, nil
	}
	var out listResponse
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, err
	}
	return out.Images, nil
}
