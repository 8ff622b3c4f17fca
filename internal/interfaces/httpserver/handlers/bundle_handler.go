package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"family-archive/archive-api/internal/domain/archive"
	"family-archive/archive-api/internal/interfaces/httpserver/requests"
	"family-archive/archive-api/internal/interfaces/httpserver/responses"
	"family-archive/archive-api/internal/utils/platformerrors"
)

// BundleHandler serves the bundling endpoint other exporters call first.
type BundleHandler struct {
	service *archive.BundleService
	log     zerolog.Logger
}

func NewBundleHandler(service *archive.BundleService, log zerolog.Logger) *BundleHandler {
	return &BundleHandler{
		service: service,
		log:     log.With().Str("component", "bundle-handler").Logger(),
	}
}

// Create godoc
// @Summary      Build an archive in storage
// @Description  Zips the requested photos into one stored object and returns a presigned download URL.
// @Tags         bundles
// @Accept       json
// @Produce      json
// @Param        request  body      requests.ImageIDsRequest  true  "Photo ids"
// @Success      201      {object}  responses.BundleResponse
// @Failure      400      {object}  responses.ErrorResponse
// @Failure      422      {object}  responses.ErrorResponse
// @Failure      502      {object}  responses.ErrorResponse
// @Router       /v1/archive/bundles [post]
func (h *BundleHandler) Create(c *gin.Context) {
	var req requests.ImageIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid request body", "4e5f6071-8293-4a4b-d5c6-e7f8091a2b34")
		return
	}
	bundle, err := h.service.Build(c.Request.Context(), req.ImageIDs)
	if err != nil {
		h.log.Warn().Err(err).Int("photos", len(req.ImageIDs)).Msg("bundle request failed")
		responses.HandleError(c, err, "bundle failed")
		return
	}
	c.JSON(http.StatusCreated, responses.NewBundleResponse(bundle))
}
