package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"family-archive/archive-api/internal/domain/archiveview"
	"family-archive/archive-api/internal/interfaces/httpserver/requests"
	"family-archive/archive-api/internal/interfaces/httpserver/responses"
	"family-archive/archive-api/internal/utils/platformerrors"
)

// ArchiveHandler exposes bucket navigation, views and exports.
type ArchiveHandler struct {
	service *archiveview.Service
	log     zerolog.Logger
}

func NewArchiveHandler(service *archiveview.Service, log zerolog.Logger) *ArchiveHandler {
	return &ArchiveHandler{
		service: service,
		log:     log.With().Str("component", "archive-handler").Logger(),
	}
}

// ListBuckets godoc
// @Summary      List buckets
// @Description  Rolling buckets, calendar months and calendar years with photo counts, newest first.
// @Tags         archive
// @Produce      json
// @Success      200  {object}  responses.NavigationResponse
// @Failure      502  {object}  responses.ErrorResponse
// @Router       /v1/archive/buckets [get]
func (h *ArchiveHandler) ListBuckets(c *gin.Context) {
	nav, err := h.service.Navigation(c.Request.Context())
	if err != nil {
		responses.HandleError(c, err, "failed to load catalog")
		return
	}
	c.JSON(http.StatusOK, responses.NewNavigationResponse(nav.Rolling, nav.Months, nav.Years))
}

// GetBucket godoc
// @Summary      Get bucket
// @Tags         archive
// @Produce      json
// @Param        key  path      string  true  "Bucket key, e.g. recent, month, 2024-09, year-2024"
// @Success      200  {object}  responses.BucketResponse
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /v1/archive/buckets/{key} [get]
func (h *ArchiveHandler) GetBucket(c *gin.Context) {
	bucket, err := h.service.Bucket(c.Request.Context(), c.Param("key"))
	if err != nil {
		responses.HandleError(c, err, "bucket not found")
		return
	}
	c.JSON(http.StatusOK, responses.NewBucketResponse(bucket))
}

// CreateView godoc
// @Summary      Open an archive view
// @Description  New views show the recent bucket with nothing selected.
// @Tags         views
// @Produce      json
// @Success      201  {object}  selection.Snapshot
// @Router       /v1/archive/views [post]
func (h *ArchiveHandler) CreateView(c *gin.Context) {
	c.JSON(http.StatusCreated, h.service.CreateView())
}

// GetView godoc
// @Summary      Get view
// @Tags         views
// @Produce      json
// @Param        id   path      string  true  "View id"
// @Success      200  {object}  selection.Snapshot
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /v1/archive/views/{id} [get]
func (h *ArchiveHandler) GetView(c *gin.Context) {
	snap, err := h.service.View(c.Param("id"))
	if err != nil {
		responses.HandleError(c, err, "view not found")
		return
	}
	c.JSON(http.StatusOK, snap)
}

// DeleteView godoc
// @Summary      Close view
// @Tags         views
// @Param        id  path  string  true  "View id"
// @Success      204
// @Router       /v1/archive/views/{id} [delete]
func (h *ArchiveHandler) DeleteView(c *gin.Context) {
	h.service.CloseView(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// SetBucket godoc
// @Summary      Change the view's bucket
// @Description  Switching buckets always clears the selection.
// @Tags         views
// @Accept       json
// @Produce      json
// @Param        id       path      string                     true  "View id"
// @Param        request  body      requests.SetBucketRequest  true  "Bucket key"
// @Success      200      {object}  selection.Snapshot
// @Failure      404      {object}  responses.ErrorResponse
// @Router       /v1/archive/views/{id}/bucket [put]
func (h *ArchiveHandler) SetBucket(c *gin.Context) {
	var req requests.SetBucketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "key is required", "1b2c3d4e-5f60-4718-a293-b4c5d6e7f801")
		return
	}
	snap, err := h.service.SetBucket(c.Request.Context(), c.Param("id"), req.Key)
	if err != nil {
		responses.HandleError(c, err, "failed to change bucket")
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Select godoc
// @Summary      Select a photo
// @Tags         views
// @Produce      json
// @Param        id        path      string  true  "View id"
// @Param        photo_id  path      int     true  "Photo id"
// @Success      200       {object}  selection.Snapshot
// @Router       /v1/archive/views/{id}/selection/{photo_id} [post]
func (h *ArchiveHandler) Select(c *gin.Context) {
	photoID, ok := photoIDParam(c)
	if !ok {
		return
	}
	snap, err := h.service.Select(c.Param("id"), photoID)
	if err != nil {
		responses.HandleError(c, err, "failed to select photo")
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Deselect godoc
// @Summary      Deselect a photo
// @Tags         views
// @Produce      json
// @Param        id        path      string  true  "View id"
// @Param        photo_id  path      int     true  "Photo id"
// @Success      200       {object}  selection.Snapshot
// @Router       /v1/archive/views/{id}/selection/{photo_id} [delete]
func (h *ArchiveHandler) Deselect(c *gin.Context) {
	photoID, ok := photoIDParam(c)
	if !ok {
		return
	}
	snap, err := h.service.Deselect(c.Param("id"), photoID)
	if err != nil {
		responses.HandleError(c, err, "failed to deselect photo")
		return
	}
	c.JSON(http.StatusOK, snap)
}

// SelectAll godoc
// @Summary      Select every photo of the current bucket
// @Tags         views
// @Produce      json
// @Param        id   path      string  true  "View id"
// @Success      200  {object}  selection.Snapshot
// @Router       /v1/archive/views/{id}/selection/all [post]
func (h *ArchiveHandler) SelectAll(c *gin.Context) {
	snap, err := h.service.SelectAll(c.Request.Context(), c.Param("id"))
	if err != nil {
		responses.HandleError(c, err, "failed to select bucket")
		return
	}
	c.JSON(http.StatusOK, snap)
}

// ClearSelection godoc
// @Summary      Clear the selection
// @Tags         views
// @Produce      json
// @Param        id   path      string  true  "View id"
// @Success      200  {object}  selection.Snapshot
// @Router       /v1/archive/views/{id}/selection [delete]
func (h *ArchiveHandler) ClearSelection(c *gin.Context) {
	snap, err := h.service.Clear(c.Param("id"))
	if err != nil {
		responses.HandleError(c, err, "failed to clear selection")
		return
	}
	c.JSON(http.StatusOK, snap)
}

// ExportView godoc
// @Summary      Export the view's selection
// @Description  Tries the bundling service first and assembles the archive locally when it is unavailable. A successful export clears the selection.
// @Tags         exports
// @Produce      json
// @Param        id   path      string  true  "View id"
// @Success      200  {object}  responses.ExportResponse
// @Failure      400  {object}  responses.ErrorResponse
// @Failure      502  {object}  responses.ErrorResponse
// @Router       /v1/archive/views/{id}/export [post]
func (h *ArchiveHandler) ExportView(c *gin.Context) {
	result, err := h.service.ExportView(c.Request.Context(), c.Param("id"))
	if err != nil {
		responses.HandleError(c, err, "export failed")
		return
	}
	c.JSON(http.StatusOK, responses.NewExportResponse(result))
}

// Export godoc
// @Summary      Export photos by id
// @Tags         exports
// @Accept       json
// @Produce      json
// @Param        request  body      requests.ImageIDsRequest  true  "Photo ids"
// @Success      200      {object}  responses.ExportResponse
// @Failure      400      {object}  responses.ErrorResponse
// @Router       /v1/archive/exports [post]
func (h *ArchiveHandler) Export(c *gin.Context) {
	var req requests.ImageIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid request body", "2c3d4e5f-6071-4829-b3a4-c5d6e7f80912")
		return
	}
	result, err := h.service.ExportIDs(c.Request.Context(), req.ImageIDs)
	if err != nil {
		responses.HandleError(c, err, "export failed")
		return
	}
	c.JSON(http.StatusOK, responses.NewExportResponse(result))
}

func photoIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("photo_id"), 10, 64)
	if err != nil || id <= 0 {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "photo_id must be a positive integer", "3d4e5f60-7182-493a-c4b5-d6e7f8091a23")
		return 0, false
	}
	return id, true
}
