package handlers

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"family-archive/archive-api/internal/infrastructure/handles"
	"family-archive/archive-api/internal/interfaces/httpserver/responses"
)

// DownloadHandler hands out locally assembled archives.
type DownloadHandler struct {
	registry *handles.Registry
	log      zerolog.Logger
}

func NewDownloadHandler(registry *handles.Registry, log zerolog.Logger) *DownloadHandler {
	return &DownloadHandler{
		registry: registry,
		log:      log.With().Str("component", "download-handler").Logger(),
	}
}

// Download godoc
// @Summary      Download a locally assembled archive
// @Description  Each handle can be downloaded once; it is released afterwards.
// @Tags         exports
// @Produce      application/zip
// @Param        handle  path  string  true  "Handle id"
// @Success      200
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /v1/archive/downloads/{handle} [get]
func (h *DownloadHandler) Download(c *gin.Context) {
	handle, data, err := h.registry.Take(c.Param("handle"))
	if err != nil {
		responses.HandleError(c, err, "download not found")
		return
	}
	defer handle.Release()

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": handle.Filename}))
	c.Header("Content-Length", strconv.Itoa(len(data)))
	c.Data(http.StatusOK, "application/zip", data)

	h.log.Info().Str("handle_id", handle.ID).Int("bytes", len(data)).Msg("archive downloaded")
}

// Release godoc
// @Summary      Discard a locally assembled archive
// @Tags         exports
// @Param        handle  path  string  true  "Handle id"
// @Success      204
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /v1/archive/downloads/{handle} [delete]
func (h *DownloadHandler) Release(c *gin.Context) {
	if err := h.registry.Release(c.Param("handle")); err != nil {
		responses.HandleError(c, err, "download not found")
		return
	}
	c.Status(http.StatusNoContent)
}
