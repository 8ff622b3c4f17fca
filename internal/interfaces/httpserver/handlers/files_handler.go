package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"family-archive/archive-api/internal/domain/archive"
	"family-archive/archive-api/internal/infrastructure/storage"
	"family-archive/archive-api/internal/interfaces/httpserver/responses"
	"family-archive/archive-api/internal/utils/platformerrors"
)

// FilesHandler serves objects of the local storage backend, the target of
// its retrieval URLs.
type FilesHandler struct {
	store archive.ObjectStore
	log   zerolog.Logger
}

func NewFilesHandler(store archive.ObjectStore, log zerolog.Logger) *FilesHandler {
	return &FilesHandler{
		store: store,
		log:   log.With().Str("component", "files-handler").Logger(),
	}
}

// Get godoc
// @Summary      Read a stored object
// @Tags         files
// @Produce      octet-stream
// @Param        key  path  string  true  "Object key"
// @Success      200
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /v1/files/{key} [get]
func (h *FilesHandler) Get(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	reader, contentType, err := h.store.Download(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			responses.HandleNewError(c, platformerrors.ErrorTypeNotFound, "object not found", "5f607182-93a4-4b5c-e6d7-f8091a2b3c45")
			return
		}
		responses.HandleError(c, err, "failed to read object")
		return
	}
	defer reader.Close()

	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		h.log.Warn().Err(err).Str("key", key).Msg("object stream interrupted")
	}
}
