package responses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"family-archive/archive-api/internal/domain/archive"
	"family-archive/archive-api/internal/domain/archiveview"
	"family-archive/archive-api/internal/domain/selection"
	"family-archive/archive-api/internal/infrastructure/handles"
	"family-archive/archive-api/internal/utils/platformerrors"
)

// ErrorResponse represents an error response with platform error details
type ErrorResponse struct {
	Code      string `json:"code"`
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// HandleError turns err into a JSON error response. Domain errors are
// classified first; anything unrecognised is a 500 carrying message.
func HandleError(reqCtx *gin.Context, err error, message string) {
	platformErr := classify(reqCtx, err, message)
	statusCode := platformerrors.ErrorTypeToHTTPStatus(platformErr.Type)

	var be *archive.BundlingError
	if errors.As(err, &be) && be.Kind == archive.BundlingValidation && be.StatusCode >= 400 && be.StatusCode < 500 {
		statusCode = be.StatusCode
	}
	if statusCode >= http.StatusInternalServerError {
		platformerrors.LogError(*zerolog.Ctx(reqCtx.Request.Context()), platformErr)
	}

	errorMessage := platformErr.Message
	if errorMessage == "" {
		errorMessage = message
	}
	reqCtx.AbortWithStatusJSON(statusCode, ErrorResponse{
		Code:      platformErr.UUID,
		Error:     errorMessage,
		Message:   errorDetail(err, errorMessage),
		RequestID: platformErr.RequestID,
	})
}

// HandleNewError creates a new typed error at the route layer and handles it
func HandleNewError(reqCtx *gin.Context, errorType platformerrors.ErrorType, message string, uuid string) {
	err := platformerrors.NewError(reqCtx.Request.Context(), platformerrors.LayerRoute, errorType, message, nil, uuid)
	reqCtx.AbortWithStatusJSON(platformerrors.ErrorTypeToHTTPStatus(errorType), ErrorResponse{
		Code:      err.UUID,
		Error:     message,
		Message:   message,
		RequestID: err.RequestID,
	})
}

func classify(reqCtx *gin.Context, err error, message string) *platformerrors.PlatformError {
	if platformErr, ok := platformerrors.AsPlatformError(err); ok {
		return platformErr
	}

	ctx := reqCtx.Request.Context()
	newErr := func(errorType platformerrors.ErrorType, uuid string) *platformerrors.PlatformError {
		return platformerrors.NewError(ctx, platformerrors.LayerHandler, errorType, message, err, uuid)
	}

	var (
		bundlingErr *archive.BundlingError
		authErr     *archive.AuthorizationError
		fetchErr    *archive.FetchError
		assemblyErr *archive.AssemblyError
	)
	switch {
	case errors.Is(err, archive.ErrEmptySelection):
		return newErr(platformerrors.ErrorTypeValidation, "8f1c2b6e-0d4a-4c1e-9b7a-2e5f3d6c8a10")
	case errors.Is(err, selection.ErrViewNotFound),
		errors.Is(err, archiveview.ErrBucketNotFound),
		errors.Is(err, handles.ErrHandleNotFound):
		return newErr(platformerrors.ErrorTypeNotFound, "3a7d9e21-5b6c-4f80-a1d2-7c8e9f0b1a23")
	case errors.As(err, &bundlingErr):
		if bundlingErr.Kind == archive.BundlingValidation {
			return newErr(platformerrors.ErrorTypeValidation, "b4e6f8a0-2c3d-4e5f-8a9b-0c1d2e3f4a56")
		}
		return newErr(platformerrors.ErrorTypeExternal, "c5f7a9b1-3d4e-4f60-9b0c-1d2e3f4a5b67")
	case errors.As(err, &authErr), errors.As(err, &fetchErr):
		return newErr(platformerrors.ErrorTypeExternal, "d6a8b0c2-4e5f-4071-8c1d-2e3f4a5b6c78")
	case errors.As(err, &assemblyErr):
		return newErr(platformerrors.ErrorTypeInternal, "e7b9c1d3-5f60-4182-9d2e-3f4a5b6c7d89")
	default:
		return newErr(platformerrors.ErrorTypeInternal, "")
	}
}

func errorDetail(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	return err.Error()
}

// NotFound is the JSON body for unknown routes.
func NotFound(reqCtx *gin.Context) {
	reqCtx.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{Error: "route not found"})
}
