package platformerrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNewErrorCarriesRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	cause := errors.New("timeout")

	err := NewError(ctx, LayerRepository, ErrorTypeDatabaseError, "list images", cause, "u-1")

	if err.RequestID != "req-1" {
		t.Errorf("RequestID = %q", err.RequestID)
	}
	if !errors.Is(err, cause) {
		t.Error("PlatformError should unwrap to its cause")
	}
	want := "[repository][DATABASE_ERROR][u-1] list images: timeout"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIsErrorTypeThroughWrapping(t *testing.T) {
	base := NewError(context.Background(), LayerDomain, ErrorTypeNotFound, "view", nil, "u-2")
	wrapped := fmt.Errorf("handler: %w", base)

	if !IsErrorType(wrapped, ErrorTypeNotFound) {
		t.Error("IsErrorType should see through fmt.Errorf wrapping")
	}
	if IsErrorType(errors.New("plain"), ErrorTypeNotFound) {
		t.Error("plain errors have no type")
	}
}

func TestErrorTypeToHTTPStatus(t *testing.T) {
	tests := map[ErrorType]int{
		ErrorTypeNotFound:      http.StatusNotFound,
		ErrorTypeValidation:    http.StatusBadRequest,
		ErrorTypeConflict:      http.StatusConflict,
		ErrorTypeExternal:      http.StatusBadGateway,
		ErrorTypeUnavailable:   http.StatusServiceUnavailable,
		ErrorTypeDatabaseError: http.StatusInternalServerError,
		ErrorTypeInternal:      http.StatusInternalServerError,
	}
	for errorType, want := range tests {
		if got := ErrorTypeToHTTPStatus(errorType); got != want {
			t.Errorf("ErrorTypeToHTTPStatus(%s) = %d, want %d", errorType, got, want)
		}
	}
}
