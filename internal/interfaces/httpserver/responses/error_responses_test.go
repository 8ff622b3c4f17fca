package responses_test

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"family-archive/archive-api/internal/domain/archive"
	"family-archive/archive-api/internal/interfaces/httpserver/responses"
)

func TestHandleError_LogsServerSideFailures(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
		logged bool
	}{
		{name: "empty selection", err: archive.ErrEmptySelection, status: http.StatusBadRequest, logged: false},
		{name: "assembly failure", err: &archive.AssemblyError{Entry: "a.jpg", Err: errors.New("disk full")}, status: http.StatusInternalServerError, logged: true},
		{name: "fetch failure", err: &archive.FetchError{PhotoID: 3, Err: errors.New("reset")}, status: http.StatusBadGateway, logged: true},
		{name: "unclassified", err: errors.New("boom"), status: http.StatusInternalServerError, logged: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := zerolog.New(&buf)

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			req := httptest.NewRequest(http.MethodPost, "/v1/archive/exports", nil)
			c.Request = req.WithContext(logger.WithContext(req.Context()))

			responses.HandleError(c, tt.err, "export failed")

			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			gotLogged := strings.Contains(buf.String(), "error_uuid")
			if gotLogged != tt.logged {
				t.Errorf("logged = %v, want %v (log: %q)", gotLogged, tt.logged, buf.String())
			}
		})
	}
}
