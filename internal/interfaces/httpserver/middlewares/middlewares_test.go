package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"family-archive/archive-api/internal/interfaces/httpserver/middlewares"
	"family-archive/archive-api/internal/utils/platformerrors"
)

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(middlewares.RequestID(), middlewares.CORS(), middlewares.Metrics(), middlewares.RequestLoggerWithLogger(zerolog.Nop()))
	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"gin":     middlewares.GetRequestID(c),
			"context": platformerrors.RequestIDFromContext(c.Request.Context()),
		})
	})
	return engine
}

func TestRequestID_Propagated(t *testing.T) {
	engine := newEngine()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(middlewares.RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()

	engine.ServeHTTP(w, req)

	if got := w.Header().Get(middlewares.RequestIDHeader); got != "abc-123" {
		t.Errorf("response header = %q", got)
	}
	want := `{"context":"abc-123","gin":"abc-123"}`
	if w.Body.String() != want {
		t.Errorf("body = %s, want %s", w.Body.String(), want)
	}
}

func TestRequestID_Generated(t *testing.T) {
	engine := newEngine()
	w := httptest.NewRecorder()

	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if len(w.Header().Get(middlewares.RequestIDHeader)) != 36 {
		t.Errorf("expected generated uuid, got %q", w.Header().Get(middlewares.RequestIDHeader))
	}
}

func TestCORS_Preflight(t *testing.T) {
	engine := newEngine()
	engine.OPTIONS("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	w := httptest.NewRecorder()

	engine.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/ping", nil))

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
	if w.Header().Get("Access-Control-Expose-Headers") != "X-Request-ID, Content-Length, Content-Disposition" {
		t.Errorf("expose headers = %q", w.Header().Get("Access-Control-Expose-Headers"))
	}
	if w.Header().Get("Access-Control-Max-Age") != "43200" {
		t.Errorf("max age = %q", w.Header().Get("Access-Control-Max-Age"))
	}
}
