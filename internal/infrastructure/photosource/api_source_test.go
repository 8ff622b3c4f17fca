package photosource_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"family-archive/archive-api/internal/infrastructure/photosource"
	"family-archive/archive-api/internal/utils/platformerrors"
)

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/images" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestAPISource_List(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "wrapped",
			body: `{"count":3,"images":[
				{"id":3,"filename":"sea.jpg","status":"processed","created_at":"2026-10-13 08:15:00.123456"},
				{"id":2,"filename":"dog.png","status":"uploaded","created_at":"2026-09-30T10:00:00Z"},
				{"id":1,"filename":"bad.jpg","created_at":"yesterday"}
			]}`,
		},
		{
			name: "bare array",
			body: `[
				{"id":3,"filename":"sea.jpg","created_at":"2026-10-13 08:15:00.123456"},
				{"id":2,"filename":"dog.png","created_at":"2026-09-30T10:00:00Z"},
				{"id":1,"filename":"bad.jpg","created_at":"yesterday"}
			]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := serve(t, http.StatusOK, tt.body)
			source := photosource.NewAPISource(server.URL+"/api/", time.Second, time.UTC, zerolog.Nop())

			photos, err := source.List(context.Background())
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(photos) != 2 {
				t.Fatalf("List() returned %d photos, want 2 (unreadable timestamp skipped)", len(photos))
			}
			if photos[0].ID != 3 || photos[0].Filename != "sea.jpg" {
				t.Errorf("first photo = %+v", photos[0])
			}
			want := time.Date(2026, time.October, 13, 8, 15, 0, 123456000, time.UTC)
			if !photos[0].CreatedAt.Equal(want) {
				t.Errorf("created_at = %v, want %v", photos[0].CreatedAt, want)
			}
		})
	}
}

func TestAPISource_Errors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		errorType platformerrors.ErrorType
	}{
		{"server error", http.StatusInternalServerError, `{"error":"db down"}`, platformerrors.ErrorTypeExternal},
		{"malformed", http.StatusOK, `not json`, platformerrors.ErrorTypeExternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := serve(t, tt.status, tt.body)
			source := photosource.NewAPISource(server.URL+"/api", time.Second, time.UTC, zerolog.Nop())

			_, err := source.List(context.Background())
			if !platformerrors.IsErrorType(err, tt.errorType) {
				t.Fatalf("List() error = %v, want type %s", err, tt.errorType)
			}
		})
	}
}

func TestAPISource_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := photosource.NewAPISource(url, time.Second, time.UTC, zerolog.Nop()).List(context.Background())
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeUnavailable) {
		t.Fatalf("List() error = %v, want unavailable", err)
	}
}
