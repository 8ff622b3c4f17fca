// Package bundling talks to the server-side archive bundling endpoint.
package bundling

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"family-archive/archive-api/internal/domain/archive"
)

// BundlePath is the route of the bundling endpoint under the base URL.
const BundlePath = "/v1/archive/bundles"

// Client implements archive.Bundler over HTTP.
type Client struct {
	httpClient *resty.Client
	enabled    bool
}

// NewClient constructs the bundling client. An empty baseURL produces a client
// that always reports the service as unavailable.
func NewClient(baseURL string, timeout time.Duration) *Client {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	return &Client{
		httpClient: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
		enabled: baseURL != "",
	}
}

type bundleRequest struct {
	ImageIDs []int64 `json:"imageIds"`
}

type bundleResponse struct {
	DownloadURL string `json:"downloadUrl"`
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// RequestBundle asks the service to build an archive of ids and returns its
// download URL.
func (c *Client) RequestBundle(ctx context.Context, ids []int64) (string, error) {
	if !c.enabled {
		return "", archive.NewBundlingUnavailableError(0, "bundling endpoint not configured", nil)
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(bundleRequest{ImageIDs: ids}).
		Post(BundlePath)
	if err != nil {
		return "", archive.NewBundlingUnavailableError(0, "request failed", err)
	}

	status := resp.StatusCode()
	if resp.IsError() {
		msg := errorMessage(resp.Body())
		if isValidationStatus(status) {
			return "", archive.NewBundlingValidationError(status, msg)
		}
		return "", archive.NewBundlingUnavailableError(status, msg, nil)
	}

	var out bundleResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", archive.NewBundlingUnavailableError(status, "malformed response", err)
	}
	if strings.TrimSpace(out.DownloadURL) == "" {
		return "", archive.NewBundlingUnavailableError(status, "response carries no downloadUrl", nil)
	}
	return out.DownloadURL, nil
}

// isValidationStatus lists responses that mean the request itself was rejected.
// Anything else (404 from a deployment without the route, 429, 5xx) is treated
// as the service being unavailable.
func isValidationStatus(status int) bool {
	switch status {
	case http.StatusBadRequest,
		http.StatusUnauthorized,
		http.StatusForbidden,
		http.StatusConflict,
		http.StatusRequestEntityTooLarge,
		http.StatusUnprocessableEntity:
		return true
	}
	return false
}

func errorMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		if eb.Message != "" {
			return eb.Message
		}
		if eb.Error != "" {
			return eb.Error
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
