// Package rest implements tracker.Client over the tracker's JSON REST API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tobyfield/glint/internal/retry"
)

// DefaultEndpoint is the hosted tracker API root.
const DefaultEndpoint = "https://api.glintapp.dev/v1"

// APIError carries the HTTP status of a failed tracker call so callers can
// classify it (429/5xx transient, 401 configuration).
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tracker API returned %d: %s", e.StatusCode, e.Body)
}

// HTTPStatus exposes the status code for retry classification.
func (e *APIError) HTTPStatus() int { return e.StatusCode }

// Client provides HTTP access to the tracker.
type Client struct {
	Endpoint   string
	APIKey     string
	HTTPClient *http.Client

	retryOpts retry.Options
}

// NewClient creates a tracker client against the default endpoint.
func NewClient(apiKey string) *Client {
	return &Client{
		Endpoint: DefaultEndpoint,
		APIKey:   apiKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		retryOpts: retry.DefaultOptions(),
	}
}

// WithEndpoint overrides the API endpoint (self-hosted instances, tests).
func (c *Client) WithEndpoint(endpoint string) *Client {
	c.Endpoint = strings.TrimSuffix(endpoint, "/")
	return c
}

// WithRetryOptions overrides the retry tuning for GET requests.
func (c *Client) WithRetryOptions(opts retry.Options) *Client {
	c.retryOpts = opts
	return c
}

func (c *Client) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	if c.APIKey == "" {
		return nil, fmt.Errorf("tracker API key not configured")
	}

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.Endpoint+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "glint/1.0")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	return respBody, nil
}

// getJSON retries transient failures; GETs are idempotent. Writes go
// through doRequest directly and are attempted exactly once.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	body, err := retry.Do(ctx, c.retryOpts, func() ([]byte, error) {
		return c.doRequest(ctx, http.MethodGet, path, nil)
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", path, err)
	}
	body, err := c.doRequest(ctx, http.MethodPost, path, payload)
	if err != nil {
		return err
	}
	if out == nil || body == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func escapePath(id string) string {
	return url.PathEscape(id)
}
