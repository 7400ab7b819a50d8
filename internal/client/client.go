// ABOUTME: HTTP client for the HomelabCmd monitoring API
// ABOUTME: Wraps API calls with typed errors and user-friendly transport messages

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// apiPrefix is prepended to every endpoint path
const apiPrefix = "/api/v1"

// DefaultTimeout bounds a single request when no other timeout is configured
const DefaultTimeout = 30 * time.Second

// Client is the API client for the HomelabCmd backend
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithAPIKey sends key in the X-API-Key header
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger logs every request through a LoggingTransport
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.httpClient.Transport = NewLoggingTransport(c.httpClient.Transport, logger)
	}
}

// New creates a new API client with the given base URL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend URL the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ErrorResponse represents an API error body
type ErrorResponse struct {
	Error   string `json:"error"`
	Detail  string `json:"detail,omitempty"`
	Details string `json:"details,omitempty"`
	Code    int    `json:"code"`
}

// APIError is returned for any non-2xx response
type APIError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend error: %s", e.Message)
}

// Conflict reports a 409, e.g. an action that is already pending
func (e *APIError) Conflict() bool {
	return e.StatusCode == http.StatusConflict
}

// NotFound reports a 404
func (e *APIError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsNotFound reports whether err is a 404 from the backend
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.NotFound()
}

// IsConflict reports whether err is a 409 from the backend
func IsConflict(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Conflict()
}

// ListParams carries list filters and the page window. A zero Limit fetches everything.
type ListParams struct {
	Filters map[string]string
	Limit   int
	Offset  int
}

// filterParams maps filter keys to backend query parameter names
var filterParams = map[string]string{
	"server": "server_id",
	"q":      "search",
}

func (p ListParams) query() url.Values {
	q := url.Values{}
	for k, v := range p.Filters {
		if v == "" {
			continue
		}
		if mapped, ok := filterParams[k]; ok {
			k = mapped
		}
		q.Set(k, v)
	}
	if p.Limit > 0 {
		q.Set("limit", fmt.Sprint(p.Limit))
		q.Set("offset", fmt.Sprint(p.Offset))
	}
	return q
}

// ListResponse is a normalized list page
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// do sends a request and decodes the JSON response into out (when non-nil)
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	resp, err := c.send(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid response from backend: %w", err)
	}
	return nil
}

// send issues the request and returns the response for 2xx statuses only
func (c *Client) send(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, error) {
	endpoint := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal input: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.handleRequestError(ctx, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, c.handleErrorResponse(resp)
	}
	return resp, nil
}

// handleRequestError converts context errors to user-friendly messages
func (c *Client) handleRequestError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("request canceled")
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("request timed out")
	}
	return fmt.Errorf("cannot connect to backend at %s: %w", c.baseURL, err)
}

// handleErrorResponse parses API error responses
func (c *Client) handleErrorResponse(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var errResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		return apiErr
	}
	apiErr.Message = errResp.Error
	if apiErr.Message == "" {
		apiErr.Message = errResp.Detail
	}
	apiErr.Details = errResp.Details
	return apiErr
}

// post sends a mutation and decodes the returned entity. Responses without a body
// (204 or empty) yield a nil entity.
func post[T any](ctx context.Context, c *Client, path string, body any) (*T, error) {
	resp, err := c.send(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("invalid response from backend: %w", err)
	}
	return &out, nil
}

// list fetches a collection endpoint. The backend may wrap items under "items" or
// under a resource-specific key, or return a bare array.
func list[T any](ctx context.Context, c *Client, path, key string, params ListParams) (*ListResponse[T], error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, params.query(), nil, &raw); err != nil {
		return nil, err
	}
	page, err := decodeList[T](raw, key)
	if err != nil {
		return nil, fmt.Errorf("invalid response from backend: %w", err)
	}
	return page, nil
}

func decodeList[T any](raw json.RawMessage, key string) (*ListResponse[T], error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		return &ListResponse[T]{Items: items, Total: len(items)}, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, err
	}

	page := &ListResponse[T]{}
	itemsRaw, ok := envelope["items"]
	if !ok {
		itemsRaw, ok = envelope[key]
	}
	if ok {
		if err := json.Unmarshal(itemsRaw, &page.Items); err != nil {
			return nil, err
		}
	}
	if totalRaw, ok := envelope["total"]; ok {
		if err := json.Unmarshal(totalRaw, &page.Total); err != nil {
			return nil, err
		}
	}
	if page.Total < len(page.Items) {
		page.Total = len(page.Items)
	}
	return page, nil
}

// HealthResponse represents the health endpoint response
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Database string `json:"database"`
	Uptime   int64  `json:"uptime_seconds"`
}

// Health calls the health endpoint
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	if err := c.do(ctx, http.MethodGet, "/system/health", nil, nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}
