package keboola

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// storageBasePath is the Storage API path prefix appended to the base URL.
const storageBasePath = "/v2/storage"

// defaultTimeout bounds a single metadata request.
const defaultTimeout = 30 * time.Second

// tokenHeader carries the Storage API token on every request.
const tokenHeader = "X-StorageApi-Token"

// APIError is returned when the Storage API responds with a non-2xx status.
// The API's own message is preserved so callers see the remote failure
// unchanged.
type APIError struct {
	StatusCode int
	Message    string
	RequestID  string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("storage api: %s (status %d)", e.Message, e.StatusCode)
}

// apiErrorBody is the error envelope the Storage API returns.
type apiErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Client is a Keboola Storage API client. It is safe for concurrent use;
// each call issues one independent HTTP request.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger overrides the client logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient creates a Storage API client.
func NewClient(baseURL, token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("storage token is required")
	}
	if baseURL == "" {
		return nil, fmt.Errorf("storage API URL is required")
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: defaultTimeout},
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get issues a GET against a Storage API path (relative to /v2/storage) and
// decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	reqURL := c.baseURL + storageBasePath + "/" + strings.TrimLeft(path, "/")
	requestID := uuid.NewString()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set(tokenHeader, c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)

	c.log.Debug("storage api request", "path", path, "request_id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("storage api request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return c.apiError(resp, requestID)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response for %s: %w", path, err)
	}
	return nil
}

// apiError builds an APIError from a non-2xx response, falling back to the
// HTTP status text when the body is not the usual error envelope.
func (c *Client) apiError(resp *http.Response, requestID string) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var envelope apiErrorBody
	message := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != "" {
		message = envelope.Error
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	c.log.Debug("storage api error",
		"status", resp.StatusCode,
		"message", message,
		"request_id", requestID,
	)

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    message,
		RequestID:  requestID,
	}
}

// ListBuckets returns all buckets in the project.
func (c *Client) ListBuckets(ctx context.Context) ([]Bucket, error) {
	var buckets []Bucket
	if err := c.Get(ctx, "buckets", &buckets); err != nil {
		return nil, err
	}
	return buckets, nil
}

// GetBucket returns one bucket's detail.
func (c *Client) GetBucket(ctx context.Context, bucketID string) (*Bucket, error) {
	var bucket Bucket
	if err := c.Get(ctx, "buckets/"+url.PathEscape(bucketID), &bucket); err != nil {
		return nil, err
	}
	return &bucket, nil
}

// ListBucketTables returns all tables in a bucket.
func (c *Client) ListBucketTables(ctx context.Context, bucketID string) ([]Table, error) {
	var tables []Table
	if err := c.Get(ctx, "buckets/"+url.PathEscape(bucketID)+"/tables", &tables); err != nil {
		return nil, err
	}
	return tables, nil
}

// GetTable returns one table's descriptor.
func (c *Client) GetTable(ctx context.Context, tableID string) (*Table, error) {
	var table Table
	if err := c.Get(ctx, "tables/"+url.PathEscape(tableID), &table); err != nil {
		return nil, err
	}
	return &table, nil
}

// ListComponents returns all components available to the project.
func (c *Client) ListComponents(ctx context.Context) ([]Component, error) {
	var components []Component
	if err := c.Get(ctx, "components", &components); err != nil {
		return nil, err
	}
	return components, nil
}

// ListComponentConfigs returns all configurations of a component.
func (c *Client) ListComponentConfigs(ctx context.Context, componentID string) ([]ComponentConfig, error) {
	var configs []ComponentConfig
	if err := c.Get(ctx, "components/"+url.PathEscape(componentID)+"/configs", &configs); err != nil {
		return nil, err
	}
	return configs, nil
}
