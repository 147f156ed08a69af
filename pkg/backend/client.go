package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Endpoint paths on the activity API.
const (
	ActivitiesPath   = "/auth/activities"
	UploadImagesPath = "/auth/upload-images"
)

// DefaultTimeout bounds each request when the caller's context has no
// earlier deadline.
const DefaultTimeout = 15 * time.Second

const maxBodyBytes = 1 << 20

// ErrMissingCredential is returned before any request is sent when the
// session credential is empty.
var ErrMissingCredential = errors.New("backend: credential is required")

// StatusError reports a non-2xx response. Body holds the raw response text.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithTimeout bounds each request. Zero disables the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout >= 0 {
			c.timeout = timeout
		}
	}
}

// Client talks to the remote activity API.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

// New constructs a client for baseURL, e.g. "https://api.example.com/v1".
func New(baseURL string, options ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("backend: base url is required")
	}
	c := &Client{
		baseURL: baseURL,
		http:    http.DefaultClient,
		timeout: DefaultTimeout,
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

type createResponse struct {
	ID string `json:"_id"`
}

// CreateActivity posts record as JSON and returns the identifier assigned by
// the API.
func (c *Client) CreateActivity(ctx context.Context, credential string, record any) (string, error) {
	payload, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("backend: encode activity: %w", err)
	}

	body, err := c.do(ctx, credential, ActivitiesPath, "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}

	var out createResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("backend: decode create response: %w", err)
	}
	if strings.TrimSpace(out.ID) == "" {
		return "", errors.New("backend: create response has no _id")
	}
	return out.ID, nil
}

func (c *Client) do(ctx context.Context, credential, path, contentType string, payload io.Reader) ([]byte, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return nil, ErrMissingCredential
	}

	reqCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.baseURL+path, payload)
	if err != nil {
		return nil, fmt.Errorf("backend: build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+credential)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend: %s: %w", path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("backend: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}
