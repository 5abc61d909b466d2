// Package apiclient is a typed client for the ScholarVault REST API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"scholarvault/internal/auth"
	"scholarvault/internal/domain"
	"scholarvault/internal/httputil"

	"github.com/google/uuid"
)

const (
	// DefaultTimeout applies to every JSON request
	DefaultTimeout = 30 * time.Second
	// DefaultUploadTimeout applies to multipart uploads, which include
	// server-side metadata extraction
	DefaultUploadTimeout = 5 * time.Minute

	// maxResponseBody caps how much of a response is read
	maxResponseBody = 32 << 20
)

// Client talks to the ScholarVault API. The bearer token is taken from the
// session carried in each call's context.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	uploadClient *http.Client
	logger       *slog.Logger
}

// New creates a client for baseURL. Zero timeouts select the defaults.
func New(baseURL string, timeout, uploadTimeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if uploadTimeout <= 0 {
		uploadTimeout = DefaultUploadTimeout
	}
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{Timeout: timeout},
		uploadClient: &http.Client{Timeout: uploadTimeout},
		logger:       logger,
	}
}

// call describes one API request
type call struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	public      bool   // no bearer token required
	upload      bool   // use the upload client
	fallback    string // error message when the server gives none
	out         any    // decoded on success when non-nil
}

// jsonBody encodes v for a call body
func jsonBody(v any) (io.Reader, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return bytes.NewReader(payload), nil
}

func (c *Client) do(ctx context.Context, cl call) error {
	token := auth.TokenFrom(ctx)
	if !cl.public && token == "" {
		return fmt.Errorf("%w: %s requires a session", domain.ErrUnauthorized, cl.path)
	}

	target := c.baseURL + cl.path
	if len(cl.query) > 0 {
		target += "?" + cl.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, target, cl.body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	requestID := httputil.RequestIDFrom(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set(httputil.RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if cl.contentType != "" {
		req.Header.Set("Content-Type", cl.contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := c.httpClient
	if cl.upload {
		client = c.uploadClient
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		c.logger.Warn("api request failed",
			"method", cl.method,
			"path", cl.path,
			"request_id", requestID,
			"error", err,
		)
		return fmt.Errorf("%s %s: %w", cl.method, cl.path, err)
	}
	defer func() { _ = resp.Body.Close() }() // Error ignored: response consumed

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("api request",
		"method", cl.method,
		"path", cl.path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return remoteError(cl, resp.StatusCode, body)
	}

	if cl.out == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, cl.out); err != nil {
		return fmt.Errorf("failed to parse response from %s: %w", cl.path, err)
	}
	return nil
}

// errorBody is the API's error envelope
type errorBody struct {
	Error string `json:"error"`
}

func remoteError(cl call, status int, body []byte) error {
	message := cl.fallback
	var eb errorBody
	if json.Unmarshal(body, &eb) == nil && eb.Error != "" {
		message = eb.Error
	}
	return &domain.RemoteRequestError{
		Method:  cl.method,
		Path:    cl.path,
		Status:  status,
		Message: message,
	}
}

// pathID checks that an id is a UUID before it is interpolated into a path
func pathID(resource, id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", &domain.ValidationError{Message: fmt.Sprintf("invalid %s id %q", resource, id)}
	}
	return parsed.String(), nil
}

// Health checks that the API is reachable
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/health",
		public:   true,
		fallback: "API health check failed",
	})
}
