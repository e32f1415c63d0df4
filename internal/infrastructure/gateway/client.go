// Package gateway is the uniform JSON-over-HTTP access layer shared by every
// entity. It injects the bearer token when one is present and turns non-2xx
// responses into *errors.TransportError.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"expopanel/internal/shared/constants"
	"expopanel/internal/shared/errors"
	"expopanel/internal/shared/logger"
)

// TokenSource supplies the current bearer token; "" means anonymous.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// Client performs requests relative to a base URL.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	logger     logger.Interface
}

// Option is a function that configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(client *Client) {
		client.httpClient.Timeout = d
	}
}

func WithLogger(log logger.Interface) Option {
	return func(client *Client) {
		client.logger = log
	}
}

// NewClient creates a client. tokens may be nil for anonymous use.
func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: constants.DefaultRequestTimeoutSeconds * time.Second,
		},
		logger: logger.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get issues GET path?query and decodes the JSON body into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	target := c.url(path)
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return c.do(ctx, http.MethodGet, path, target, nil, "", out)
}

// Post sends body as JSON. Create and update both use it; an update is
// distinguished only by the _id field in body.
func (c *Client) Post(ctx context.Context, path string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, c.url(path), bytes.NewReader(data), constants.ContentTypeJSON, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, c.url(path), nil, "", out)
}

// DeleteWithFallback tries DELETE path and, if the server rejects it,
// retries as POST fallbackPath {_id, __delete: 1}. Network failures are
// returned as is since the server never saw the request.
func (c *Client) DeleteWithFallback(ctx context.Context, path, fallbackPath string, id int64, out any) error {
	err := c.Delete(ctx, path, out)
	if err == nil {
		return nil
	}
	tErr, ok := errors.AsTransportError(err)
	if !ok {
		return err
	}

	c.logger.Debugw("delete rejected, retrying as flagged post",
		"path", path,
		"status", tErr.Status,
	)
	body := map[string]any{
		constants.IDField:         id,
		constants.DeleteFlagField: 1,
	}
	return c.Post(ctx, fallbackPath, body, out)
}

// Field is one multipart form value.
type Field struct {
	Name  string
	Value string
}

// File is the single file part of a multipart submission.
type File struct {
	Field    string
	Filename string
	Content  io.Reader
}

// PostMultipart sends fields in order followed by the file part.
func (c *Client) PostMultipart(ctx context.Context, path string, fields []Field, file *File, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return fmt.Errorf("write field %s: %w", f.Name, err)
		}
	}
	if file != nil {
		part, err := w.CreateFormFile(file.Field, file.Filename)
		if err != nil {
			return fmt.Errorf("create file part: %w", err)
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return fmt.Errorf("copy file part: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close multipart: %w", err)
	}

	return c.do(ctx, http.MethodPost, path, c.url(path), &buf, w.FormDataContentType(), out)
}

func (c *Client) url(path string) string {
	if c.baseURL == "" {
		return path
	}
	return strings.TrimRight(c.baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// do performs an HTTP request and decodes the response.
func (c *Client) do(ctx context.Context, method, path, target string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set(constants.HeaderXRequestID, requestID)
	req.Header.Set(constants.HeaderAccept, constants.ContentTypeJSON)
	if contentType != "" {
		req.Header.Set(constants.HeaderContentType, contentType)
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set(constants.HeaderAuthorization, "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	c.logger.Debugw("request completed",
		"request_id", requestID,
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &errors.TransportError{
			Method: method,
			Path:   path,
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(respBody)),
		}
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return errors.NewDecodeError(fmt.Sprintf("decode %s %s response", method, path), err)
	}
	return nil
}
