// Package restclient sends JSON requests to the model provider APIs and Qdrant.
//
// Every adapter that talks HTTP shares this client so that request encoding,
// auth headers, timeouts and error bodies are handled in one place. Provider
// specific request and response shapes stay in the adapters.
package restclient

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

// DefaultTimeout applies when Config.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// maxErrorText caps how much of an unstructured error body ends up in an error.
const maxErrorText = 512

// Config holds configuration for a Client.
type Config struct {
	// BaseURL is prefixed to every request path. A trailing slash is dropped.
	BaseURL string

	// Timeout bounds each request including reading the body.
	Timeout time.Duration

	// Header is sent with every request, e.g. authorization.
	Header map[string]string
}

// Client is a JSON-over-HTTP client bound to one base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	header     http.Header
}

// New creates a Client. No request is made.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	header := make(http.Header, len(cfg.Header)+1)
	header.Set("Accept", "application/json")
	for k, v := range cfg.Header {
		header.Set(k, v)
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		header:     header,
	}
}

// BaseURL returns the normalised base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// StatusError reports a response outside the 2xx range.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int

	// Message is the provider's error message when the body carried one,
	// otherwise the start of the raw body.
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// StatusCode returns the HTTP status carried by err, or 0 when err is not a StatusError.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// Get sends a GET and decodes the body into out when out is non-nil.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post sends body as JSON and decodes the answer into out when out is non-nil.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Put sends body as JSON and decodes the answer into out when out is non-nil.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

// Do performs one request. A nil body sends no payload.
// Non-2xx answers are returned as *StatusError.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	for k, v := range c.header {
		req.Header[k] = v
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read response: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(data),
		}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

// CloseIdleConnections releases pooled connections.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// errorMessage pulls a message out of the error shapes the providers use:
// {"error":{"message":...}} (OpenAI, Anthropic), {"error":"..."} (Ollama)
// and {"status":{"error":"..."}} (Qdrant).
func errorMessage(body []byte) string {
	var shaped struct {
		Error   json.RawMessage `json:"error"`
		Status  json.RawMessage `json:"status"`
		Message string          `json:"message"`
	}
	if json.Unmarshal(body, &shaped) == nil {
		if msg := messageFrom(shaped.Error); msg != "" {
			return msg
		}
		if msg := messageFrom(shaped.Status); msg != "" {
			return msg
		}
		if shaped.Message != "" {
			return shaped.Message
		}
	}

	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorText {
		text = text[:maxErrorText] + "..."
	}
	return text
}

func messageFrom(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &obj) == nil {
		if obj.Message != "" {
			return obj.Message
		}
		return obj.Error
	}
	return ""
}
