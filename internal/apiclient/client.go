package apiclient

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
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// TokenSource supplies the bearer token for outbound calls.
type TokenSource interface {
	AccessToken() string
}

// Recorder observes every completed backend call.
type Recorder interface {
	RecordAPIRequest(method, route string, status int, d time.Duration)
}

// Client talks to the society-management backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	recorder   Recorder

	mu     sync.RWMutex
	tokens TokenSource
}

type Option func(*Client)

// WithHTTPClient replaces the default traced client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithRecorder(r Recorder) Option {
	return func(c *Client) { c.recorder = r }
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// New creates a Client rooted at baseURL.
func New(baseURL string, timeout time.Duration, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger.With("component", "apiclient"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetTokenSource swaps the token source after construction.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.mu.Lock()
	c.tokens = ts
	c.mu.Unlock()
}

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.tokens == nil {
		return ""
	}
	return c.tokens.AccessToken()
}

func (c *Client) BaseURL() string { return c.baseURL }

// Do sends one request and decodes a 2xx JSON body into out (if non-nil).
// fieldKeys names the payload fields whose errors take precedence in the
// returned *Error message. There is no retry.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any, fieldKeys ...string) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.record(method, path, 0, elapsed)
		c.logger.Warn("backend request failed",
			"method", method, "path", path, "request_id", requestID, "error", err)
		return &Error{Kind: KindNetwork, Message: networkMessage(err), Err: err}
	}
	defer resp.Body.Close()

	c.record(method, path, resp.StatusCode, elapsed)
	c.logger.Debug("backend request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", elapsed.Milliseconds(),
		"request_id", requestID,
	)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindNetwork, Status: resp.StatusCode, Message: networkMessage(err), Err: err}
	}

	if resp.StatusCode >= 400 {
		return decodeError(resp.StatusCode, data, fieldKeys)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Kind: KindServer, Status: resp.StatusCode, Message: "unexpected response from server", Err: err}
	}
	return nil
}

func (c *Client) record(method, path string, status int, d time.Duration) {
	if c.recorder != nil {
		c.recorder.RecordAPIRequest(method, Route(path), status, d)
	}
}

func networkMessage(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "request cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	}
	return "unable to reach server"
}

// Route replaces numeric path segments with {id} so metrics stay bounded.
func Route(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if p != "" && strings.Trim(p, "0123456789") == "" {
			parts[i] = "{id}"
		}
	}
	return strings.Join(parts, "/")
}

// ItemPath returns base + id + "/", e.g. ItemPath("/plots/", 4) == "/plots/4/".
func ItemPath(base string, id int) string {
	return fmt.Sprintf("%s%d/", base, id)
}

// List fetches one page of a collection.
func List[T any](ctx context.Context, c *Client, path string, q Query, fieldKeys ...string) (*Page[T], error) {
	var page Page[T]
	if err := c.Do(ctx, http.MethodGet, path, q.Values(), nil, &page, fieldKeys...); err != nil {
		return nil, err
	}
	if page.Results == nil {
		page.Results = []T{}
	}
	return &page, nil
}

// Get fetches and decodes a single object.
func Get[T any](ctx context.Context, c *Client, path string, query url.Values) (*T, error) {
	var out T
	if err := c.Do(ctx, http.MethodGet, path, query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Lookup fetches an unpaged dropdown list. A paged envelope is unwrapped.
func Lookup[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	var raw json.RawMessage
	if err := c.Do(ctx, http.MethodGet, path, query, nil, &raw); err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return []T{}, nil
	}

	var items []T
	if trimmed[0] == '{' {
		var page Page[T]
		if err := json.Unmarshal(trimmed, &page); err != nil {
			return nil, &Error{Kind: KindServer, Message: "unexpected response from server", Err: err}
		}
		items = page.Results
	} else if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, &Error{Kind: KindServer, Message: "unexpected response from server", Err: err}
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}
