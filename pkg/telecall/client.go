// Package telecall provides the Go client for the Samodrei telecaller
// backend: operator-placed calls with live status streaming, the
// autonomous calling monitor, the call log, and the dashboard controller
// that composes them.
package telecall

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

	"github.com/gorilla/websocket"
)

const (
	defaultBaseURL     = "https://api.thesamodrei.com"
	defaultHTTPTimeout = 30 * time.Second
	defaultDialTimeout = 15 * time.Second
)

// Client is the entry point for talking to the telecaller backend.
type Client struct {
	baseURL    string
	wsBaseURL  string
	httpClient *http.Client
	dialer     *websocket.Dialer
	logger     *slog.Logger
}

// ClientOption is a function that configures a Client.
type ClientOption func(*Client)

// WithBaseURL sets the backend base URL for HTTP endpoints. The WebSocket
// base URL is derived from it unless WithWSBaseURL is also given.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithWSBaseURL sets the base URL for the status stream WebSockets.
func WithWSBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.wsBaseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithDialer sets a custom WebSocket dialer.
func WithDialer(d *websocket.Dialer) ClientOption {
	return func(c *Client) {
		c.dialer = d
	}
}

// WithLogger sets the logger for the client.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a new client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		dialer:     websocket.DefaultDialer,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Logs returns a call log store backed by this client.
func (c *Client) Logs() *CallLogStore {
	return newCallLogStore(c)
}

// Automation returns an automation monitor backed by this client.
func (c *Client) Automation() *AutomationMonitor {
	return newAutomationMonitor(c)
}

func (c *Client) endpoint(path string) string {
	return strings.TrimRight(c.baseURL, "/") + path
}

// wsEndpoint derives the WebSocket URL for path. When no explicit
// WebSocket base URL is configured the HTTP base URL is reused with its
// scheme flipped to ws/wss.
func (c *Client) wsEndpoint(path string) (string, error) {
	base := c.wsBaseURL
	if base == "" {
		base = c.baseURL
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base URL %q: %w", base, err)
	}
	switch parsed.Scheme {
	case "http":
		parsed.Scheme = "ws"
	case "https":
		parsed.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q in base URL", parsed.Scheme)
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/") + path
	return parsed.String(), nil
}

// postJSON issues a single POST with a JSON body and decodes the response
// into out when non-nil. It never retries: call placement must not be
// re-issued on failure, and callers that want retry semantics (the log
// store) layer their own policy on top.
func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	endpoint := c.endpoint(path)

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: http.MethodPost, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: http.MethodPost, URL: endpoint, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return statusError(resp.StatusCode, respBody)
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// statusError maps a non-2xx response to a canonical *Error. The backend
// has no documented error schema, so the body is only used as message
// material.
func statusError(statusCode int, body []byte) *Error {
	message := strings.TrimSpace(string(body))
	if message == "" {
		message = http.StatusText(statusCode)
	}
	errType := ErrAPI
	switch {
	case statusCode == http.StatusNotFound:
		errType = ErrNotFound
	case statusCode >= 400 && statusCode < 500:
		errType = ErrInvalidRequest
	}
	return &Error{Type: errType, Message: message, StatusCode: statusCode}
}
