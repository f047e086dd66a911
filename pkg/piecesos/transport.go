package piecesos

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// StatusError is returned when Pieces OS answers with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// Transport holds the HTTP plumbing for talking to a Pieces OS instance.
// The zero value is not usable; BaseURL must be set.
type Transport struct {
	BaseURL string            // Pieces OS base URL (no trailing slash).
	Client  *http.Client      // HTTP client; falls back to a cached client with Timeout.
	Timeout time.Duration     // Timeout of the fallback client (default 10 minutes).
	Headers map[string]string // Extra headers applied to every request.

	clientOnce    sync.Once
	defaultClient *http.Client
}

// httpClient returns the configured client or a cached default client.
func (t *Transport) httpClient() *http.Client {
	if t.Client != nil {
		return t.Client
	}

	t.clientOnce.Do(func() {
		timeout := t.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Minute
		}
		t.defaultClient = &http.Client{Timeout: timeout}
	})

	return t.defaultClient
}

// NewRequest builds an *http.Request against BaseURL with the custom headers
// already applied.
func (t *Transport) NewRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, t.BaseURL+path, body)
	if err != nil {
		return nil, err
	}

	for k, v := range t.Headers {
		req.Header.Set(k, v)
	}

	return req, nil
}

// Do sends the request using the configured HTTP client.
func (t *Transport) Do(req *http.Request) (*http.Response, error) {
	return t.httpClient().Do(req) //nolint:gosec // URL is built from trusted BaseURL config, not user input.
}

// GetJSON sends a GET to path and decodes the 2xx response body into dest.
func (t *Transport) GetJSON(ctx context.Context, path string, dest any) error {
	req, err := t.NewRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	return t.roundTrip(req, dest)
}

// PostJSON marshals payload as JSON, sends a POST to path, checks for a 2xx
// status, and decodes the response body into dest. If dest is nil the body
// is discarded after the status check.
func (t *Transport) PostJSON(ctx context.Context, path string, payload, dest any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := t.NewRequest(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return t.roundTrip(req, dest)
}

func (t *Transport) roundTrip(req *http.Request, dest any) error {
	resp, err := t.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return &StatusError{Code: resp.StatusCode, Body: string(respBody)}
	}

	if dest == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

// wsURL converts BaseURL to a WebSocket URL and appends path. https becomes
// wss, http becomes ws. URLs that already use ws/wss are left unchanged.
func (t *Transport) wsURL(path string) string {
	u := t.BaseURL + path

	if rest, ok := strings.CutPrefix(u, "https://"); ok {
		return "wss://" + rest
	}

	if rest, ok := strings.CutPrefix(u, "http://"); ok {
		return "ws://" + rest
	}

	return u
}

// DialWS opens a WebSocket to path with the custom headers applied.
func (t *Transport) DialWS(ctx context.Context, path string) (*websocket.Conn, error) {
	h := make(http.Header, len(t.Headers))
	for k, v := range t.Headers {
		h.Set(k, v)
	}

	conn, resp, err := websocket.Dial(ctx, t.wsURL(path), &websocket.DialOptions{
		HTTPClient: t.httpClient(),
		HTTPHeader: h,
	})
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial websocket: %w", err)
	}

	// Answers can be long markdown documents.
	conn.SetReadLimit(1 << 22)

	return conn, nil
}
