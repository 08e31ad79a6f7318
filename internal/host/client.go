package host

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
)

const serviceName = "dingnotify"

// Client talks to the orchestrator's HTTP API: session lookups, the
// best-effort log endpoint, and the event stream.
type Client struct {
	baseURL string

	// http serves request/response calls and carries a timeout; stream is
	// timeout-free because the event subscription is long-lived.
	http   *http.Client
	stream *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		stream:  &http.Client{},
	}
}

// Session fetches the session summary for id. Callers treat any error as
// "unknown session" and apply their own fallback.
func (c *Client) Session(ctx context.Context, id string) (SessionInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/session/"+url.PathEscape(id), nil)
	if err != nil {
		return SessionInfo{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return SessionInfo{}, fmt.Errorf("session lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return SessionInfo{}, fmt.Errorf("session lookup: status %d", resp.StatusCode)
	}

	var info SessionInfo
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&info); err != nil {
		return SessionInfo{}, fmt.Errorf("decode session: %w", err)
	}
	return info, nil
}

// Log writes one structured entry to the orchestrator's log endpoint.
// It is best-effort by contract: every failure is swallowed.
func (c *Client) Log(ctx context.Context, level, message string, extra map[string]any) {
	body := map[string]any{
		"service": serviceName,
		"level":   level,
		"message": message,
	}
	if len(extra) > 0 {
		body["extra"] = extra
	}
	b, err := json.Marshal(body)
	if err != nil {
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/log", bytes.NewReader(b))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return
	}
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
}
