package host

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Stream subscribes to the orchestrator's event stream (SSE) and calls fn
// for every decoded event, in stream order. It returns nil when the host
// closes the stream cleanly and an error otherwise; reconnecting is the
// caller's job.
//
// Unknown event types are passed through; the consumer decides what to
// ignore. Malformed frames are skipped.
func (c *Client) Stream(ctx context.Context, fn func(Event)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/event", nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.stream.Do(req)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("subscribe: status %d", resp.StatusCode)
	}

	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var data strings.Builder
	for sc.Scan() {
		line := sc.Text()

		// Blank line terminates one SSE frame.
		if line == "" {
			if data.Len() > 0 {
				emit(data.String(), fn)
				data.Reset()
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			// keep-alive comment
			continue
		}
		if rest, ok := strings.CutPrefix(line, "data:"); ok {
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(rest, " "))
		}
		// Other SSE fields (event:, id:, retry:) are unused by this host.
	}
	// Flush a final unterminated frame.
	if data.Len() > 0 {
		emit(data.String(), fn)
	}

	if err := sc.Err(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("read stream: %w", err)
	}
	return ctx.Err()
}

func emit(data string, fn func(Event)) {
	var w wireEvent
	if err := json.Unmarshal([]byte(data), &w); err != nil {
		return
	}
	if w.Type == "" {
		return
	}
	fn(w.toEvent())
}
