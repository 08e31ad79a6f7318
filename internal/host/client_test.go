package host

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSessionLookup(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/session/abc" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"id":"abc","title":"Build","parentID":""}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	info, err := c.Session(context.Background(), "abc")
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	if info.Title != "Build" || info.ParentID != "" {
		t.Fatalf("unexpected session info: %+v", info)
	}

	if _, err := c.Session(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for unknown session")
	}
}

func TestLogSwallowsFailures(t *testing.T) {
	t.Parallel()
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/log" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	// Must not panic or return anything, even on a 500.
	c.Log(context.Background(), "error", "boom", map[string]any{"err": "x"})

	if got["service"] != "dingnotify" || got["level"] != "error" || got["message"] != "boom" {
		t.Fatalf("unexpected log entry: %v", got)
	}

	// Unreachable host is swallowed too.
	down := NewClient("http://127.0.0.1:1")
	down.Log(context.Background(), "warn", "unreachable", nil)
}

func TestStreamDecodesEvents(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/event" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, ": ping\n\n")
		fmt.Fprint(w, "data: {\"type\":\"session.idle\",\"properties\":{\"sessionID\":\"abc\"}}\n\n")
		fmt.Fprint(w, "data: {\"type\":\"session.error\",\"properties\":{\"sessionID\":\"abc\",\"error\":\"boom\"}}\n\n")
		fmt.Fprint(w, "data: {\"type\":\"session.error\",\"properties\":{\"sessionID\":\"def\",\"error\":{\"name\":\"E\",\"data\":{\"message\":\"bad\"}}}}\n\n")
		fmt.Fprint(w, "data: {\"type\":\"tool.execute.before\",\"properties\":{\"tool\":\"question\",\"sessionID\":\"abc\"}}\n\n")
		fmt.Fprint(w, "data: not json\n\n")
		fmt.Fprint(w, "data: {\"type\":\"permission.updated\",\"properties\":{}}\n\n")
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	var events []Event
	if err := c.Stream(context.Background(), func(ev Event) { events = append(events, ev) }); err != nil {
		t.Fatalf("Stream: %v", err)
	}

	if len(events) != 5 {
		t.Fatalf("expected 5 events (malformed frame skipped), got %d: %+v", len(events), events)
	}
	if events[0].Type != TypeSessionIdle || events[0].SessionID != "abc" {
		t.Fatalf("unexpected first event: %+v", events[0])
	}
	if events[1].Error != "boom" {
		t.Fatalf("string error payload not unwrapped: %+v", events[1])
	}
	if events[2].Error != `{"name":"E","data":{"message":"bad"}}` {
		t.Fatalf("structured error payload not compacted: %q", events[2].Error)
	}
	if events[3].Tool != "question" {
		t.Fatalf("tool name lost: %+v", events[3])
	}
	if events[4].Type != TypePermission {
		t.Fatalf("unexpected last event: %+v", events[4])
	}
}

func TestStreamSubscribeFailure(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if err := c.Stream(context.Background(), func(Event) {}); err == nil {
		t.Fatal("expected error for non-2xx subscribe")
	}
}

func TestNormalizeError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "empty", raw: "", want: ""},
		{name: "null", raw: "null", want: ""},
		{name: "string", raw: `"boom"`, want: "boom"},
		{name: "object", raw: `{ "a": 1 }`, want: `{"a":1}`},
		{name: "number", raw: `42`, want: "42"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeError(json.RawMessage(tt.raw)); got != tt.want {
				t.Fatalf("normalizeError(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
