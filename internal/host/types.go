package host

import (
	"bytes"
	"encoding/json"
)

// Event types on the orchestrator's stream that this daemon reacts to.
// The contract between the two processes is the JSON schema, not Go types.
const (
	TypeSessionIdle    = "session.idle"
	TypeSessionError   = "session.error"
	TypePermission     = "permission.updated"
	TypeToolExecutePre = "tool.execute.before"
)

// Event is one lifecycle signal from the orchestrator, already flattened
// from the wire shape.
type Event struct {
	Type      string
	SessionID string

	// Error is the normalized error payload (session.error only).
	Error string

	// Tool is the tool name (tool.execute.before only).
	Tool string
}

// SessionInfo is the on-demand session summary. An empty ParentID means the
// session is a root/parent session.
type SessionInfo struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	ParentID string `json:"parentID"`
}

// wireEvent is the tagged union as it appears on the stream.
type wireEvent struct {
	Type       string `json:"type"`
	Properties struct {
		SessionID string          `json:"sessionID"`
		Error     json.RawMessage `json:"error"`
		Tool      string          `json:"tool"`
	} `json:"properties"`
}

func (w *wireEvent) toEvent() Event {
	return Event{
		Type:      w.Type,
		SessionID: w.Properties.SessionID,
		Error:     normalizeError(w.Properties.Error),
		Tool:      w.Properties.Tool,
	}
}

// normalizeError flattens the error payload to a string: JSON strings are
// unquoted, anything structured stays as its compact JSON text.
func normalizeError(raw json.RawMessage) string {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err == nil {
		return buf.String()
	}
	return string(raw)
}
