// Package host is the HTTP boundary to the agent host: the SSE event
// stream, session metadata lookup, and the best-effort log endpoint.
package host
