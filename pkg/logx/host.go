package logx

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Host sink: forwards selected log lines to the orchestrator's log endpoint.
//
// The sink must never slow down or break local logging, so lines are filtered
// (min-level), rate-limited, and handed to a background worker over a bounded
// queue. When the queue is full, lines are dropped.

type hostItem struct {
	level   string
	message string
	extra   map[string]any
}

type hostWriter struct {
	svc      *Service
	minLevel zerolog.Level
	limiter  *rate.Limiter
}

func newHostWriter(svc *Service, cfg HostConfig) *hostWriter {
	rps := cfg.RatePerSec
	if rps < 1 {
		rps = 1
	}
	return &hostWriter{
		svc:      svc,
		minLevel: parseLevel(cfg.MinLevel, zerolog.WarnLevel),
		limiter:  rate.NewLimiter(rate.Limit(rps), rps),
	}
}

func (w *hostWriter) Write(p []byte) (int, error) {
	// Default to info when WriteLevel isn't used.
	return w.WriteLevel(zerolog.InfoLevel, p)
}

func (w *hostWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < w.minLevel {
		return len(p), nil
	}
	if !w.limiter.Allow() {
		return len(p), nil
	}

	it := parseHostLine(p)
	if it.message == "" {
		return len(p), nil
	}
	if it.level == "" {
		it.level = level.String()
	}

	// Never block logging on the host sink.
	select {
	case w.svc.hostQueue <- it:
	default:
		// drop
	}
	return len(p), nil
}

func (s *Service) hostWorker(ctx context.Context, sink HostSink) {
	defer close(s.hostDone)
	for {
		select {
		case <-ctx.Done():
			return
		case it := <-s.hostQueue:
			s.forward(ctx, sink, it)
		}
	}
}

// forward isolates one sink call; a panicking or failing sink must not
// take down the worker.
func (s *Service) forward(ctx context.Context, sink HostSink, it hostItem) {
	defer func() { _ = recover() }()
	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	sink.Log(cctx, it.level, it.message, it.extra)
}

// parseHostLine decodes a zerolog JSON line into a host log entry.
// Non-JSON input is forwarded raw.
func parseHostLine(p []byte) hostItem {
	var m map[string]any
	if err := json.Unmarshal(p, &m); err != nil {
		return hostItem{message: strings.TrimSpace(string(p))}
	}

	it := hostItem{}
	it.level, _ = m["level"].(string)
	it.message, _ = m["message"].(string)
	if it.message == "" {
		it.message, _ = m["msg"].(string)
	}

	for k, v := range m {
		switch k {
		case "time", "level", "message", "msg", "caller":
			continue
		}
		if it.extra == nil {
			it.extra = map[string]any{}
		}
		it.extra[k] = v
	}
	return it
}

// formatExtra renders extra fields for sinks that only take flat text.
func formatExtra(extra map[string]any) string {
	if len(extra) == 0 {
		return ""
	}
	var b strings.Builder
	for k, v := range extra {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%v", k, v)
	}
	return b.String()
}
