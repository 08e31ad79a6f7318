package notify

import (
	"fmt"
	"time"

	"dingnotify/internal/config"
)

// Kind is the notification event kind, matching the per-kind config toggles.
type Kind string

const (
	KindIdle       Kind = "idle"
	KindError      Kind = "error"
	KindPermission Kind = "permission"
	KindQuestion   Kind = "question"
)

func eventEnabled(cfg *config.Config, k Kind) bool {
	switch k {
	case KindIdle:
		return cfg.Events.Idle
	case KindError:
		return cfg.Events.Error
	case KindPermission:
		return cfg.Events.Permission
	case KindQuestion:
		return cfg.Events.Question
	default:
		return false
	}
}

// inQuietHours reports whether now falls inside the configured quiet window.
// The window is [start, end) on local minute-of-day; start > end wraps past
// midnight, i.e. [start,24:00) plus [00:00,end). An unparseable window never
// suppresses.
func inQuietHours(q config.QuietHours, now time.Time) bool {
	if !q.Enabled {
		return false
	}
	start, err := parseHHMM(q.Start)
	if err != nil {
		return false
	}
	end, err := parseHHMM(q.End)
	if err != nil {
		return false
	}

	cur := now.Hour()*60 + now.Minute()
	if start > end {
		return cur >= start || cur < end
	}
	return cur >= start && cur < end
}

// parseHHMM parses "HH:MM" into a minute-of-day (0..1439).
func parseHHMM(v string) (int, error) {
	if len(v) != 5 || v[2] != ':' {
		return 0, fmt.Errorf("invalid HH:MM %q", v)
	}
	hh, ok1 := twoDigits(v[0], v[1])
	mm, ok2 := twoDigits(v[3], v[4])
	if !ok1 || !ok2 || hh > 23 || mm > 59 {
		return 0, fmt.Errorf("invalid HH:MM %q", v)
	}
	return hh*60 + mm, nil
}

func twoDigits(a, b byte) (int, bool) {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, false
	}
	return int(a-'0')*10 + int(b-'0'), true
}
