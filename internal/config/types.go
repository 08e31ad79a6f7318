// Package config loads the daemon configuration: defaults, overlaid with an
// optional JSON or YAML file. Resolution never fails; a broken file means
// defaults.
package config

// Config is the resolved configuration. It is built once at startup by
// Resolve() and never mutated afterwards; components receive it explicitly.
type Config struct {
	// Webhook credentials. Both must be set for delivery to happen; an empty
	// pair is tolerated at load time (the daemon degrades to gated-but-silent).
	AccessToken string `json:"accessToken"`
	Secret      string `json:"secret"`

	// NotifyChildSessions controls the ancestry filter for idle/error events.
	// When false (default), only root sessions produce notifications.
	NotifyChildSessions bool `json:"notifyChildSessions"`

	// Mention directives for the outbound message.
	AtAll     bool     `json:"atAll"`
	AtMobiles []string `json:"atMobiles"`

	QuietHours QuietHours `json:"quietHours"`
	Events     Events     `json:"events"`

	Logging Logging `json:"logging"`
	Host    Host    `json:"host"`
}

// QuietHours is a wall-clock window during which notifications are suppressed.
// Start/End are "HH:MM"; Start > End wraps past midnight (e.g. 22:00-08:00).
type QuietHours struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

// Events enables/disables notifications per event kind.
type Events struct {
	Idle       bool `json:"idle"`
	Error      bool `json:"error"`
	Permission bool `json:"permission"`
	Question   bool `json:"question"`
}

type Logging struct {
	Level   string         `json:"level"`
	Console bool           `json:"console"`
	File    LoggingFile    `json:"file"`
	Journal LoggingJournal `json:"journal"`
	Host    LoggingHost    `json:"host"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

type LoggingJournal struct {
	Enabled bool `json:"enabled"`
}

// LoggingHost controls forwarding of high-signal log lines to the
// orchestrator's log endpoint.
type LoggingHost struct {
	Enabled    bool   `json:"enabled"`
	MinLevel   string `json:"min_level"`
	RatePerSec int    `json:"rate_per_sec"`
}

type Host struct {
	// BaseURL of the orchestrator HTTP API.
	BaseURL string `json:"base_url"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		NotifyChildSessions: false,
		AtAll:               false,
		AtMobiles:           []string{},
		QuietHours: QuietHours{
			Enabled: false,
			Start:   "22:00",
			End:     "08:00",
		},
		Events: Events{
			Idle:       true,
			Error:      true,
			Permission: true,
			Question:   true,
		},
		Logging: Logging{
			Level:   "info",
			Console: true,
			Host: LoggingHost{
				Enabled:    true,
				MinLevel:   "warn",
				RatePerSec: 1,
			},
		},
		Host: Host{
			BaseURL: "http://127.0.0.1:4096",
		},
	}
}

// HasCredentials reports whether both webhook credential fields are set.
func (c *Config) HasCredentials() bool {
	return c.AccessToken != "" && c.Secret != ""
}
