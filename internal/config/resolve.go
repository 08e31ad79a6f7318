package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// fileConfig mirrors Config with pointer fields so an absent key can be told
// apart from an explicit zero value. User files override defaults top-level
// shallowly; quietHours and events are merged field-by-field so overriding
// one sub-field leaves its siblings at their defaults.
type fileConfig struct {
	AccessToken         *string  `json:"accessToken"`
	Secret              *string  `json:"secret"`
	NotifyChildSessions *bool    `json:"notifyChildSessions"`
	AtAll               *bool    `json:"atAll"`
	AtMobiles           []string `json:"atMobiles"`

	QuietHours *struct {
		Enabled *bool   `json:"enabled"`
		Start   *string `json:"start"`
		End     *string `json:"end"`
	} `json:"quietHours"`

	Events *struct {
		Idle       *bool `json:"idle"`
		Error      *bool `json:"error"`
		Permission *bool `json:"permission"`
		Question   *bool `json:"question"`
	} `json:"events"`

	Logging *struct {
		Level   *string `json:"level"`
		Console *bool   `json:"console"`
		File    *struct {
			Enabled *bool   `json:"enabled"`
			Path    *string `json:"path"`
		} `json:"file"`
		Journal *struct {
			Enabled *bool `json:"enabled"`
		} `json:"journal"`
		Host *struct {
			Enabled    *bool   `json:"enabled"`
			MinLevel   *string `json:"min_level"`
			RatePerSec *int    `json:"rate_per_sec"`
		} `json:"host"`
	} `json:"logging"`

	Host *struct {
		BaseURL *string `json:"base_url"`
	} `json:"host"`
}

// DefaultPath returns the well-known user config location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "dingnotify", "config.json")
}

// Resolve loads the user config at path and merges it onto the defaults.
// A missing or unreadable file and malformed content are not errors: the
// defaults are returned as-is. Resolve never fails.
func Resolve(path string) *Config {
	cfg := Defaults()
	if path == "" {
		return cfg
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}
	jb, err := coerceToJSONBytes(path, b)
	if err != nil {
		return cfg
	}

	var fc fileConfig
	if err := json.Unmarshal(jb, &fc); err != nil {
		return cfg
	}

	fc.applyTo(cfg)
	return cfg
}

func (fc *fileConfig) applyTo(cfg *Config) {
	setString(&cfg.AccessToken, fc.AccessToken)
	setString(&cfg.Secret, fc.Secret)
	setBool(&cfg.NotifyChildSessions, fc.NotifyChildSessions)
	setBool(&cfg.AtAll, fc.AtAll)
	if fc.AtMobiles != nil {
		cfg.AtMobiles = fc.AtMobiles
	}

	if q := fc.QuietHours; q != nil {
		setBool(&cfg.QuietHours.Enabled, q.Enabled)
		setString(&cfg.QuietHours.Start, q.Start)
		setString(&cfg.QuietHours.End, q.End)
	}
	if e := fc.Events; e != nil {
		setBool(&cfg.Events.Idle, e.Idle)
		setBool(&cfg.Events.Error, e.Error)
		setBool(&cfg.Events.Permission, e.Permission)
		setBool(&cfg.Events.Question, e.Question)
	}

	if l := fc.Logging; l != nil {
		setString(&cfg.Logging.Level, l.Level)
		setBool(&cfg.Logging.Console, l.Console)
		if f := l.File; f != nil {
			setBool(&cfg.Logging.File.Enabled, f.Enabled)
			setString(&cfg.Logging.File.Path, f.Path)
		}
		if j := l.Journal; j != nil {
			setBool(&cfg.Logging.Journal.Enabled, j.Enabled)
		}
		if h := l.Host; h != nil {
			setBool(&cfg.Logging.Host.Enabled, h.Enabled)
			setString(&cfg.Logging.Host.MinLevel, h.MinLevel)
			setInt(&cfg.Logging.Host.RatePerSec, h.RatePerSec)
		}
	}
	if h := fc.Host; h != nil {
		setString(&cfg.Host.BaseURL, h.BaseURL)
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
