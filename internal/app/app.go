// Package app wires the daemon together and owns the event-stream run loop.
package app

import (
	"context"
	"math/rand"
	"time"

	"dingnotify/internal/config"
	"dingnotify/internal/dingtalk"
	"dingnotify/internal/host"
	"dingnotify/internal/notify"
	"dingnotify/pkg/logx"
)

type App struct {
	cfg  *config.Config
	logs *logx.Service
	log  logx.Logger

	host *host.Client
	svc  *notify.Service
}

// New resolves configuration (once; it stays immutable for the process
// lifetime) and wires logging, the host client, the delivery client and the
// notification service.
func New(cfgPath string) *App {
	cfg := config.Resolve(cfgPath)

	hc := host.NewClient(cfg.Host.BaseURL)
	logs, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
		Journal: logx.JournalConfig{Enabled: cfg.Logging.Journal.Enabled},
		Host: logx.HostConfig{
			Enabled:    cfg.Logging.Host.Enabled,
			MinLevel:   cfg.Logging.Host.MinLevel,
			RatePerSec: cfg.Logging.Host.RatePerSec,
		},
	}, hc)

	sender := dingtalk.New(cfg.AccessToken, cfg.Secret, cfg.AtAll, cfg.AtMobiles)
	svc := notify.New(cfg, hc, sender, log)

	if !cfg.HasCredentials() {
		// One-time degradation notice; the daemon still runs and gates
		// events, it just never delivers.
		log.Warn("accessToken or secret not configured; notifications will not be delivered",
			logx.String("config", cfgPath))
	}

	return &App{cfg: cfg, logs: logs, log: log, host: hc, svc: svc}
}

const (
	reconnectBackoffBase = time.Second
	reconnectBackoffMax  = 30 * time.Second

	// A connection that survives this long resets the backoff.
	stableConnAge = time.Minute
)

// Run consumes the host event stream until ctx is canceled, reconnecting
// with jittered backoff when the stream drops. Events are handled
// sequentially, in stream order.
func (a *App) Run(ctx context.Context) error {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	backoff := reconnectBackoffBase

	a.log.Info("attached to host", logx.String("base_url", a.cfg.Host.BaseURL))

	for {
		if ctx.Err() != nil {
			return nil
		}

		started := time.Now()
		err := a.host.Stream(ctx, func(ev host.Event) {
			a.svc.HandleEvent(ctx, ev)
		})
		if ctx.Err() != nil {
			return nil
		}

		if time.Since(started) >= stableConnAge {
			backoff = reconnectBackoffBase
		}

		wait := backoff + time.Duration(rng.Int63n(int64(backoff/2)+1))
		if err != nil {
			a.log.Warn("event stream disconnected; reconnecting",
				logx.Err(err), logx.Duration("backoff", wait))
		} else {
			a.log.Warn("event stream closed by host; reconnecting",
				logx.Duration("backoff", wait))
		}
		if backoff < reconnectBackoffMax {
			backoff *= 2
			if backoff > reconnectBackoffMax {
				backoff = reconnectBackoffMax
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}
	}
}

// Close releases log sinks. In-flight deliveries are abandoned.
func (a *App) Close() {
	_ = a.logs.Close()
}
