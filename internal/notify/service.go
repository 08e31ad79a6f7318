package notify

import (
	"context"
	"time"

	"dingnotify/internal/config"
	"dingnotify/internal/host"
	"dingnotify/pkg/logx"
)

// SessionAPI is the slice of the orchestrator API the gate needs.
type SessionAPI interface {
	Session(ctx context.Context, id string) (host.SessionInfo, error)
}

// Sender delivers one formatted message to the chat webhook.
type Sender interface {
	Send(ctx context.Context, title, body string) error
}

// Service drives one event through gate, formatter and delivery.
//
// Handling is strictly sequential per event and never reports failure to the
// caller: every outcome, success or not, terminates in a log line. The
// service keeps no state between events beyond the immutable config.
type Service struct {
	cfg    *config.Config
	api    SessionAPI
	sender Sender
	log    logx.Logger

	now func() time.Time
}

func New(cfg *config.Config, api SessionAPI, sender Sender, log logx.Logger) *Service {
	return &Service{
		cfg:    cfg,
		api:    api,
		sender: sender,
		log:    log,
		now:    time.Now,
	}
}

// HandleEvent maps a host event to a notification kind and runs the pipeline.
// Unrecognized events are ignored.
func (s *Service) HandleEvent(ctx context.Context, ev host.Event) {
	switch ev.Type {
	case host.TypeSessionIdle:
		if ev.SessionID != "" {
			s.handleSession(ctx, KindIdle, ev.SessionID, "")
		}
	case host.TypeSessionError:
		if ev.SessionID != "" {
			s.handleSession(ctx, KindError, ev.SessionID, ev.Error)
		}
	case host.TypePermission:
		s.handleSimple(ctx, KindPermission)
	case host.TypeToolExecutePre:
		if ev.Tool == "question" {
			s.handleSimple(ctx, KindQuestion)
		}
	}
}

// handleSession covers idle/error events, which carry a session and are
// subject to the ancestry filter.
func (s *Service) handleSession(ctx context.Context, kind Kind, sessionID, errText string) {
	if !eventEnabled(s.cfg, kind) {
		return
	}
	if !s.cfg.NotifyChildSessions && !s.isRootSession(ctx, sessionID) {
		s.log.Debug("child session suppressed",
			logx.String("kind", string(kind)), logx.String("session", sessionID))
		return
	}
	if inQuietHours(s.cfg.QuietHours, s.now()) {
		s.log.Debug("quiet hours suppressed", logx.String("kind", string(kind)))
		return
	}

	title := s.sessionTitle(ctx, sessionID)

	var msg Message
	switch kind {
	case KindError:
		msg = formatError(title, sessionID, errText, s.now())
	default:
		msg = formatIdle(title, sessionID, s.now())
	}
	s.deliver(ctx, kind, msg)
}

// handleSimple covers permission/question events, which carry no session and
// bypass the ancestry filter entirely.
func (s *Service) handleSimple(ctx context.Context, kind Kind) {
	if !eventEnabled(s.cfg, kind) {
		return
	}
	if inQuietHours(s.cfg.QuietHours, s.now()) {
		s.log.Debug("quiet hours suppressed", logx.String("kind", string(kind)))
		return
	}

	var msg Message
	switch kind {
	case KindPermission:
		msg = formatPermission(s.now())
	default:
		msg = formatQuestion(s.now())
	}
	s.deliver(ctx, kind, msg)
}

// isRootSession resolves the ancestry of sessionID. A failed lookup counts
// as root: missing an alert is worse than an extra one.
func (s *Service) isRootSession(ctx context.Context, sessionID string) bool {
	info, err := s.api.Session(ctx, sessionID)
	if err != nil {
		s.log.Debug("session lookup failed; assuming root",
			logx.String("session", sessionID), logx.Err(err))
		return true
	}
	return info.ParentID == ""
}

// sessionTitle fetches the display title, truncated; falls back to the
// placeholder when the lookup fails or the title is empty.
func (s *Service) sessionTitle(ctx context.Context, sessionID string) string {
	info, err := s.api.Session(ctx, sessionID)
	if err != nil || info.Title == "" {
		return defaultTaskTitle
	}
	return truncateRunes(info.Title, maxTitleRunes)
}

// deliver runs the webhook call and converts its outcome to a log line.
// Delivery failure never propagates past this point.
func (s *Service) deliver(ctx context.Context, kind Kind, msg Message) {
	if err := s.sender.Send(ctx, msg.Title, msg.Body); err != nil {
		s.log.Error("notification delivery failed",
			logx.String("kind", string(kind)), logx.String("title", msg.Title), logx.Err(err))
		return
	}
	s.log.Info("notification delivered",
		logx.String("kind", string(kind)), logx.String("title", msg.Title))
}
