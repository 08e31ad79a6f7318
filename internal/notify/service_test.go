package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"dingnotify/internal/config"
	"dingnotify/internal/host"
	"dingnotify/pkg/logx"
)

type fakeAPI struct {
	info  host.SessionInfo
	err   error
	calls int
}

func (f *fakeAPI) Session(ctx context.Context, id string) (host.SessionInfo, error) {
	f.calls++
	if f.err != nil {
		return host.SessionInfo{}, f.err
	}
	return f.info, nil
}

type sentMessage struct {
	title string
	body  string
}

type fakeSender struct {
	err  error
	sent []sentMessage
}

func (f *fakeSender) Send(ctx context.Context, title, body string) error {
	f.sent = append(f.sent, sentMessage{title: title, body: body})
	return f.err
}

func newTestService(cfg *config.Config, api *fakeAPI, sender *fakeSender) *Service {
	s := New(cfg, api, sender, logx.Nop())
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestIdleEventForRootSession(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()
	cfg.AccessToken = "tok"
	cfg.Secret = "sec"
	api := &fakeAPI{info: host.SessionInfo{ID: "abc", Title: "Build"}}
	sender := &fakeSender{}

	svc := newTestService(cfg, api, sender)
	svc.HandleEvent(context.Background(), host.Event{Type: host.TypeSessionIdle, SessionID: "abc"})

	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 send, got %d", len(sender.sent))
	}
	if !strings.Contains(sender.sent[0].title, "任务完成") {
		t.Fatalf("unexpected title: %q", sender.sent[0].title)
	}
	if !strings.Contains(sender.sent[0].body, "Build") || !strings.Contains(sender.sent[0].body, "abc") {
		t.Fatalf("body missing session details: %q", sender.sent[0].body)
	}
}

func TestChildSessionSuppressed(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()
	api := &fakeAPI{info: host.SessionInfo{ID: "abc", Title: "Build", ParentID: "parent-1"}}
	sender := &fakeSender{}

	svc := newTestService(cfg, api, sender)
	svc.HandleEvent(context.Background(), host.Event{Type: host.TypeSessionIdle, SessionID: "abc"})

	if len(sender.sent) != 0 {
		t.Fatalf("expected 0 sends for child session, got %d", len(sender.sent))
	}
}

func TestChildSessionAllowedWhenConfigured(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()
	cfg.NotifyChildSessions = true
	api := &fakeAPI{info: host.SessionInfo{ID: "abc", ParentID: "parent-1"}}
	sender := &fakeSender{}

	svc := newTestService(cfg, api, sender)
	svc.HandleEvent(context.Background(), host.Event{Type: host.TypeSessionIdle, SessionID: "abc"})

	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 send, got %d", len(sender.sent))
	}
}

func TestAncestryLookupFailsOpen(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()
	api := &fakeAPI{err: errors.New("host unreachable")}
	sender := &fakeSender{}

	svc := newTestService(cfg, api, sender)
	svc.HandleEvent(context.Background(), host.Event{Type: host.TypeSessionIdle, SessionID: "abc"})

	if len(sender.sent) != 1 {
		t.Fatalf("lookup failure must notify, got %d sends", len(sender.sent))
	}
	// Title lookup also failed, so the placeholder is used.
	if !strings.Contains(sender.sent[0].body, "未命名任务") {
		t.Fatalf("expected placeholder title in body: %q", sender.sent[0].body)
	}
}

func TestEventToggleDisables(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()
	cfg.Events.Idle = false
	api := &fakeAPI{info: host.SessionInfo{ID: "abc"}}
	sender := &fakeSender{}

	svc := newTestService(cfg, api, sender)
	svc.HandleEvent(context.Background(), host.Event{Type: host.TypeSessionIdle, SessionID: "abc"})

	if len(sender.sent) != 0 {
		t.Fatalf("expected 0 sends with idle disabled, got %d", len(sender.sent))
	}
	if api.calls != 0 {
		t.Fatalf("disabled event must not hit the session API, got %d calls", api.calls)
	}
}

func TestQuietHoursSuppressAllKinds(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()
	cfg.QuietHours = config.QuietHours{Enabled: true, Start: "00:00", End: "23:59"}
	api := &fakeAPI{info: host.SessionInfo{ID: "abc"}}
	sender := &fakeSender{}

	svc := newTestService(cfg, api, sender)
	events := []host.Event{
		{Type: host.TypeSessionIdle, SessionID: "abc"},
		{Type: host.TypeSessionError, SessionID: "abc", Error: "boom"},
		{Type: host.TypePermission},
		{Type: host.TypeToolExecutePre, Tool: "question"},
	}
	for _, ev := range events {
		svc.HandleEvent(context.Background(), ev)
	}

	if len(sender.sent) != 0 {
		t.Fatalf("quiet hours must suppress every kind, got %d sends", len(sender.sent))
	}
}

func TestPermissionBypassesAncestry(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()
	api := &fakeAPI{info: host.SessionInfo{ID: "abc", ParentID: "parent-1"}}
	sender := &fakeSender{}

	svc := newTestService(cfg, api, sender)
	svc.HandleEvent(context.Background(), host.Event{Type: host.TypePermission})

	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 send, got %d", len(sender.sent))
	}
	if api.calls != 0 {
		t.Fatalf("permission events carry no session; got %d lookups", api.calls)
	}
}

func TestQuestionOnlyForQuestionTool(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()
	sender := &fakeSender{}

	svc := newTestService(cfg, &fakeAPI{}, sender)
	svc.HandleEvent(context.Background(), host.Event{Type: host.TypeToolExecutePre, Tool: "bash"})
	svc.HandleEvent(context.Background(), host.Event{Type: host.TypeToolExecutePre, Tool: "question"})

	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 send for the question tool only, got %d", len(sender.sent))
	}
	if !strings.Contains(sender.sent[0].title, "有问题要问") {
		t.Fatalf("unexpected title: %q", sender.sent[0].title)
	}
}

func TestErrorEventCarriesPayload(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()
	api := &fakeAPI{info: host.SessionInfo{ID: "abc", Title: "Build"}}
	sender := &fakeSender{}

	svc := newTestService(cfg, api, sender)
	svc.HandleEvent(context.Background(), host.Event{Type: host.TypeSessionError, SessionID: "abc", Error: "compile failed"})

	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 send, got %d", len(sender.sent))
	}
	if !strings.Contains(sender.sent[0].body, "compile failed") {
		t.Fatalf("body missing error payload: %q", sender.sent[0].body)
	}
}

func TestDeliveryFailureIsSwallowed(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()
	api := &fakeAPI{info: host.SessionInfo{ID: "abc"}}
	sender := &fakeSender{err: errors.New("errcode 300001")}

	svc := newTestService(cfg, api, sender)
	// Must not panic or propagate; one attempt, no retry.
	svc.HandleEvent(context.Background(), host.Event{Type: host.TypeSessionIdle, SessionID: "abc"})

	if len(sender.sent) != 1 {
		t.Fatalf("expected exactly 1 attempt, got %d", len(sender.sent))
	}
}

func TestEventsWithoutSessionIDIgnored(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()
	sender := &fakeSender{}

	svc := newTestService(cfg, &fakeAPI{}, sender)
	svc.HandleEvent(context.Background(), host.Event{Type: host.TypeSessionIdle})
	svc.HandleEvent(context.Background(), host.Event{Type: host.TypeSessionError})
	svc.HandleEvent(context.Background(), host.Event{Type: "server.connected"})

	if len(sender.sent) != 0 {
		t.Fatalf("expected 0 sends, got %d", len(sender.sent))
	}
}
