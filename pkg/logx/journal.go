package logx

import (
	"github.com/coreos/go-systemd/v22/journal"
	"github.com/rs/zerolog"
)

// journald sink. Only attached when the journal socket is reachable, so the
// same config works inside and outside systemd units.

type journalWriter struct{}

func newJournalWriter() *journalWriter {
	if !journal.Enabled() {
		return nil
	}
	return &journalWriter{}
}

func (w *journalWriter) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.InfoLevel, p)
}

func (w *journalWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	it := parseHostLine(p)
	msg := it.message
	if msg == "" {
		return len(p), nil
	}
	if extra := formatExtra(it.extra); extra != "" {
		msg += " " + extra
	}
	_ = journal.Send(msg, journalPriority(level), nil)
	return len(p), nil
}

func journalPriority(level zerolog.Level) journal.Priority {
	switch {
	case level >= zerolog.ErrorLevel:
		return journal.PriErr
	case level >= zerolog.WarnLevel:
		return journal.PriWarning
	case level >= zerolog.InfoLevel:
		return journal.PriInfo
	default:
		return journal.PriDebug
	}
}
