package audit

import (
	"context"
	"log/slog"
)

// Logger defines the interface for audit logging.
type Logger interface {
	// Log records an audit event.
	Log(ctx context.Context, event *Event) error
}

// SlogLogger writes audit events through a structured logger. The adapter
// holds no persisted state, so the process log stream is the audit trail.
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger creates a logger writing to l, or slog.Default when l is nil.
func NewSlogLogger(l *slog.Logger) *SlogLogger {
	if l == nil {
		l = slog.Default()
	}
	return &SlogLogger{logger: l}
}

// Log records an audit event.
func (s *SlogLogger) Log(ctx context.Context, event *Event) error {
	level := slog.LevelInfo
	if !event.Success {
		level = slog.LevelWarn
	}
	s.logger.LogAttrs(ctx, level, "tool call",
		slog.String("event_id", event.ID),
		slog.String("request_id", event.RequestID),
		slog.String("tool", event.ToolName),
		slog.String("user", event.UserID),
		slog.String("transport", event.Transport),
		slog.Bool("success", event.Success),
		slog.Int64("duration_ms", event.DurationMS),
		slog.String("error", event.ErrorMessage),
	)
	return nil
}

// NoopLogger discards all events.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(context.Context, *Event) error { return nil }

// Verify interface compliance.
var (
	_ Logger = (*SlogLogger)(nil)
	_ Logger = NoopLogger{}
)
