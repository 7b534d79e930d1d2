// Package audit provides audit logging for tool calls.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Event records a single tool invocation.
type Event struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	DurationMS   int64     `json:"duration_ms"`
	RequestID    string    `json:"request_id"`
	UserID       string    `json:"user_id,omitempty"`
	ToolName     string    `json:"tool_name"`
	Transport    string    `json:"transport,omitempty"`
	Success      bool      `json:"success"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

// NewEvent creates an event for the named tool.
func NewEvent(toolName string) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		ToolName:  toolName,
	}
}

// WithRequestID adds the request correlation ID.
func (e *Event) WithRequestID(requestID string) *Event {
	e.RequestID = requestID
	return e
}

// WithUser adds user information to the event.
func (e *Event) WithUser(userID string) *Event {
	e.UserID = userID
	return e
}

// WithTransport records the transport the call arrived on.
func (e *Event) WithTransport(transport string) *Event {
	e.Transport = transport
	return e
}

// WithResult adds result information to the event.
func (e *Event) WithResult(success bool, errorMsg string, durationMS int64) *Event {
	e.Success = success
	e.ErrorMessage = errorMsg
	e.DurationMS = durationMS
	return e
}
