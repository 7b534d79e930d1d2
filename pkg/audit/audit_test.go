package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	e := NewEvent("list_commands").
		WithRequestID("req-1").
		WithUser("apikey:ci").
		WithTransport("http").
		WithResult(false, "status 500", 42)

	assert.NotEmpty(t, e.ID)
	assert.False(t, e.Timestamp.IsZero())
	assert.Equal(t, "req-1", e.RequestID)
	assert.Equal(t, "apikey:ci", e.UserID)
	assert.Equal(t, "http", e.Transport)
	assert.False(t, e.Success)
	assert.Equal(t, "status 500", e.ErrorMessage)
	assert.Equal(t, int64(42), e.DurationMS)

	ids := map[string]bool{e.ID: true}
	assert.False(t, ids[NewEvent("x").ID], "event IDs must be unique")
}

func TestSlogLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	e := NewEvent("execute").WithRequestID("req-2").WithResult(true, "", 7)
	require.NoError(t, logger.Log(context.Background(), e))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "tool call", record["msg"])
	assert.Equal(t, "execute", record["tool"])
	assert.Equal(t, "req-2", record["request_id"])
	assert.Equal(t, true, record["success"])
	assert.Equal(t, "INFO", record["level"])
}

func TestSlogLoggerFailureLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	e := NewEvent("execute").WithResult(false, "boom", 7)
	require.NoError(t, logger.Log(context.Background(), e))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "WARN", record["level"])
	assert.Equal(t, "boom", record["error"])
}

func TestNoopLogger(t *testing.T) {
	require.NoError(t, NoopLogger{}.Log(context.Background(), NewEvent("x")))
}
