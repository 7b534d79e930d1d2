package middleware_test

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsbeacon/mcp-opsbeacon/pkg/audit"
	"github.com/opsbeacon/mcp-opsbeacon/pkg/middleware"
)

// testAuditStore collects audit events for assertions.
type testAuditStore struct {
	mu     sync.Mutex
	events []*audit.Event
}

func (s *testAuditStore) Log(_ context.Context, event *audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *testAuditStore) snapshot() []*audit.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*audit.Event(nil), s.events...)
}

// waitForAuditEvents waits for the async audit goroutine to record an event.
func waitForAuditEvents(t *testing.T, store *testAuditStore) []*audit.Event {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if events := store.snapshot(); len(events) > 0 {
			return events
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("timed out waiting for audit events")
	return nil
}

// testAuthenticator returns a fixed user or error.
type testAuthenticator struct {
	userInfo *middleware.UserInfo
	err      error
}

func (a *testAuthenticator) Authenticate(context.Context) (*middleware.UserInfo, error) {
	return a.userInfo, a.err
}

// newTestServer builds a server with one echo-style tool and the full
// middleware chain, then connects an in-memory client session.
func newTestServer(t *testing.T, authenticator middleware.Authenticator, auditLogger audit.Logger, logger *slog.Logger, toolErr bool) *mcp.ClientSession {
	t.Helper()

	server := mcp.NewServer(&mcp.Implementation{Name: "test-server", Version: "v0.0.1"}, nil)
	mcp.AddTool(server, &mcp.Tool{Name: "probe"}, func(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
		if toolErr {
			return &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{&mcp.TextContent{Text: "Error probing: status 500"}},
			}, nil, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: "ok"}},
		}, nil, nil
	})

	// Innermost first; MCPToolCallMiddleware last so it runs first.
	server.AddReceivingMiddleware(middleware.MCPAuditMiddleware(auditLogger))
	server.AddReceivingMiddleware(middleware.MCPLoggingMiddleware(logger))
	server.AddReceivingMiddleware(middleware.MCPToolCallMiddleware(authenticator, "stdio"))

	ctx := context.Background()
	t1, t2 := mcp.NewInMemoryTransports()
	_, err := server.Connect(ctx, t1, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, t2, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func TestChain_SuccessfulCall(t *testing.T) {
	store := &testAuditStore{}
	var logBuf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuf, nil))
	authenticator := &testAuthenticator{userInfo: &middleware.UserInfo{UserID: "apikey:ci", AuthType: "apikey"}}

	session := newTestServer(t, authenticator, store, logger, false)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: "probe"})
	require.NoError(t, err)
	assert.False(t, result.IsError)

	events := waitForAuditEvents(t, store)
	event := events[0]
	assert.Equal(t, "probe", event.ToolName)
	assert.Equal(t, "apikey:ci", event.UserID)
	assert.Equal(t, "stdio", event.Transport)
	assert.NotEmpty(t, event.RequestID)
	assert.True(t, event.Success)

	logged := logBuf.String()
	assert.Contains(t, logged, "tool call completed")
	assert.Contains(t, logged, "tool=probe")
	assert.Contains(t, logged, event.RequestID, "log line and audit event must share a request ID")
}

func TestChain_ToolErrorIsAuditedAndLogged(t *testing.T) {
	store := &testAuditStore{}
	var logBuf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuf, nil))
	authenticator := &testAuthenticator{userInfo: &middleware.UserInfo{UserID: "u"}}

	session := newTestServer(t, authenticator, store, logger, true)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: "probe"})
	require.NoError(t, err, "tool errors must stay inside the result")
	assert.True(t, result.IsError)

	events := waitForAuditEvents(t, store)
	assert.False(t, events[0].Success)
	assert.Contains(t, events[0].ErrorMessage, "status 500")

	assert.Contains(t, logBuf.String(), "tool call returned error")
}

func TestChain_AuthenticationFailure(t *testing.T) {
	store := &testAuditStore{}
	authenticator := &testAuthenticator{err: fmt.Errorf("invalid API key")}

	session := newTestServer(t, authenticator, store, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)), false)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: "probe"})
	require.NoError(t, err, "auth failures must be error results, not protocol errors")
	require.True(t, result.IsError)

	require.NotEmpty(t, result.Content)
	tc, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(tc.Text, "authentication failed"), "got %q", tc.Text)

	// The rejection happens before the audit middleware runs.
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, store.snapshot())
}

func TestChain_NonToolMethodsPassThrough(t *testing.T) {
	store := &testAuditStore{}
	authenticator := &testAuthenticator{err: fmt.Errorf("should not be called")}

	session := newTestServer(t, authenticator, store, slog.Default(), false)

	// tools/list is not gated by authentication.
	tools, err := session.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)
	require.Len(t, tools.Tools, 1)
	assert.Equal(t, "probe", tools.Tools[0].Name)
	assert.Empty(t, store.snapshot())
}

func TestCallContext(t *testing.T) {
	cc := middleware.NewCallContext("req-1")
	assert.Equal(t, "req-1", cc.RequestID)
	assert.False(t, cc.StartTime.IsZero())

	ctx := middleware.WithCallContext(context.Background(), cc)
	assert.Same(t, cc, middleware.GetCallContext(ctx))
	assert.Nil(t, middleware.GetCallContext(context.Background()))
}

func TestTokenContext(t *testing.T) {
	ctx := middleware.WithToken(context.Background(), "tok")
	assert.Equal(t, "tok", middleware.GetToken(ctx))
	assert.Empty(t, middleware.GetToken(context.Background()))
}
