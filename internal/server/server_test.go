package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsbeacon/mcp-opsbeacon/pkg/config"
)

func testConfig(url string) *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Name: "mcp-opsbeacon", Version: "dev", Transport: "stdio", Address: ":8080"},
		Upstream: config.UpstreamConfig{URL: url, Token: "abc123"},
	}
}

func connect(t *testing.T, srv *mcp.Server) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	t1, t2 := mcp.NewInMemoryTransports()
	_, err := srv.Connect(ctx, t1, nil)
	require.NoError(t, err)
	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, t2, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func TestNew_RegistersAllTools(t *testing.T) {
	srv, tk, err := New(testConfig("http://localhost:8080"))
	require.NoError(t, err)
	defer func() { _ = tk.Close() }()

	session := connect(t, srv)

	tools, err := session.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)

	names := make([]string, 0, len(tools.Tools))
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"list_commands", "list_connections", "execute", "executionlogs"}, names)
}

func TestNew_EndToEndToolCall(t *testing.T) {
	const upstream = `{"commands":[{"name":"deploy"}]}`
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer abc123", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(upstream))
	}))
	defer ts.Close()

	srv, tk, err := New(testConfig(ts.URL))
	require.NoError(t, err)
	defer func() { _ = tk.Close() }()

	session := connect(t, srv)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: "list_commands"})
	require.NoError(t, err)
	require.False(t, result.IsError)
	tc, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Equal(t, upstream, tc.Text)
}

func TestNew_InvalidAuthConfig(t *testing.T) {
	cfg := testConfig("http://localhost:8080")
	cfg.Server.Transport = "http"
	cfg.Auth.Required = true // no api keys, no jwt key

	_, _, err := New(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth is required")
}

func TestNewWithConfig(t *testing.T) {
	t.Run("valid config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
server:
  name: opsbeacon-staging
upstream:
  url: http://localhost:8080
  token: abc123
`), 0o600))

		srv, tk, err := NewWithConfig(path)
		require.NoError(t, err)
		defer func() { _ = tk.Close() }()
		assert.NotNil(t, srv)
		assert.Equal(t, "opsbeacon-staging", tk.Name())
	})

	t.Run("missing config file", func(t *testing.T) {
		_, _, err := NewWithConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})
}

func TestNewWithDefaults_MissingToken(t *testing.T) {
	t.Setenv(config.EnvToken, "")

	_, _, err := NewWithDefaults()
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.EnvToken)
}

func TestNewWithDefaults_FromEnvironment(t *testing.T) {
	t.Setenv(config.EnvToken, "abc123")
	t.Setenv(config.EnvAPIURL, "http://localhost:9999")

	srv, tk, err := NewWithDefaults()
	require.NoError(t, err)
	defer func() { _ = tk.Close() }()
	assert.NotNil(t, srv)
}

func TestServerVersion(t *testing.T) {
	cfg := testConfig("http://localhost:8080")
	assert.Equal(t, Version, serverVersion(cfg))

	cfg.Server.Version = "1.2.3"
	assert.Equal(t, "1.2.3", serverVersion(cfg))
}
