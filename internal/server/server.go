// Package server provides a factory for creating the MCP server.
package server

import (
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/opsbeacon/mcp-opsbeacon/pkg/audit"
	"github.com/opsbeacon/mcp-opsbeacon/pkg/auth"
	"github.com/opsbeacon/mcp-opsbeacon/pkg/config"
	"github.com/opsbeacon/mcp-opsbeacon/pkg/middleware"
	"github.com/opsbeacon/mcp-opsbeacon/pkg/toolkit"
)

// Version is set at build time.
var Version = "dev"

// New creates an MCP server and its Opsbeacon toolkit from a configuration.
// The caller owns the toolkit and must Close it on shutdown.
func New(cfg *config.Config) (*mcp.Server, *toolkit.Toolkit, error) {
	tk, err := toolkit.New(cfg.Server.Name, toolkit.Config{
		URL:     cfg.Upstream.URL,
		Token:   cfg.Upstream.Token,
		Timeout: cfg.Upstream.Timeout,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating opsbeacon toolkit: %w", err)
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    cfg.Server.Name,
		Version: serverVersion(cfg),
	}, nil)

	tk.RegisterTools(mcpServer)

	authenticator, err := buildAuthenticator(cfg)
	if err != nil {
		_ = tk.Close()
		return nil, nil, err
	}

	auditLogger := buildAuditLogger(cfg)

	// Innermost middleware is added first; MCPToolCallMiddleware is added
	// last so it runs first and the others can read its CallContext.
	mcpServer.AddReceivingMiddleware(middleware.MCPAuditMiddleware(auditLogger))
	mcpServer.AddReceivingMiddleware(middleware.MCPLoggingMiddleware(slog.Default()))
	mcpServer.AddReceivingMiddleware(middleware.MCPToolCallMiddleware(authenticator, cfg.Server.Transport))

	return mcpServer, tk, nil
}

// NewWithConfig creates a server from a YAML config file.
func NewWithConfig(path string) (*mcp.Server, *toolkit.Toolkit, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	return New(cfg)
}

// NewWithDefaults creates a server configured from the environment alone.
func NewWithDefaults() (*mcp.Server, *toolkit.Toolkit, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, nil, err
	}
	return New(cfg)
}

// buildAuthenticator builds the inbound authenticator. Inbound auth only
// applies to the HTTP transport; on stdio the process boundary is the trust
// boundary.
func buildAuthenticator(cfg *config.Config) (middleware.Authenticator, error) {
	if cfg.Server.Transport != "http" {
		return &middleware.NoopAuthenticator{}, nil
	}
	authenticator, err := auth.FromConfig(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("configuring inbound auth: %w", err)
	}
	return authenticator, nil
}

func buildAuditLogger(cfg *config.Config) audit.Logger {
	if !cfg.Audit.Enabled {
		return audit.NoopLogger{}
	}
	return audit.NewSlogLogger(slog.Default())
}

// serverVersion prefers an explicit config version over the build version.
func serverVersion(cfg *config.Config) string {
	if cfg.Server.Version != "" && cfg.Server.Version != "dev" {
		return cfg.Server.Version
	}
	return Version
}
