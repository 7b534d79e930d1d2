// Package toolkit registers Opsbeacon tools with an MCP server.
//
// Every tool is a pass-through to the workspace API: the upstream JSON body
// becomes the tool result text verbatim. Failures, whether upstream status
// codes or transport errors, become error results on the MCP call, never Go
// errors, so a failed call leaves the server ready for the next one.
package toolkit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/opsbeacon/mcp-opsbeacon/pkg/client"
)

// Config holds toolkit configuration.
type Config struct {
	URL     string
	Token   string
	Timeout time.Duration
}

// Toolkit adapts the Opsbeacon workspace API into MCP tools.
type Toolkit struct {
	name   string
	client *client.Client

	// now is the clock used for interval resolution.
	now func() time.Time
}

// New creates a new Opsbeacon toolkit.
func New(name string, cfg Config) (*Toolkit, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	clientCfg := client.DefaultConfig()
	clientCfg.URL = cfg.URL
	clientCfg.Token = cfg.Token
	clientCfg.Timeout = cfg.Timeout

	c, err := client.New(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("creating opsbeacon client: %w", err)
	}

	return &Toolkit{
		name:   name,
		client: c,
		now:    time.Now,
	}, nil
}

// Kind returns the toolkit kind.
func (t *Toolkit) Kind() string {
	return "opsbeacon"
}

// Name returns the toolkit instance name.
func (t *Toolkit) Name() string {
	return t.name
}

// Tools returns the list of tool names provided by this toolkit.
func (t *Toolkit) Tools() []string {
	return []string{
		"list_commands",
		"list_connections",
		"execute",
		"executionlogs",
	}
}

// Client returns the underlying Opsbeacon client for direct use.
func (t *Toolkit) Client() *client.Client {
	return t.client
}

// Close releases resources.
func (t *Toolkit) Close() error {
	if t.client != nil {
		return t.client.Close()
	}
	return nil
}

// listCommandsInput is empty since this tool has no parameters.
type listCommandsInput struct{}

// listConnectionsInput is empty since this tool has no parameters.
type listConnectionsInput struct{}

type executeArgument struct {
	Name  string `json:"name,omitempty"`
	Value string `json:"value,omitempty"`
}

// Inputs are schema-optional; required fields are validated in the handlers
// so that a missing argument yields an error result instead of a protocol
// rejection.
type executeInput struct {
	Connection string            `json:"connection,omitempty"`
	Command    string            `json:"command,omitempty"`
	Arguments  []executeArgument `json:"arguments,omitempty"`
}

type executionLogsInput struct {
	Interval string `json:"interval,omitempty"`
	Page     int    `json:"page,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// RegisterTools registers all Opsbeacon tools with the MCP server.
func (t *Toolkit) RegisterTools(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "list_commands",
		Description: "List all available Opsbeacon commands",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ listCommandsInput) (*mcp.CallToolResult, any, error) {
		return t.handleListCommands(ctx)
	})

	mcp.AddTool(s, &mcp.Tool{
		Name:        "list_connections",
		Description: "List all available Opsbeacon connections",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ listConnectionsInput) (*mcp.CallToolResult, any, error) {
		return t.handleListConnections(ctx)
	})

	mcp.AddTool(s, &mcp.Tool{
		Name:        "execute",
		Description: "Execute an Opsbeacon operation over a connection",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in executeInput) (*mcp.CallToolResult, any, error) {
		return t.handleExecute(ctx, in)
	})

	mcp.AddTool(s, &mcp.Tool{
		Name:        "executionlogs",
		Description: "Get execution logs for a time interval (e.g. 'last week', 'last month', 'last 3 days')",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in executionLogsInput) (*mcp.CallToolResult, any, error) {
		return t.handleExecutionLogs(ctx, in)
	})
}

func (t *Toolkit) handleListCommands(ctx context.Context) (*mcp.CallToolResult, any, error) {
	payload, err := t.client.ListCommands(ctx)
	if err != nil {
		return errorResult("listing commands", err), nil, nil
	}
	return jsonResult(payload), nil, nil
}

func (t *Toolkit) handleListConnections(ctx context.Context) (*mcp.CallToolResult, any, error) {
	payload, err := t.client.ListConnections(ctx)
	if err != nil {
		return errorResult("listing connections", err), nil, nil
	}
	return jsonResult(payload), nil, nil
}

func (t *Toolkit) handleExecute(ctx context.Context, in executeInput) (*mcp.CallToolResult, any, error) {
	if in.Connection == "" || in.Command == "" {
		return errorResult("executing operation", fmt.Errorf("both connection and command are required")), nil, nil
	}

	args := make([]client.Argument, 0, len(in.Arguments))
	for _, a := range in.Arguments {
		args = append(args, client.Argument{Name: a.Name, Value: a.Value})
	}

	payload, err := t.client.Execute(ctx, in.Connection, in.Command, args)
	if err != nil {
		return errorResult("executing operation", err), nil, nil
	}
	return jsonResult(payload), nil, nil
}

func (t *Toolkit) handleExecutionLogs(ctx context.Context, in executionLogsInput) (*mcp.CallToolResult, any, error) {
	if in.Interval == "" {
		return errorResult("getting execution logs", fmt.Errorf("interval is required")), nil, nil
	}

	start, end := resolveInterval(in.Interval, t.now())

	q := client.LogQuery{
		StartDate: start,
		EndDate:   end,
		Page:      in.Page,
		Limit:     in.Limit,
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = 10
	}

	payload, err := t.client.ExecutionLogs(ctx, q)
	if err != nil {
		return errorResult("getting execution logs", err), nil, nil
	}
	return jsonResult(payload), nil, nil
}

// jsonResult wraps an upstream JSON payload, unmodified, as a tool result.
func jsonResult(payload json.RawMessage) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(payload)},
		},
	}
}

// errorResult converts a client error into an MCP error result. Upstream
// status codes travel in the message text.
func errorResult(action string, err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("Error %s: %v", action, err)},
		},
	}
}

// Verify interface compliance with the server's toolkit contract.
var _ interface {
	Kind() string
	Name() string
	RegisterTools(s *mcp.Server)
	Tools() []string
	Close() error
} = (*Toolkit)(nil)
