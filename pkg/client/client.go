// Package client provides an HTTP client for the Opsbeacon workspace API.
//
// The client is a thin pass-through: response bodies are returned verbatim
// as raw JSON, and upstream failures surface as *APIError values carrying
// the upstream status code. It performs no retries and holds no state
// beyond the immutable token and base URL.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// API paths, fixed by the Opsbeacon workspace API.
const (
	commandsPath    = "/workspace/v2/commands"
	connectionsPath = "/workspace/v2/connections"
	eventLogsPath   = "/workspace/v2/eventlogs"
	triggerPath     = "/trigger/v1/api"
)

// maxResponseBytes caps how much of an upstream response is read.
const maxResponseBytes = 16 << 20

// Config holds client configuration.
type Config struct {
	URL     string
	Token   string
	Timeout time.Duration

	// HTTPClient overrides the default HTTP client. Used in tests.
	HTTPClient *http.Client
}

// DefaultConfig returns a Config with defaults applied.
func DefaultConfig() Config {
	return Config{Timeout: 30 * time.Second}
}

// Client calls the Opsbeacon workspace API with bearer authentication.
// It is safe for concurrent use.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
}

// New creates a new Client.
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("opsbeacon URL is required")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("opsbeacon token is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	httpc := cfg.HTTPClient
	if httpc == nil {
		httpc = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		token:   cfg.Token,
		httpc:   httpc,
	}, nil
}

// APIError is a non-2xx response from the Opsbeacon API.
type APIError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("opsbeacon API error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("opsbeacon API error: status %d: %s", e.StatusCode, e.Message)
}

// Argument is a named argument passed to an Opsbeacon command.
type Argument struct {
	Name  string
	Value string
}

// LogQuery selects a page of execution logs.
type LogQuery struct {
	StartDate string // YYYYMMDD
	EndDate   string // YYYYMMDD
	Page      int
	Limit     int
}

// ListCommands returns all commands visible in the workspace.
func (c *Client) ListCommands(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, commandsPath, nil)
}

// ListConnections returns all connections visible in the workspace.
func (c *Client) ListConnections(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, connectionsPath, nil)
}

// ExecutionLogs returns execution logs for a date range, newest first.
func (c *Client) ExecutionLogs(ctx context.Context, q LogQuery) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("startDate", q.StartDate)
	params.Set("endDate", q.EndDate)
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("limit", strconv.Itoa(q.Limit))
	params.Set("orderBy", "timestamp")
	params.Set("direction", "desc")
	return c.get(ctx, eventLogsPath, params)
}

// Execute runs a command over a connection via the trigger API.
func (c *Client) Execute(ctx context.Context, connection, command string, args []Argument) (json.RawMessage, error) {
	payload := struct {
		CommandLine string `json:"commandLine"`
	}{CommandLine: BuildCommandLine(connection, command, args)}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding trigger payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+triggerPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	return c.do(req)
}

// BuildCommandLine assembles the trigger API command line:
// "<connection> <command> [--name value ...]".
func BuildCommandLine(connection, command string, args []Argument) string {
	var b strings.Builder
	b.WriteString(connection)
	b.WriteString(" ")
	b.WriteString(command)
	for _, arg := range args {
		b.WriteString(" --")
		b.WriteString(arg.Name)
		b.WriteString(" ")
		b.WriteString(arg.Value)
	}
	return b.String()
}

// Close releases idle connections held by the underlying HTTP client.
func (c *Client) Close() error {
	c.httpc.CloseIdleConnections()
	return nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if req.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling opsbeacon API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: snippet(body)}
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("invalid JSON response from opsbeacon API: %s", snippet(body))
	}
	return json.RawMessage(body), nil
}

// snippet trims a response body for inclusion in an error message.
func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	const max = 512
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
