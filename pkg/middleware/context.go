// Package middleware provides MCP protocol-level middleware for the server.
package middleware

import (
	"context"
	"time"
)

// contextKey is a private type for context keys.
type contextKey int

const (
	callContextKey contextKey = iota
	tokenContextKey
)

// CallContext holds per-call metadata for a tools/call request. It is
// created by MCPToolCallMiddleware and read by the logging and audit
// middlewares further down the chain.
type CallContext struct {
	RequestID string
	StartTime time.Time

	ToolName  string
	Transport string // "stdio" or "http"

	// User information, populated by authentication.
	UserID string
	Roles  []string
}

// NewCallContext creates a call context for a request.
func NewCallContext(requestID string) *CallContext {
	return &CallContext{
		RequestID: requestID,
		StartTime: time.Now(),
	}
}

// WithCallContext adds the call context to the context.
func WithCallContext(ctx context.Context, cc *CallContext) context.Context {
	return context.WithValue(ctx, callContextKey, cc)
}

// GetCallContext retrieves the call context, or nil when absent.
func GetCallContext(ctx context.Context) *CallContext {
	if cc, ok := ctx.Value(callContextKey).(*CallContext); ok {
		return cc
	}
	return nil
}

// WithToken adds an inbound authentication token to the context. The HTTP
// transport middleware sets it; authenticators read it.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey, token)
}

// GetToken retrieves the inbound authentication token from the context.
func GetToken(ctx context.Context) string {
	if token, ok := ctx.Value(tokenContextKey).(string); ok {
		return token
	}
	return ""
}
