// Package auth provides inbound authentication for the HTTP transport.
package auth

import (
	"context"

	"github.com/opsbeacon/mcp-opsbeacon/pkg/middleware"
)

// WithToken adds an inbound token to the context.
// Delegates to middleware.WithToken so both packages share the same key.
func WithToken(ctx context.Context, token string) context.Context {
	return middleware.WithToken(ctx, token)
}

// GetToken retrieves an inbound token from the context.
// Delegates to middleware.GetToken so both packages share the same key.
func GetToken(ctx context.Context) string {
	return middleware.GetToken(ctx)
}
