package middleware

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Authenticator validates inbound authentication credentials.
type Authenticator interface {
	// Authenticate validates credentials found in the context and returns
	// user info, or an error when the credentials are missing or invalid.
	Authenticate(ctx context.Context) (*UserInfo, error)
}

// UserInfo holds authenticated user information.
type UserInfo struct {
	UserID   string
	Roles    []string
	AuthType string // "apikey", "jwt", "anonymous"
}

// NoopAuthenticator always succeeds. Used for the stdio transport, where
// the process boundary is the trust boundary.
type NoopAuthenticator struct {
	DefaultUserID string
}

// Authenticate always returns a default user.
func (n *NoopAuthenticator) Authenticate(context.Context) (*UserInfo, error) {
	userID := n.DefaultUserID
	if userID == "" {
		userID = "anonymous"
	}
	return &UserInfo{UserID: userID, AuthType: "anonymous"}, nil
}

// NewToolResultError creates an MCP error result with the given message.
func NewToolResultError(errMsg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: errMsg},
		},
	}
}

// Verify interface compliance.
var _ Authenticator = (*NoopAuthenticator)(nil)
