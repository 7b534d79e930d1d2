package middleware

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// methodToolsCall is the MCP method name for tool invocations.
const methodToolsCall = "tools/call"

// MCPToolCallMiddleware creates MCP protocol-level middleware that intercepts
// tools/call requests. For each call it:
//  1. Extracts the tool name from the request
//  2. Creates a CallContext with a fresh request ID
//  3. Runs authentication to identify the caller
//
// Authentication failures are returned as MCP error results, not Go errors,
// so the session stays alive.
func MCPToolCallMiddleware(authenticator Authenticator, transport string) mcp.Middleware {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			if method != methodToolsCall {
				return next(ctx, method, req)
			}

			toolName, err := extractToolName(req)
			if err != nil {
				return NewToolResultError(fmt.Sprintf("invalid request: %v", err)), nil
			}

			cc := NewCallContext(uuid.NewString())
			cc.ToolName = toolName
			cc.Transport = transport
			ctx = WithCallContext(ctx, cc)

			userInfo, err := authenticator.Authenticate(ctx)
			if err != nil {
				return NewToolResultError("authentication failed: " + err.Error()), nil
			}
			if userInfo != nil {
				cc.UserID = userInfo.UserID
				cc.Roles = userInfo.Roles
			}

			return next(ctx, method, req)
		}
	}
}

// extractToolName extracts the tool name from a tools/call request.
func extractToolName(req mcp.Request) (string, error) {
	params := req.GetParams()
	if params == nil {
		return "", fmt.Errorf("missing params")
	}

	callParams, ok := params.(*mcp.CallToolParamsRaw)
	if !ok || callParams == nil {
		return "", fmt.Errorf("unexpected params type: %T", params)
	}

	if callParams.Name == "" {
		return "", fmt.Errorf("missing tool name")
	}
	return callParams.Name, nil
}
