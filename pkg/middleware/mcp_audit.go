package middleware

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/opsbeacon/mcp-opsbeacon/pkg/audit"
)

// MCPAuditMiddleware creates MCP protocol-level middleware that records an
// audit event for every tools/call request. Events are logged asynchronously
// so a slow audit sink never delays the response.
func MCPAuditMiddleware(logger audit.Logger) mcp.Middleware {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			if method != methodToolsCall {
				return next(ctx, method, req)
			}

			start := time.Now()
			result, err := next(ctx, method, req)
			duration := time.Since(start)

			cc := GetCallContext(ctx)
			if cc == nil {
				// Tool-call middleware did not run; nothing to attribute.
				return result, err
			}

			event := buildAuditEvent(cc, result, err, duration)
			go func() {
				_ = logger.Log(context.Background(), event)
			}()

			return result, err
		}
	}
}

// buildAuditEvent assembles an audit event from the call context and outcome.
func buildAuditEvent(cc *CallContext, result mcp.Result, err error, duration time.Duration) *audit.Event {
	success := err == nil
	errorMsg := ""
	switch {
	case err != nil:
		errorMsg = err.Error()
	case isErrorResult(result):
		success = false
		errorMsg = errorResultMessage(result)
	}

	return audit.NewEvent(cc.ToolName).
		WithRequestID(cc.RequestID).
		WithUser(cc.UserID).
		WithTransport(cc.Transport).
		WithResult(success, errorMsg, duration.Milliseconds())
}
