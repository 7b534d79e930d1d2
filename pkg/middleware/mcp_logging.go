package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// MCPLoggingMiddleware creates MCP protocol-level middleware that logs
// tools/call requests with their outcome and duration. It never logs tool
// arguments, which may carry credentials.
func MCPLoggingMiddleware(logger *slog.Logger) mcp.Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			if method != methodToolsCall {
				return next(ctx, method, req)
			}

			start := time.Now()
			result, err := next(ctx, method, req)
			duration := time.Since(start)

			attrs := []slog.Attr{
				slog.Duration("duration", duration),
			}
			if cc := GetCallContext(ctx); cc != nil {
				attrs = append(attrs,
					slog.String("request_id", cc.RequestID),
					slog.String("tool", cc.ToolName),
				)
			}

			switch {
			case err != nil:
				attrs = append(attrs, slog.String("error", err.Error()))
				logger.LogAttrs(ctx, slog.LevelError, "tool call failed", attrs...)
			case isErrorResult(result):
				attrs = append(attrs, slog.String("error", errorResultMessage(result)))
				logger.LogAttrs(ctx, slog.LevelWarn, "tool call returned error", attrs...)
			default:
				logger.LogAttrs(ctx, slog.LevelInfo, "tool call completed", attrs...)
			}

			return result, err
		}
	}
}

// isErrorResult reports whether an MCP result is a tool error result.
func isErrorResult(result mcp.Result) bool {
	callResult, ok := result.(*mcp.CallToolResult)
	return ok && callResult != nil && callResult.IsError
}

// errorResultMessage extracts the first text content of an error result.
func errorResultMessage(result mcp.Result) string {
	callResult, ok := result.(*mcp.CallToolResult)
	if !ok || callResult == nil {
		return ""
	}
	for _, content := range callResult.Content {
		if tc, ok := content.(*mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}
