// Package tools implements the agent's tool surface. Every capability the
// model can invoke lives here behind the Tool interface, and the Registry
// dispatches parsed tool calls to implementations.
//
// Tool results are plain strings with a leading status marker (POST_READY,
// SUCCESS, ERROR, and so on). The agent loop and the evaluator key off those
// markers, so they are part of the contract, not just formatting.
package tools

import (
	"context"
	"fmt"

	"github.com/alphacopilot/social-agent/internal/llm"
)

// Tool is one capability exposed to the model.
type Tool interface {
	Name() string
	Description() string
	Schema() llm.ToolSchema
	Execute(ctx context.Context, args map[string]any) (string, error)
}

// ToolNotFoundError reports a call to an unregistered tool name.
type ToolNotFoundError struct {
	Name      string
	Available []string
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("tool %q not found. Available: %v", e.Name, e.Available)
}

// ArgumentError reports a missing or mistyped tool argument.
type ArgumentError struct {
	Tool     string
	Argument string
	Reason   string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s: argument %q %s", e.Tool, e.Argument, e.Reason)
}

// stringArg reads a string argument. The second return is false when the
// key is absent or holds a non-string value.
func stringArg(args map[string]any, key string) (string, bool) {
	v, ok := args[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// intArg reads an integer argument, accepting the float64 that JSON
// decoding produces for numbers.
func intArg(args map[string]any, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return def
	}
}

// head returns at most n leading bytes of s.
func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
