package tools

import (
	"context"
	"log/slog"

	"github.com/alphacopilot/social-agent/internal/llm"
)

// Registry holds the tools exposed to the model. Schemas render in
// registration order so the prompt stays stable between iterations.
type Registry struct {
	order  []string
	tools  map[string]Tool
	logger *slog.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		tools:  make(map[string]Tool),
		logger: logger.With("component", "tools"),
	}
}

// Register adds a tool. Re-registering a name replaces the tool but keeps
// its original position in the schema order.
func (r *Registry) Register(t Tool) {
	name := t.Name()
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = t
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (Tool, error) {
	t, ok := r.tools[name]
	if !ok {
		return nil, &ToolNotFoundError{Name: name, Available: r.Names()}
	}
	return t, nil
}

// Execute dispatches a tool call, checking the tool's required arguments
// are present before running it.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (string, error) {
	t, err := r.Get(name)
	if err != nil {
		return "", err
	}
	if args == nil {
		args = map[string]any{}
	}
	for _, key := range t.Schema().Parameters.Required {
		if _, ok := args[key]; !ok {
			return "", &ArgumentError{Tool: name, Argument: key, Reason: "is required"}
		}
	}

	r.logger.Debug("executing tool", "tool", name)
	return t.Execute(ctx, args)
}

// Schemas returns every registered tool schema in registration order.
func (r *Registry) Schemas() []llm.ToolSchema {
	schemas := make([]llm.ToolSchema, 0, len(r.order))
	for _, name := range r.order {
		schemas = append(schemas, r.tools[name].Schema())
	}
	return schemas
}

// Names lists registered tool names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Len reports the number of registered tools.
func (r *Registry) Len() int {
	return len(r.tools)
}
