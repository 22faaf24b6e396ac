// Package llm implements the Gemini client, the prompt rendering that
// exposes the tool-calling convention to the model, and the parser that
// decodes tool calls back out of free-form model text. Rendering and parsing
// are two halves of one contract and must stay in sync.
package llm

// Message roles used in the conversation history.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// DoneToolName is the reserved terminal tool name. A parsed tool call with
// this name marks the run as complete.
const DoneToolName = "done"

// Message is a single conversation entry.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ToolCall is a tool invocation recovered from model output.
type ToolCall struct {
	Name      string         `json:"tool"`
	Arguments map[string]any `json:"arguments"`
}

// ToolSchema describes a tool to the model inside the prompt text.
type ToolSchema struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Parameters  Parameters `json:"parameters"`
}

// Parameters is a JSON-Schema-shaped parameter block.
type Parameters struct {
	Type       string                  `json:"type"`
	Properties map[string]ParameterDef `json:"properties"`
	Required   []string                `json:"required,omitempty"`
}

// ParameterDef defines a single tool parameter.
type ParameterDef struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Enum        []string `json:"enum,omitempty"`
}

// ObjectParameters is a convenience constructor for the common case.
func ObjectParameters(props map[string]ParameterDef, required ...string) Parameters {
	return Parameters{
		Type:       "object",
		Properties: props,
		Required:   required,
	}
}

// Response is the structured result of one model call.
type Response struct {
	// Reasoning is the raw model text.
	Reasoning string
	// ToolCall is nil when no tool call could be recovered.
	ToolCall *ToolCall
	// IsDone is true iff the recovered tool name is DoneToolName.
	IsDone bool
	// GroundingSources lists web sources when search grounding was used.
	GroundingSources []string
}
