package llm

import (
	"fmt"
	"sort"
	"strings"
)

// BuildPrompt flattens the conversation and tool schemas into a single text
// prompt. The system message comes first, then the tool calling convention,
// then the transcript, ending with a trailing "ASSISTANT: " for the model to
// continue. Parameter names are emitted in sorted order so the prompt is
// deterministic.
func BuildPrompt(messages []Message, tools []ToolSchema) string {
	var parts []string

	for _, msg := range messages {
		if msg.Role == RoleSystem {
			parts = append(parts, msg.Content)
			break
		}
	}

	parts = append(parts,
		"\n## Tool Calling Format\n",
		"To call a tool, respond with JSON in this exact format:",
		"```json",
		`{"tool": "tool_name", "arguments": {"arg1": "value1"}}`,
		"```",
		"\nAvailable tools:\n")

	for _, tool := range tools {
		parts = append(parts, fmt.Sprintf("- **%s**: %s", tool.Name, tool.Description))

		names := make([]string, 0, len(tool.Parameters.Properties))
		for name := range tool.Parameters.Properties {
			names = append(names, name)
		}
		sort.Strings(names)

		if len(names) > 0 {
			parts = append(parts, "  Parameters:")
			for _, name := range names {
				def := tool.Parameters.Properties[name]
				req := "(optional)"
				for _, r := range tool.Parameters.Required {
					if r == name {
						req = "(required)"
						break
					}
				}
				ptype := def.Type
				if ptype == "" {
					ptype = "string"
				}
				parts = append(parts, fmt.Sprintf("    - %s (%s) %s: %s", name, ptype, req, def.Description))
			}
		}
		parts = append(parts, "")
	}

	parts = append(parts,
		"\nIMPORTANT: Always respond with a tool call JSON block. Do not just describe what you would do.",
		"\n---\n")

	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			// already emitted above
		case RoleUser:
			parts = append(parts, fmt.Sprintf("USER: %s\n", msg.Content))
		case RoleAssistant:
			parts = append(parts, fmt.Sprintf("ASSISTANT: %s\n", msg.Content))
		case RoleTool:
			parts = append(parts, fmt.Sprintf("TOOL RESULT:\n%s\n", msg.Content))
		}
	}

	parts = append(parts, "\nASSISTANT: ")

	return strings.Join(parts, "\n")
}
