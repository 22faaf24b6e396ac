package llm

import (
	"strings"
	"testing"
)

func sampleTools() []ToolSchema {
	return []ToolSchema{
		{
			Name:        "write_post",
			Description: "Draft a social media post",
			Parameters: ObjectParameters(map[string]ParameterDef{
				"content":  {Type: "string", Description: "The post text"},
				"platform": {Type: "string", Description: "Target platform", Enum: []string{"twitter", "threads"}},
			}, "content"),
		},
		{
			Name:        "done",
			Description: "Mark the task complete",
			Parameters:  ObjectParameters(map[string]ParameterDef{"summary": {Type: "string", Description: "What was accomplished"}}, "summary"),
		},
	}
}

func TestBuildPromptIncludesSystemMessage(t *testing.T) {
	prompt := BuildPrompt([]Message{
		{Role: RoleSystem, Content: "You are a helpful assistant."},
		{Role: RoleUser, Content: "Hello"},
	}, nil)

	if !strings.Contains(prompt, "You are a helpful assistant.") {
		t.Error("system message missing")
	}
	if !strings.Contains(prompt, "USER: Hello") {
		t.Error("user message missing")
	}
	// System message must appear once, not again in the transcript.
	if strings.Count(prompt, "You are a helpful assistant.") != 1 {
		t.Error("system message duplicated in transcript")
	}
}

func TestBuildPromptIncludesToolDescriptions(t *testing.T) {
	prompt := BuildPrompt([]Message{{Role: RoleUser, Content: "Test"}}, sampleTools())

	for _, want := range []string{
		"## Tool Calling Format",
		`{"tool": "tool_name", "arguments": {"arg1": "value1"}}`,
		"**write_post**: Draft a social media post",
		"- content (string) (required): The post text",
		"- platform (string) (optional): Target platform",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildPromptTranscriptOrder(t *testing.T) {
	prompt := BuildPrompt([]Message{
		{Role: RoleSystem, Content: "System prompt"},
		{Role: RoleUser, Content: "User message 1"},
		{Role: RoleAssistant, Content: "Assistant response"},
		{Role: RoleTool, Content: "Tool result here"},
		{Role: RoleUser, Content: "User message 2"},
	}, nil)

	for _, want := range []string{
		"USER: User message 1",
		"ASSISTANT: Assistant response",
		"TOOL RESULT:\nTool result here",
		"USER: User message 2",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	if idx1, idx2 := strings.Index(prompt, "User message 1"), strings.Index(prompt, "User message 2"); idx1 > idx2 {
		t.Error("transcript out of order")
	}
	if !strings.HasSuffix(prompt, "\nASSISTANT: ") {
		t.Errorf("prompt must end with the assistant cue, got %q", prompt[len(prompt)-20:])
	}
}

func TestBuildPromptDeterministic(t *testing.T) {
	msgs := []Message{{Role: RoleUser, Content: "Test"}}
	first := BuildPrompt(msgs, sampleTools())
	for i := 0; i < 10; i++ {
		if got := BuildPrompt(msgs, sampleTools()); got != first {
			t.Fatal("prompt rendering is not deterministic")
		}
	}
}
