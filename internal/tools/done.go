package tools

import (
	"context"

	"github.com/alphacopilot/social-agent/internal/llm"
)

// DoneTool signals task completion. The agent loop treats its result as the
// run's final answer.
type DoneTool struct{}

// NewDoneTool returns the terminal tool.
func NewDoneTool() *DoneTool { return &DoneTool{} }

func (t *DoneTool) Name() string { return llm.DoneToolName }

func (t *DoneTool) Description() string {
	return "Signal that the task is complete and provide a summary."
}

func (t *DoneTool) Schema() llm.ToolSchema {
	return llm.ToolSchema{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: llm.ObjectParameters(map[string]llm.ParameterDef{
			"summary": {
				Type:        "string",
				Description: "Summary of what was accomplished",
			},
		}, "summary"),
	}
}

func (t *DoneTool) Execute(_ context.Context, args map[string]any) (string, error) {
	summary, _ := stringArg(args, "summary")
	return "TASK_COMPLETE: " + summary, nil
}
