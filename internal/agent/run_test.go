package agent

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alphacopilot/social-agent/internal/llm"
	"github.com/alphacopilot/social-agent/internal/prompts"
	"github.com/alphacopilot/social-agent/internal/tools"
)

func TestRunPostBuildsTaskFromTemplate(t *testing.T) {
	registry := tools.NewRegistry(nil)
	registry.Register(tools.NewDoneTool())

	model := &scriptedLLM{steps: []*llm.Response{
		toolCall("done", map[string]any{"summary": "posted"}),
	}}
	loop := newTestLoop(model, registry, &stubEvaluator{score: passingScore()}, 5)

	result, err := loop.RunPost(context.Background(), "morning", "twitter", "")
	if err != nil {
		t.Fatal(err)
	}
	if result != "TASK_COMPLETE: posted" {
		t.Errorf("unexpected result %q", result)
	}

	task := model.transcripts[0][1].Content
	if !strings.Contains(task, "morning options post") {
		t.Errorf("task prompt not from template: %q", task)
	}
	if !strings.Contains(task, "Target platform: twitter.") {
		t.Errorf("platform hint missing: %q", task)
	}
}

func TestRunPostUsesTemplateOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.toml")
	override := `morning = "Post one covered call idea for $SPY. Keep it under 200 characters."`
	if err := os.WriteFile(path, []byte(override), 0640); err != nil {
		t.Fatal(err)
	}
	templates, err := prompts.LoadTaskTemplates(path)
	if err != nil {
		t.Fatal(err)
	}

	registry := tools.NewRegistry(nil)
	registry.Register(tools.NewDoneTool())

	model := &scriptedLLM{steps: []*llm.Response{
		toolCall("done", map[string]any{"summary": "posted"}),
	}}
	loop := newTestLoop(model, registry, &stubEvaluator{score: passingScore()}, 5)
	loop.SetTaskTemplates(templates)

	if _, err := loop.RunPost(context.Background(), "morning", "", ""); err != nil {
		t.Fatal(err)
	}

	task := model.transcripts[0][1].Content
	if !strings.Contains(task, "covered call idea for $SPY") {
		t.Errorf("override not used: %q", task)
	}
	if strings.Contains(task, "morning options post") {
		t.Errorf("built-in template leaked through: %q", task)
	}

	// Post types the file does not name keep their built-in prompt.
	if got := templates.Prompt("eod", ""); !strings.Contains(got, "end-of-day momentum post") {
		t.Errorf("unrelated template changed: %q", got)
	}
}

func TestRunPostReportsIncompleteRuns(t *testing.T) {
	registry := tools.NewRegistry(nil)
	registry.Register(&stubTool{name: "probe", result: "ok"})

	model := &scriptedLLM{steps: []*llm.Response{toolCall("probe", nil)}}
	loop := newTestLoop(model, registry, &stubEvaluator{score: passingScore()}, 2)

	result, err := loop.RunPost(context.Background(), "eod", "", "")
	if err == nil {
		t.Fatal("incomplete run must surface as an error")
	}
	if !strings.HasPrefix(result, "MAX_ITERATIONS_REACHED") {
		t.Errorf("raw result must still be returned: %q", result)
	}
}
