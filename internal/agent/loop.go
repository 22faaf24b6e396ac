// Package agent runs the ReAct loop: the model reasons, picks a tool, the
// tool runs, and the result feeds the next iteration until the done tool
// fires or the iteration budget runs out.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/alphacopilot/social-agent/internal/config"
	"github.com/alphacopilot/social-agent/internal/evals"
	"github.com/alphacopilot/social-agent/internal/llm"
	"github.com/alphacopilot/social-agent/internal/prompts"
)

// LLM is the slice of the model client the loop needs.
type LLM interface {
	Generate(ctx context.Context, messages []llm.Message, tools []llm.ToolSchema) (*llm.Response, error)
}

// ToolSet dispatches tool calls and describes the available tools.
type ToolSet interface {
	Schemas() []llm.ToolSchema
	Execute(ctx context.Context, name string, args map[string]any) (string, error)
}

// Evaluator gates write_post results before they can be published.
type Evaluator interface {
	Evaluate(post string) *evals.UnifiedScore
	FormatReport(score *evals.UnifiedScore) string
}

// Loop is the agent run state. A Loop is reusable; Run resets per-run state.
type Loop struct {
	model         LLM
	tools         ToolSet
	evaluator     Evaluator
	systemPrompt  string
	templates     *prompts.TaskTemplates
	maxIterations int
	totalMin      int
	logger        *slog.Logger

	// pendingPost holds the latest draft that reached the evaluation gate,
	// kept even when the gate rejects it.
	pendingPost string
}

// New assembles a loop from its parts.
func New(model LLM, toolset ToolSet, evaluator Evaluator, systemPrompt string,
	agentCfg config.AgentConfig, evalCfg config.EvalConfig, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	maxIterations := agentCfg.MaxIterations
	if maxIterations < 1 {
		maxIterations = 10
	}
	return &Loop{
		model:         model,
		tools:         toolset,
		evaluator:     evaluator,
		systemPrompt:  systemPrompt,
		templates:     prompts.DefaultTaskTemplates(),
		maxIterations: maxIterations,
		totalMin:      evalCfg.TotalMin,
		logger:        logger.With("component", "agent"),
	}
}

// Run executes the loop for one task and returns the final result string.
// The result always starts with a status marker: TASK_COMPLETE, EVAL_FAILED,
// or MAX_ITERATIONS_REACHED.
func (l *Loop) Run(ctx context.Context, task string) string {
	l.logger.Info("starting agent loop", "task", task)
	l.pendingPost = ""

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: l.systemPrompt},
		{Role: llm.RoleUser, Content: task},
	}

	for iteration := 1; iteration <= l.maxIterations; iteration++ {
		l.logger.Info("iteration", "n", iteration, "max", l.maxIterations)

		resp, err := l.model.Generate(ctx, messages, l.tools.Schemas())
		if err != nil {
			// Model failures are fed back as a tool message so the next
			// iteration can recover.
			l.logger.Error("model call failed", "iteration", iteration, "error", err)
			messages = append(messages, llm.Message{
				Role:    llm.RoleTool,
				Content: fmt.Sprintf("ERROR: %v", err),
			})
			continue
		}

		l.logger.Info("model step", "reasoning", clip(resp.Reasoning, 100))

		if resp.IsDone && resp.ToolCall != nil {
			result, err := l.tools.Execute(ctx, resp.ToolCall.Name, resp.ToolCall.Arguments)
			if err != nil {
				messages = append(messages, llm.Message{
					Role:    llm.RoleTool,
					Content: fmt.Sprintf("ERROR: %v", err),
				})
				continue
			}
			l.logger.Info("task complete", "result", result)
			return result
		}

		if resp.ToolCall == nil {
			// No tool call recovered, keep the reasoning and push on.
			messages = append(messages, llm.Message{
				Role:    llm.RoleAssistant,
				Content: resp.Reasoning,
			})
			continue
		}

		name := resp.ToolCall.Name
		l.logger.Info("executing tool", "tool", name)

		result, err := l.tools.Execute(ctx, name, resp.ToolCall.Arguments)
		switch {
		case err != nil:
			result = fmt.Sprintf("TOOL_ERROR: %v", err)
			l.logger.Error("tool execution failed", "tool", name, "error", err)
		case name == "write_post" && strings.Contains(result, "POST_READY"):
			gated, verdict := l.gatePost(result)
			if verdict != "" {
				// Gate rejection ends the run; retrying the same draft would
				// just burn iterations.
				return verdict
			}
			result = gated
		}

		l.logger.Debug("tool result", "result", clip(result, 200))

		messages = append(messages,
			llm.Message{
				Role:    llm.RoleAssistant,
				Content: fmt.Sprintf("Called %s: %s", name, resp.Reasoning),
			},
			llm.Message{Role: llm.RoleTool, Content: result},
		)
	}

	l.logger.Warn("max iterations reached without completion")
	return "MAX_ITERATIONS_REACHED: The agent did not complete the task within the allowed iterations."
}

// gatePost scores a POST_READY draft. On pass it returns the tool result
// annotated with the score; on fail it returns the terminal EVAL_FAILED
// verdict as the second value.
func (l *Loop) gatePost(result string) (string, string) {
	postText := ExtractPostText(result)
	if postText == "" {
		return result, ""
	}

	// Stored before evaluation so the draft survives a rejection.
	l.pendingPost = postText

	score := l.evaluator.Evaluate(postText)
	l.logger.Info("post evaluated",
		"total", score.Total, "hookiness", score.Hookiness.Total,
		"quality", score.Quality.Total, "passed", score.Passed)
	l.logger.Debug("evaluation report", "report", l.evaluator.FormatReport(score))

	if !score.Passed {
		return "", fmt.Sprintf(
			"EVAL_FAILED: Post quality check failed: %s\n\n"+
				"Score: %d/75 (min %d)\n"+
				"Hookiness: %d/25\n"+
				"Quality: %d/50\n\n"+
				"Post was NOT published. Please try a different approach.",
			score.FailureReason, score.Total, l.totalMin,
			score.Hookiness.Total, score.Quality.Total)
	}
	return result + fmt.Sprintf("\n\nEVAL_PASSED: Score %d/75", score.Total), ""
}

// SetTaskTemplates replaces the task templates RunPost builds tasks from.
// A nil argument keeps the built-in set.
func (l *Loop) SetTaskTemplates(t *prompts.TaskTemplates) {
	if t != nil {
		l.templates = t
	}
}

// PendingPost returns the last draft that reached the evaluation gate, or ""
// when no draft got that far.
func (l *Loop) PendingPost() string {
	return l.pendingPost
}

// ExtractPostText pulls the draft body out of a write_post result, dropping
// the SUGGESTIONS block.
func ExtractPostText(result string) string {
	_, after, found := strings.Cut(result, "POST TEXT:")
	if !found {
		return ""
	}
	if idx := strings.Index(after, "SUGGESTIONS:"); idx >= 0 {
		after = after[:idx]
	}
	return strings.TrimSpace(after)
}

// clip shortens s to n runes for log output. Rune-based so emoji-heavy post
// text never gets cut mid-character.
func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
