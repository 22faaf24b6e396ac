package agent

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/alphacopilot/social-agent/internal/config"
	"github.com/alphacopilot/social-agent/internal/evals"
	"github.com/alphacopilot/social-agent/internal/llm"
	"github.com/alphacopilot/social-agent/internal/tools"
)

// scriptedLLM replays canned responses and records the transcript it is
// handed on each call. The last step repeats once the script runs out.
type scriptedLLM struct {
	steps       []*llm.Response
	errs        []error
	calls       int
	transcripts [][]llm.Message
}

func (s *scriptedLLM) Generate(_ context.Context, messages []llm.Message, _ []llm.ToolSchema) (*llm.Response, error) {
	s.transcripts = append(s.transcripts, append([]llm.Message(nil), messages...))
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	if i >= len(s.steps) {
		i = len(s.steps) - 1
	}
	return s.steps[i], nil
}

func toolCall(name string, args map[string]any) *llm.Response {
	if args == nil {
		args = map[string]any{}
	}
	return &llm.Response{
		Reasoning: "calling " + name,
		ToolCall:  &llm.ToolCall{Name: name, Arguments: args},
		IsDone:    name == llm.DoneToolName,
	}
}

type stubTool struct {
	name   string
	result string
	err    error
	calls  int
}

func (s *stubTool) Name() string        { return s.name }
func (s *stubTool) Description() string { return s.name }
func (s *stubTool) Schema() llm.ToolSchema {
	return llm.ToolSchema{
		Name:       s.name,
		Parameters: llm.ObjectParameters(map[string]llm.ParameterDef{}),
	}
}
func (s *stubTool) Execute(context.Context, map[string]any) (string, error) {
	s.calls++
	return s.result, s.err
}

type stubEvaluator struct {
	score *evals.UnifiedScore
}

func (s *stubEvaluator) Evaluate(post string) *evals.UnifiedScore {
	sc := *s.score
	sc.Post = post
	return &sc
}

func (s *stubEvaluator) FormatReport(*evals.UnifiedScore) string { return "report" }

const postReadyResult = "POST_READY: 120/280 characters\n" +
	"Platform: twitter\n\n" +
	"POST TEXT:\n" +
	"$NVDA just broke out. Selling the $950 call for $12.\n\n" +
	"SUGGESTIONS:\nWARNING: No ticker symbol ($SYMBOL) found"

func passingScore() *evals.UnifiedScore {
	return &evals.UnifiedScore{
		Hookiness: evals.HookinessScore{Total: 20},
		Quality:   evals.QualityScore{Total: 40},
		Total:     60,
		Passed:    true,
	}
}

func newTestLoop(model LLM, registry *tools.Registry, eval Evaluator, maxIterations int) *Loop {
	return New(model, registry, eval, "system prompt",
		config.AgentConfig{MaxIterations: maxIterations},
		config.EvalConfig{TotalMin: 45}, nil)
}

func TestRunCompletesOnDone(t *testing.T) {
	registry := tools.NewRegistry(nil)
	probe := &stubTool{name: "probe", result: "probe ok"}
	registry.Register(probe)
	registry.Register(tools.NewDoneTool())

	model := &scriptedLLM{steps: []*llm.Response{
		toolCall("probe", nil),
		toolCall("done", map[string]any{"summary": "all good"}),
	}}

	loop := newTestLoop(model, registry, &stubEvaluator{score: passingScore()}, 10)
	got := loop.Run(context.Background(), "post something")

	if got != "TASK_COMPLETE: all good" {
		t.Errorf("unexpected result %q", got)
	}
	if model.calls != 2 {
		t.Errorf("expected 2 model calls, got %d", model.calls)
	}
	if probe.calls != 1 {
		t.Errorf("probe executed %d times", probe.calls)
	}

	// The second call must see the system prompt, the task, and the probe
	// exchange.
	second := model.transcripts[1]
	if second[0].Role != llm.RoleSystem || second[0].Content != "system prompt" {
		t.Errorf("system message wrong: %+v", second[0])
	}
	if second[1].Role != llm.RoleUser || second[1].Content != "post something" {
		t.Errorf("task message wrong: %+v", second[1])
	}
	if second[2].Role != llm.RoleAssistant || !strings.HasPrefix(second[2].Content, "Called probe:") {
		t.Errorf("assistant tool note wrong: %+v", second[2])
	}
	if second[3].Role != llm.RoleTool || second[3].Content != "probe ok" {
		t.Errorf("tool result message wrong: %+v", second[3])
	}
}

func TestRunStopsAtMaxIterations(t *testing.T) {
	registry := tools.NewRegistry(nil)
	registry.Register(&stubTool{name: "probe", result: "ok"})

	model := &scriptedLLM{steps: []*llm.Response{toolCall("probe", nil)}}
	loop := newTestLoop(model, registry, &stubEvaluator{score: passingScore()}, 3)

	got := loop.Run(context.Background(), "task")
	if got != "MAX_ITERATIONS_REACHED: The agent did not complete the task within the allowed iterations." {
		t.Errorf("unexpected result %q", got)
	}
	if model.calls != 3 {
		t.Errorf("model must be called exactly the budget, got %d", model.calls)
	}
}

func TestRunEvalGatePasses(t *testing.T) {
	registry := tools.NewRegistry(nil)
	registry.Register(&stubTool{name: "write_post", result: postReadyResult})
	registry.Register(tools.NewDoneTool())

	model := &scriptedLLM{steps: []*llm.Response{
		toolCall("write_post", nil),
		toolCall("done", map[string]any{"summary": "posted"}),
	}}
	loop := newTestLoop(model, registry, &stubEvaluator{score: passingScore()}, 10)

	if got := loop.Run(context.Background(), "task"); got != "TASK_COMPLETE: posted" {
		t.Fatalf("unexpected result %q", got)
	}

	second := model.transcripts[1]
	toolMsg := second[len(second)-1]
	if !strings.HasSuffix(toolMsg.Content, "\n\nEVAL_PASSED: Score 60/75") {
		t.Errorf("score annotation missing: %q", toolMsg.Content)
	}
	if loop.PendingPost() != "$NVDA just broke out. Selling the $950 call for $12." {
		t.Errorf("pending post wrong: %q", loop.PendingPost())
	}
}

func TestRunEvalGateFailureAborts(t *testing.T) {
	registry := tools.NewRegistry(nil)
	registry.Register(&stubTool{name: "write_post", result: postReadyResult})

	model := &scriptedLLM{steps: []*llm.Response{toolCall("write_post", nil)}}
	eval := &stubEvaluator{score: &evals.UnifiedScore{
		Hookiness:     evals.HookinessScore{Total: 12},
		Quality:       evals.QualityScore{Total: 28},
		Total:         40,
		Passed:        false,
		FailureReason: "Total 40 below minimum 45",
	}}
	loop := newTestLoop(model, registry, eval, 10)

	got := loop.Run(context.Background(), "task")
	want := "EVAL_FAILED: Post quality check failed: Total 40 below minimum 45\n\n" +
		"Score: 40/75 (min 45)\n" +
		"Hookiness: 12/25\n" +
		"Quality: 28/50\n\n" +
		"Post was NOT published. Please try a different approach."
	if got != want {
		t.Errorf("verdict mismatch:\ngot:  %q\nwant: %q", got, want)
	}
	if model.calls != 1 {
		t.Errorf("gate failure must abort without further model calls, got %d", model.calls)
	}
	if loop.PendingPost() == "" {
		t.Error("rejected draft must stay accessible")
	}
}

func TestRunToolErrorFeedsBack(t *testing.T) {
	registry := tools.NewRegistry(nil)
	registry.Register(&stubTool{name: "flaky", err: errors.New("backend down")})
	registry.Register(tools.NewDoneTool())

	model := &scriptedLLM{steps: []*llm.Response{
		toolCall("flaky", nil),
		toolCall("done", map[string]any{"summary": "gave up"}),
	}}
	loop := newTestLoop(model, registry, &stubEvaluator{score: passingScore()}, 10)

	if got := loop.Run(context.Background(), "task"); got != "TASK_COMPLETE: gave up" {
		t.Fatalf("unexpected result %q", got)
	}

	second := model.transcripts[1]
	toolMsg := second[len(second)-1]
	if toolMsg.Role != llm.RoleTool || !strings.HasPrefix(toolMsg.Content, "TOOL_ERROR: ") {
		t.Errorf("tool failure not surfaced: %+v", toolMsg)
	}
	if !strings.Contains(toolMsg.Content, "backend down") {
		t.Errorf("cause lost: %q", toolMsg.Content)
	}
}

func TestRunNoToolCallKeepsReasoning(t *testing.T) {
	registry := tools.NewRegistry(nil)
	registry.Register(tools.NewDoneTool())

	model := &scriptedLLM{steps: []*llm.Response{
		{Reasoning: "thinking about which stock to pick"},
		toolCall("done", map[string]any{"summary": "decided"}),
	}}
	loop := newTestLoop(model, registry, &stubEvaluator{score: passingScore()}, 10)

	if got := loop.Run(context.Background(), "task"); got != "TASK_COMPLETE: decided" {
		t.Fatalf("unexpected result %q", got)
	}

	second := model.transcripts[1]
	last := second[len(second)-1]
	if last.Role != llm.RoleAssistant || last.Content != "thinking about which stock to pick" {
		t.Errorf("raw reasoning not appended: %+v", last)
	}
}

func TestRunModelErrorRecovers(t *testing.T) {
	registry := tools.NewRegistry(nil)
	registry.Register(tools.NewDoneTool())

	model := &scriptedLLM{
		steps: []*llm.Response{
			nil, // consumed by the error slot
			toolCall("done", map[string]any{"summary": "recovered"}),
		},
		errs: []error{errors.New("503 overloaded")},
	}
	loop := newTestLoop(model, registry, &stubEvaluator{score: passingScore()}, 10)

	if got := loop.Run(context.Background(), "task"); got != "TASK_COMPLETE: recovered" {
		t.Fatalf("unexpected result %q", got)
	}

	second := model.transcripts[1]
	last := second[len(second)-1]
	if last.Role != llm.RoleTool || !strings.HasPrefix(last.Content, "ERROR: ") {
		t.Errorf("model error not fed back: %+v", last)
	}
}

func TestExtractPostText(t *testing.T) {
	cases := []struct {
		name   string
		result string
		want   string
	}{
		{
			name:   "with suggestions",
			result: postReadyResult,
			want:   "$NVDA just broke out. Selling the $950 call for $12.",
		},
		{
			name:   "without suggestions",
			result: "POST_READY: 60/280 characters\nPlatform: twitter\n\nPOST TEXT:\nClean draft with $SPY and numbers 42.",
			want:   "Clean draft with $SPY and numbers 42.",
		},
		{
			name:   "no marker",
			result: "ERROR: Post too short (11 chars).",
			want:   "",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractPostText(tc.result); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestClipKeepsRuneBoundaries(t *testing.T) {
	s := strings.Repeat("📈", 30)
	got := clip(s, 10)
	if !utf8.ValidString(got) {
		t.Fatalf("clip produced invalid UTF-8: %q", got)
	}
	if want := strings.Repeat("📈", 10) + "..."; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if clip("short", 100) != "short" {
		t.Error("strings within the budget must pass through unchanged")
	}
}
