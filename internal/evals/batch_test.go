package evals

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/alphacopilot/social-agent/internal/config"
)

const goodRunResult = `TASK_COMPLETE: Posted successfully.

POST_READY

POST TEXT:
$NVDA just hit all-time highs today 🚀
Here's how to profit: sell the $950 call (Jan 17) for $12 premium, 75% POP.

SUGGESTIONS:
- none`

func TestBatchRunAggregates(t *testing.T) {
	runner := NewBatchRunner(defaultEvaluator(), 2, nil)

	var calls atomic.Int32
	report, err := runner.Run(context.Background(), "twitter", 4, func(ctx context.Context) (string, error) {
		n := calls.Add(1)
		if n == 2 {
			return "", errors.New("backend down")
		}
		return goodRunResult, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if report.NumRuns != 4 {
		t.Errorf("expected 4 runs, got %d", report.NumRuns)
	}
	if report.SuccessfulRuns != 3 {
		t.Errorf("expected 3 successful, got %d", report.SuccessfulRuns)
	}
	if report.PostsScored != 3 {
		t.Errorf("expected 3 scored, got %d", report.PostsScored)
	}
	if report.BestRun == nil || report.BestRun.Score == nil {
		t.Fatal("expected a best run with a score")
	}
	if report.AverageScore <= 0 || report.AverageScore > MaxTotal {
		t.Errorf("implausible average %f", report.AverageScore)
	}

	failed := 0
	for _, r := range report.Results {
		if r.Error != "" {
			failed++
		}
	}
	if failed != 1 {
		t.Errorf("expected exactly 1 errored run, got %d", failed)
	}
}

func TestBatchRunWritesReport(t *testing.T) {
	runner := NewBatchRunner(defaultEvaluator(), 1, nil)
	report, err := runner.Run(context.Background(), "twitter", 1, func(ctx context.Context) (string, error) {
		return goodRunResult, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	path, err := report.WriteReport(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(path, "eval_results_") || !strings.HasSuffix(path, ".json") {
		t.Errorf("unexpected report path %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var loaded BatchReport
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatal(err)
	}
	if loaded.NumRuns != 1 || loaded.PostsScored != 1 {
		t.Errorf("report round trip lost data: %+v", loaded)
	}
}

func TestBatchRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := NewBatchRunner(defaultEvaluator(), 1, nil)
	_, err := runner.Run(ctx, "twitter", 3, func(ctx context.Context) (string, error) {
		return "", ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestExtractPost(t *testing.T) {
	tests := []struct {
		name   string
		result string
		want   string
	}{
		{
			"post text marker",
			"POST_READY\n\nPOST TEXT:\nNVDA to the moon\n\nSUGGESTIONS:\n- shorter",
			"NVDA to the moon",
		},
		{
			"dry run fallback",
			"DRY_RUN: Would publish to twitter\nContent: SPY puts look cheap...",
			"SPY puts look cheap",
		},
		{
			"no post",
			"MAX_ITERATIONS_REACHED: The agent did not complete the task within the allowed iterations.",
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractPost(tt.result); got != tt.want {
				t.Errorf("ExtractPost() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBatchFormat(t *testing.T) {
	runner := NewBatchRunner(NewEvaluator(config.DefaultConfig().Eval, nil), 1, nil)
	report, err := runner.Run(context.Background(), "threads", 2, func(ctx context.Context) (string, error) {
		return goodRunResult, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	out := report.Format()
	for _, want := range []string{"AGENT EVALUATION REPORT", "Platform: threads", "Runs: 2", "/ 75"} {
		if !strings.Contains(out, want) {
			t.Errorf("formatted report missing %q", want)
		}
	}
}
