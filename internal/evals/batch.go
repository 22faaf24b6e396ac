package evals

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// RunFunc executes one full agent run and returns its final result string.
// Batch runs must be given dry-run agents; the runner cannot enforce that
// itself, it only scores what comes back.
type RunFunc func(ctx context.Context) (string, error)

var (
	dryRunContentRe = regexp.MustCompile(`(?s)DRY_RUN:.*?Content:\s*(.*?)(?:\.\.\.|$)`)
	postTextRe      = regexp.MustCompile(`(?s)POST TEXT:\n?(.*?)(?:\n\nSUGGESTIONS:|\n\nEVAL_PASSED|$)`)
	symbolRe        = regexp.MustCompile(`\$([A-Z]{1,5})\b`)
)

// BatchResult is the outcome of one agent run within a batch.
type BatchResult struct {
	Run     int           `json:"run"`
	Post    string        `json:"post,omitempty"`
	Symbol  string        `json:"symbol,omitempty"`
	Success bool          `json:"success"`
	Error   string        `json:"error,omitempty"`
	Score   *UnifiedScore `json:"score,omitempty"`
	Raw     string        `json:"raw"`
}

// BatchReport aggregates a batch of scored runs.
type BatchReport struct {
	Platform       string        `json:"platform"`
	NumRuns        int           `json:"numRuns"`
	SuccessfulRuns int           `json:"successfulRuns"`
	PostsScored    int           `json:"postsScored"`
	AverageScore   float64       `json:"averageScore"`
	MaxScore       int           `json:"maxScore"`
	Percentage     float64       `json:"percentage"`
	BestRun        *BatchResult  `json:"bestRun,omitempty"`
	WorstRun       *BatchResult  `json:"worstRun,omitempty"`
	Results        []BatchResult `json:"results"`
	GeneratedAt    time.Time     `json:"generatedAt"`
}

// BatchRunner drives repeated agent runs and scores the drafted posts.
type BatchRunner struct {
	evaluator   *Evaluator
	logger      *slog.Logger
	concurrency int
}

// NewBatchRunner creates a runner executing up to concurrency runs in
// parallel. Each run owns its own conversation state, so parallel runs are
// safe as long as the RunFunc builds a fresh agent per call.
func NewBatchRunner(evaluator *Evaluator, concurrency int, logger *slog.Logger) *BatchRunner {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchRunner{
		evaluator:   evaluator,
		logger:      logger.With("component", "evals.batch"),
		concurrency: concurrency,
	}
}

// Run executes numRuns agent runs and returns the aggregated report. Run
// errors are recorded per result, not returned; only context cancellation
// aborts the batch.
func (b *BatchRunner) Run(ctx context.Context, platform string, numRuns int, run RunFunc) (*BatchReport, error) {
	results := make([]BatchResult, numRuns)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i := 0; i < numRuns; i++ {
		i := i
		g.Go(func() error {
			b.logger.Info("eval run starting", "run", i+1, "total", numRuns)

			res := BatchResult{Run: i + 1}
			raw, err := run(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				res.Error = err.Error()
			} else {
				res.Raw = raw
				res.Post = ExtractPost(raw)
				res.Symbol = extractSymbol(raw)
				res.Success = strings.Contains(raw, "TASK_COMPLETE") || strings.Contains(raw, "SUCCESS")
				if res.Post != "" {
					res.Score = b.evaluator.Evaluate(res.Post)
				}
			}

			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return b.aggregate(platform, results), nil
}

func (b *BatchRunner) aggregate(platform string, results []BatchResult) *BatchReport {
	report := &BatchReport{
		Platform:    platform,
		NumRuns:     len(results),
		MaxScore:    MaxTotal,
		Results:     results,
		GeneratedAt: time.Now().UTC(),
	}

	sum := 0
	for i := range results {
		r := &results[i]
		if r.Success {
			report.SuccessfulRuns++
		}
		if r.Score == nil {
			continue
		}
		report.PostsScored++
		sum += r.Score.Total
		if report.BestRun == nil || r.Score.Total > report.BestRun.Score.Total {
			report.BestRun = r
		}
		if report.WorstRun == nil || r.Score.Total < report.WorstRun.Score.Total {
			report.WorstRun = r
		}
	}
	if report.PostsScored > 0 {
		avg := float64(sum) / float64(report.PostsScored)
		report.AverageScore = math.Round(avg*10) / 10
		report.Percentage = math.Round(avg/float64(MaxTotal)*1000) / 10
	}
	return report
}

// WriteReport saves the report as eval_results_<timestamp>.json under dir
// and returns the file path.
func (r *BatchReport) WriteReport(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("eval_results_%s.json", r.GeneratedAt.Format("20060102_150405")))

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0640); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// Format renders the report for terminal output.
func (r *BatchReport) Format() string {
	var b strings.Builder
	rule := strings.Repeat("=", 50)

	fmt.Fprintf(&b, "%s\nAGENT EVALUATION REPORT\n%s\n", rule, rule)
	fmt.Fprintf(&b, "Platform: %s\n", r.Platform)
	fmt.Fprintf(&b, "Runs: %d\n", r.NumRuns)
	fmt.Fprintf(&b, "Successful: %d\n", r.SuccessfulRuns)
	fmt.Fprintf(&b, "Posts Scored: %d\n", r.PostsScored)
	fmt.Fprintf(&b, "Average Score: %.1f / %d (%.1f%%)\n", r.AverageScore, r.MaxScore, r.Percentage)

	if r.BestRun != nil {
		fmt.Fprintf(&b, "\nBest Run (#%d): %d/%d\n", r.BestRun.Run, r.BestRun.Score.Total, MaxTotal)
		fmt.Fprintf(&b, "  %q\n", truncate(r.BestRun.Post, 80))
	}
	if r.WorstRun != nil && r.WorstRun != r.BestRun {
		fmt.Fprintf(&b, "\nWorst Run (#%d): %d/%d\n", r.WorstRun.Run, r.WorstRun.Score.Total, MaxTotal)
		if r.WorstRun.Score.FailureReason != "" {
			fmt.Fprintf(&b, "  %s\n", r.WorstRun.Score.FailureReason)
		}
	}
	fmt.Fprintf(&b, "%s", rule)
	return b.String()
}

// ExtractPost pulls the drafted post text out of an agent run result, trying
// the draft marker first and falling back to dry-run publish output.
func ExtractPost(result string) string {
	if m := postTextRe.FindStringSubmatch(result); m != nil {
		if text := strings.TrimSpace(m[1]); text != "" {
			return text
		}
	}
	if strings.Contains(result, "DRY_RUN:") {
		if m := dryRunContentRe.FindStringSubmatch(result); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

func extractSymbol(result string) string {
	if m := symbolRe.FindStringSubmatch(result); m != nil {
		return m[1]
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
