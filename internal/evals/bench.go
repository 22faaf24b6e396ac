package evals

import (
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// BenchSample is one labeled post for the hookiness benchmark. Type is
// "old_style" (template posts) or "new_style" (news-driven posts).
type BenchSample struct {
	Type string `yaml:"type"`
	Post string `yaml:"post"`
}

// BenchScore pairs a sample with its hookiness score.
type BenchScore struct {
	Sample BenchSample
	Score  HookinessScore
}

// BenchReport compares old-style against new-style hookiness averages. The
// benchmark exists to keep the scoring heuristics honest: if a pattern
// change stops separating the two styles, the regression shows up here.
type BenchReport struct {
	OldStyleAvg    float64
	NewStyleAvg    float64
	ImprovementPct float64
	Scores         []BenchScore
}

// DefaultBenchSamples returns the built-in benchmark set: template posts
// that should score low and news-driven posts that should score high.
func DefaultBenchSamples() []BenchSample {
	return []BenchSample{
		{Type: "old_style", Post: "AAPL Covered Call | Strike $180 | Premium $3.50 | POP 72% | Exp Jan 17 #options #trading"},
		{Type: "old_style", Post: "📊 MSFT Put Credit Spread | $400/$395 | $1.20 credit | 75% POP | Good risk/reward #stocks"},
		{Type: "old_style", Post: "GOOGL Iron Condor opportunity | Strikes 140/145/160/165 | Premium $2.50 | Neutral outlook #options"},
		{Type: "new_style", Post: "NVDA just hit all-time highs on AI chip demand 📈\n\nHere's how to profit:\n→ Sell the $950 call (Jan 17)\n→ Collect $12 premium\n→ 75% probability of profit\n\nIf you own shares, this is free income."},
		{Type: "new_style", Post: "Everyone's bearish on TSLA after the delivery miss.\n\nThat's exactly why I'm selling puts.\n\n$240 put, Jan 17 expiry\n→ $8.50 premium (3.5% return in 2 weeks)\n→ 78% win rate\n\nFear = premium. I'll take it."},
		{Type: "new_style", Post: "META reports earnings Thursday after close.\n\nIV is at 65% - here's how to profit from the crush:\n\n→ Iron Condor: $550/$560/$610/$620\n→ Collect $4.20\n→ Max profit if META stays in range\n\nWin rate: 72%"},
		{Type: "new_style", Post: "AAPL broke $182 resistance this morning 🚀\n\nSelling the $190 weekly call:\n→ $2.40 credit (1.3% in 4 days)\n→ 78% probability of profit\n→ Earnings not until Jan 30\n\nBreakout = cushion. Let's collect premium."},
	}
}

// LoadBenchSamples reads benchmark samples from a YAML file.
func LoadBenchSamples(path string) ([]BenchSample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bench samples: %w", err)
	}
	var samples []BenchSample
	if err := yaml.Unmarshal(data, &samples); err != nil {
		return nil, fmt.Errorf("parse bench samples: %w", err)
	}
	for i, s := range samples {
		if s.Type != "old_style" && s.Type != "new_style" {
			return nil, fmt.Errorf("sample %d: unknown type %q", i, s.Type)
		}
		if s.Post == "" {
			return nil, fmt.Errorf("sample %d: empty post", i)
		}
	}
	return samples, nil
}

// RunBench scores every sample and aggregates per style.
func (e *Evaluator) RunBench(samples []BenchSample) *BenchReport {
	report := &BenchReport{}
	sums := map[string]int{}
	counts := map[string]int{}

	for _, sample := range samples {
		score := e.scoreHookiness(sample.Post)
		report.Scores = append(report.Scores, BenchScore{Sample: sample, Score: score})
		sums[sample.Type] += score.Total
		counts[sample.Type]++
	}

	if counts["old_style"] > 0 {
		report.OldStyleAvg = round1(float64(sums["old_style"]) / float64(counts["old_style"]))
	}
	if counts["new_style"] > 0 {
		report.NewStyleAvg = round1(float64(sums["new_style"]) / float64(counts["new_style"]))
	}
	if report.OldStyleAvg > 0 {
		report.ImprovementPct = round1((report.NewStyleAvg - report.OldStyleAvg) / report.OldStyleAvg * 100)
	}
	return report
}

// Format renders the benchmark summary.
func (r *BenchReport) Format() string {
	var b strings.Builder
	rule := strings.Repeat("=", 60)

	fmt.Fprintf(&b, "%s\nHOOKINESS BENCHMARK\n%s\n", rule, rule)
	fmt.Fprintf(&b, "Old Style Average: %.1f/%d\n", r.OldStyleAvg, MaxHookiness)
	fmt.Fprintf(&b, "New Style Average: %.1f/%d\n", r.NewStyleAvg, MaxHookiness)
	if r.OldStyleAvg > 0 {
		fmt.Fprintf(&b, "Improvement: %.1f%%\n", r.ImprovementPct)
	}
	for _, s := range r.Scores {
		fmt.Fprintf(&b, "\n[%s] %d/%d\n  %q\n", s.Sample.Type, s.Score.Total, MaxHookiness, truncate(s.Sample.Post, 70))
	}
	fmt.Fprintf(&b, "%s", rule)
	return b.String()
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
