package scheduler

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"
)

// PostRunner executes one posting task. The agent loop implements this.
type PostRunner interface {
	RunPost(ctx context.Context, postType, platform, sector string) (string, error)
}

// JobRunner executes a single job on its schedule.
type JobRunner struct {
	job    *Job
	runner PostRunner
	logger *slog.Logger
	ticker *time.Ticker
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewJobRunner creates a runner for one job.
func NewJobRunner(job *Job, runner PostRunner, logger *slog.Logger) *JobRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &JobRunner{
		job:    job,
		runner: runner,
		logger: logger.With("job", job.ID),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start begins executing the job on schedule. It blocks until the context is
// cancelled or Stop is called; run it in a goroutine.
func (r *JobRunner) Start(ctx context.Context) {
	defer close(r.doneCh)

	if !r.job.Enabled {
		r.logger.Debug("job disabled, not starting")
		return
	}

	nextRun, err := r.job.NextRun(time.Now())
	if err != nil {
		r.logger.Error("failed to calculate next run", "error", err)
		return
	}
	r.job.State.NextRunAt = nextRun

	r.logger.Info("job runner started", "next_run", nextRun.Format(time.RFC3339))

	// Interval jobs tick at their own pace; cron/at jobs poll every minute
	// and compare against the computed next run.
	var tickerDuration time.Duration
	switch r.job.Schedule.Kind {
	case "interval":
		tickerDuration = time.Duration(r.job.Schedule.IntervalMs) * time.Millisecond
	default:
		tickerDuration = time.Minute
	}

	r.ticker = time.NewTicker(tickerDuration)
	defer r.ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("job runner stopped (context cancelled)")
			return
		case <-r.stopCh:
			r.logger.Info("job runner stopped")
			return
		case now := <-r.ticker.C:
			shouldRun := r.job.Schedule.Kind == "interval" ||
				now.After(r.job.State.NextRunAt) || now.Equal(r.job.State.NextRunAt)
			if !shouldRun {
				continue
			}

			r.executeJob(ctx)

			nextRun, err := r.job.NextRun(time.Now())
			if err != nil {
				r.logger.Error("failed to calculate next run", "error", err)
			} else {
				r.job.State.NextRunAt = nextRun
				r.logger.Debug("next run scheduled", "next_run", nextRun.Format(time.RFC3339))
			}
		}
	}
}

// Stop stops the runner and waits for it to exit.
func (r *JobRunner) Stop() {
	close(r.stopCh)
	<-r.doneCh
}

// executeJob runs the posting task once and updates job state.
func (r *JobRunner) executeJob(ctx context.Context) {
	start := time.Now()
	r.logger.Info("executing job", "post_type", r.job.PostType, "platform", r.job.Platform)

	result, err := r.runner.RunPost(ctx, r.job.PostType, r.job.Platform, r.job.Sector)
	duration := time.Since(start)

	r.job.State.LastRunAt = time.Now()
	r.job.State.LastDuration = duration
	r.job.State.RunCount++
	r.job.State.LastResult = clipResult(result)

	if err != nil {
		r.job.State.ErrorCount++
		r.job.State.LastError = err.Error()
		r.logger.Error("job failed",
			"error", err,
			"duration", duration,
			"run_count", r.job.State.RunCount,
			"error_count", r.job.State.ErrorCount)
		return
	}

	r.job.State.LastError = ""
	r.logger.Info("job completed",
		"duration", duration,
		"run_count", r.job.State.RunCount,
		"result", r.job.State.LastResult)
}

// clipResult keeps job state small. Rune-based so emoji in post content never
// gets cut mid-character.
func clipResult(s string) string {
	const max = 200
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + "..."
}
