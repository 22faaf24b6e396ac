package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/alphacopilot/social-agent/internal/config"
)

// Scheduler manages all scheduled posting jobs.
type Scheduler struct {
	jobs    map[string]*Job
	runners map[string]*JobRunner
	runner  PostRunner
	logger  *slog.Logger
	mu      sync.RWMutex
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewScheduler creates a scheduler that dispatches jobs to runner.
func NewScheduler(runner PostRunner, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		jobs:    make(map[string]*Job),
		runners: make(map[string]*JobRunner),
		runner:  runner,
		logger:  logger.With("component", "scheduler"),
	}
}

// LoadJobs loads jobs from configuration, skipping invalid entries.
func (s *Scheduler) LoadJobs(cfg config.SchedulerConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, jc := range cfg.Jobs {
		job := FromConfig(jc)
		if err := job.Validate(); err != nil {
			s.logger.Warn("invalid job in config, skipping", "job", jc.ID, "error", err)
			continue
		}
		s.jobs[job.ID] = job
		s.logger.Debug("loaded job from config", "job", job.ID)
	}

	s.logger.Info("jobs loaded", "count", len(s.jobs))
}

// Start launches runners for all enabled jobs.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.logger.Info("starting scheduler", "jobs", len(s.jobs))

	for id, job := range s.jobs {
		if !job.Enabled {
			s.logger.Debug("skipping disabled job", "job", id)
			continue
		}
		runner := NewJobRunner(job, s.runner, s.logger)
		s.runners[id] = runner
		go runner.Start(s.ctx)
	}

	s.logger.Info("scheduler started", "active_jobs", len(s.runners))
	return nil
}

// Stop stops all job runners and waits for them to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Info("stopping scheduler")
	if s.cancel != nil {
		s.cancel()
	}
	for id, runner := range s.runners {
		runner.Stop()
		s.logger.Debug("stopped job runner", "job", id)
	}
	s.runners = make(map[string]*JobRunner)
	s.logger.Info("scheduler stopped")
}

// AddJob adds a new job, starting it immediately when the scheduler is
// already running.
func (s *Scheduler) AddJob(job *Job) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("invalid job: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.ID]; exists {
		return fmt.Errorf("job with ID %s already exists", job.ID)
	}
	s.jobs[job.ID] = job

	if s.ctx != nil && job.Enabled {
		runner := NewJobRunner(job, s.runner, s.logger)
		s.runners[job.ID] = runner
		go runner.Start(s.ctx)
		s.logger.Info("job added and started", "job", job.ID)
	} else {
		s.logger.Info("job added", "job", job.ID, "enabled", job.Enabled)
	}
	return nil
}

// RemoveJob removes a job, stopping its runner if active.
func (s *Scheduler) RemoveJob(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[id]; !exists {
		return fmt.Errorf("job not found: %s", id)
	}
	if runner, exists := s.runners[id]; exists {
		runner.Stop()
		delete(s.runners, id)
	}
	delete(s.jobs, id)
	s.logger.Info("job removed", "job", id)
	return nil
}

// UpdateJob replaces an existing job, restarting its runner.
func (s *Scheduler) UpdateJob(job *Job) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("invalid job: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.ID]; !exists {
		return fmt.Errorf("job not found: %s", job.ID)
	}
	if runner, exists := s.runners[job.ID]; exists {
		runner.Stop()
		delete(s.runners, job.ID)
	}
	s.jobs[job.ID] = job

	if s.ctx != nil && job.Enabled {
		runner := NewJobRunner(job, s.runner, s.logger)
		s.runners[job.ID] = runner
		go runner.Start(s.ctx)
		s.logger.Info("job updated and restarted", "job", job.ID)
	} else {
		s.logger.Info("job updated", "job", job.ID, "enabled", job.Enabled)
	}
	return nil
}

// GetJob retrieves a copy of a job by ID.
func (s *Scheduler) GetJob(id string) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, exists := s.jobs[id]
	if !exists {
		return nil, fmt.Errorf("job not found: %s", id)
	}
	return job.Clone(), nil
}

// ListJobs returns copies of all jobs.
func (s *Scheduler) ListJobs() []*Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]*Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, job.Clone())
	}
	return jobs
}

// RunJobNow triggers a job immediately, bypassing its schedule.
func (s *Scheduler) RunJobNow(ctx context.Context, id string) error {
	s.mu.RLock()
	job, exists := s.jobs[id]
	s.mu.RUnlock()

	if !exists {
		return fmt.Errorf("job not found: %s", id)
	}
	NewJobRunner(job, s.runner, s.logger).executeJob(ctx)
	return nil
}

// Stats summarizes scheduler state.
func (s *Scheduler) Stats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var totalRuns, totalErrors int64
	activeJobs := 0
	for _, job := range s.jobs {
		totalRuns += job.State.RunCount
		totalErrors += job.State.ErrorCount
		if job.Enabled {
			activeJobs++
		}
	}

	return map[string]any{
		"total_jobs":   len(s.jobs),
		"active_jobs":  activeJobs,
		"running_jobs": len(s.runners),
		"total_runs":   totalRuns,
		"total_errors": totalErrors,
	}
}
