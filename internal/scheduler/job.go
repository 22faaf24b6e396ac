// Package scheduler runs posting jobs on interval, cron, or daily-at
// schedules. Each job describes one agent task (post type, target platform,
// optional sector).
package scheduler

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/alphacopilot/social-agent/internal/config"
)

// Job is a scheduled posting task.
type Job struct {
	ID       string                `json:"id"`
	Name     string                `json:"name"`
	Schedule config.ScheduleConfig `json:"schedule"`
	PostType string                `json:"postType"`
	Platform string                `json:"platform,omitempty"`
	Sector   string                `json:"sector,omitempty"`
	Enabled  bool                  `json:"enabled"`
	State    JobState              `json:"state"`
}

// JobState tracks job execution history.
type JobState struct {
	LastRunAt    time.Time     `json:"lastRunAt,omitempty"`
	NextRunAt    time.Time     `json:"nextRunAt,omitempty"`
	RunCount     int64         `json:"runCount"`
	ErrorCount   int64         `json:"errorCount"`
	LastError    string        `json:"lastError,omitempty"`
	LastResult   string        `json:"lastResult,omitempty"`
	LastDuration time.Duration `json:"lastDuration,omitempty"`
}

// FromConfig builds a Job from its config form.
func FromConfig(jc config.JobConfig) *Job {
	return &Job{
		ID:       jc.ID,
		Name:     jc.Name,
		Schedule: jc.Schedule,
		PostType: jc.PostType,
		Platform: jc.Platform,
		Sector:   jc.Sector,
		Enabled:  jc.Enabled,
	}
}

// Validate checks the job configuration.
func (j *Job) Validate() error {
	if j.ID == "" {
		return fmt.Errorf("job ID required")
	}
	if j.Name == "" {
		return fmt.Errorf("job name required")
	}
	if j.PostType == "" {
		return fmt.Errorf("postType required")
	}
	if j.PostType == "sector" && j.Sector == "" {
		return fmt.Errorf("sector required for sector posts")
	}

	switch j.Schedule.Kind {
	case "interval":
		if j.Schedule.IntervalMs <= 0 {
			return fmt.Errorf("intervalMs must be positive")
		}
	case "cron":
		if j.Schedule.Expr == "" {
			return fmt.Errorf("cron expression required")
		}
		if _, err := cron.ParseStandard(j.Schedule.Expr); err != nil {
			return fmt.Errorf("invalid cron expression: %w", err)
		}
	case "at":
		if j.Schedule.Time == "" {
			return fmt.Errorf("time required for 'at' schedule")
		}
		if _, err := time.Parse("15:04", j.Schedule.Time); err != nil {
			return fmt.Errorf("invalid time format (use HH:MM): %w", err)
		}
	default:
		return fmt.Errorf("unknown schedule kind: %s (use interval, cron, or at)", j.Schedule.Kind)
	}

	return nil
}

// NextRun calculates the next run time after from.
func (j *Job) NextRun(from time.Time) (time.Time, error) {
	switch j.Schedule.Kind {
	case "interval":
		interval := time.Duration(j.Schedule.IntervalMs) * time.Millisecond
		return from.Add(interval), nil

	case "cron":
		schedule, err := cron.ParseStandard(j.Schedule.Expr)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse cron: %w", err)
		}
		return schedule.Next(from), nil

	case "at":
		t, err := time.Parse("15:04", j.Schedule.Time)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse time: %w", err)
		}

		loc := time.Local
		if j.Schedule.Timezone != "" {
			loc, err = time.LoadLocation(j.Schedule.Timezone)
			if err != nil {
				return time.Time{}, fmt.Errorf("load timezone: %w", err)
			}
		}

		next := time.Date(from.Year(), from.Month(), from.Day(),
			t.Hour(), t.Minute(), 0, 0, loc)
		// Already past today's slot, go to tomorrow.
		if next.Before(from) || next.Equal(from) {
			next = next.Add(24 * time.Hour)
		}
		return next, nil

	default:
		return time.Time{}, fmt.Errorf("unknown schedule kind: %s", j.Schedule.Kind)
	}
}

// Clone creates a deep copy of the job.
func (j *Job) Clone() *Job {
	data, _ := json.Marshal(j)
	var clone Job
	json.Unmarshal(data, &clone) //nolint:errcheck
	return &clone
}
