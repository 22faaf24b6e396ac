package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/alphacopilot/social-agent/internal/config"
)

func TestLoadJobsSkipsInvalid(t *testing.T) {
	s := NewScheduler(&fakePostRunner{}, nil)
	s.LoadJobs(config.SchedulerConfig{Jobs: []config.JobConfig{
		{ID: "good", Name: "Good", PostType: "morning",
			Schedule: config.ScheduleConfig{Kind: "at", Time: "09:15"}, Enabled: true},
		{ID: "bad", Name: "Bad", PostType: "morning",
			Schedule: config.ScheduleConfig{Kind: "cron", Expr: "nope"}},
	}})

	if len(s.ListJobs()) != 1 {
		t.Fatalf("expected 1 job, got %d", len(s.ListJobs()))
	}
	if _, err := s.GetJob("good"); err != nil {
		t.Errorf("valid job lost: %v", err)
	}
	if _, err := s.GetJob("bad"); err == nil {
		t.Error("invalid job must be skipped")
	}
}

func TestSchedulerStartStop(t *testing.T) {
	runner := &fakePostRunner{result: "TASK_COMPLETE: ok"}
	s := NewScheduler(runner, nil)
	if err := s.AddJob(intervalJob("fast", 10)); err != nil {
		t.Fatal(err)
	}

	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(2 * time.Second)
	for runner.callCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("job never ran")
		case <-time.After(5 * time.Millisecond):
		}
	}
	s.Stop()

	stats := s.Stats()
	if stats["running_jobs"] != 0 {
		t.Errorf("runners must be cleared after stop: %v", stats)
	}
}

func TestAddJobRejectsDuplicates(t *testing.T) {
	s := NewScheduler(&fakePostRunner{}, nil)
	if err := s.AddJob(intervalJob("a", 1000)); err != nil {
		t.Fatal(err)
	}
	if err := s.AddJob(intervalJob("a", 2000)); err == nil {
		t.Error("duplicate job ID must be rejected")
	}
}

func TestRemoveJob(t *testing.T) {
	s := NewScheduler(&fakePostRunner{}, nil)
	if err := s.AddJob(intervalJob("a", 1000)); err != nil {
		t.Fatal(err)
	}
	if err := s.RemoveJob("a"); err != nil {
		t.Fatal(err)
	}
	if err := s.RemoveJob("a"); err == nil {
		t.Error("removing a missing job must error")
	}
}

func TestUpdateJob(t *testing.T) {
	s := NewScheduler(&fakePostRunner{}, nil)
	if err := s.AddJob(intervalJob("a", 1000)); err != nil {
		t.Fatal(err)
	}

	updated := intervalJob("a", 1000)
	updated.PostType = "eod"
	if err := s.UpdateJob(updated); err != nil {
		t.Fatal(err)
	}

	job, err := s.GetJob("a")
	if err != nil {
		t.Fatal(err)
	}
	if job.PostType != "eod" {
		t.Errorf("update lost: %+v", job)
	}

	if err := s.UpdateJob(intervalJob("missing", 1000)); err == nil {
		t.Error("updating a missing job must error")
	}
}

func TestRunJobNow(t *testing.T) {
	runner := &fakePostRunner{result: "TASK_COMPLETE: ok"}
	s := NewScheduler(runner, nil)
	job := &Job{ID: "daily", Name: "Daily", PostType: "volatility", Sector: "",
		Schedule: config.ScheduleConfig{Kind: "at", Time: "09:30"}, Enabled: true}
	if err := s.AddJob(job); err != nil {
		t.Fatal(err)
	}

	if err := s.RunJobNow(context.Background(), "daily"); err != nil {
		t.Fatal(err)
	}
	if runner.callCount() != 1 {
		t.Errorf("expected immediate run, got %d", runner.callCount())
	}
	if err := s.RunJobNow(context.Background(), "missing"); err == nil {
		t.Error("unknown job must error")
	}
}

func TestStats(t *testing.T) {
	s := NewScheduler(&fakePostRunner{}, nil)
	enabled := intervalJob("on", 1000)
	disabled := intervalJob("off", 1000)
	disabled.Enabled = false
	if err := s.AddJob(enabled); err != nil {
		t.Fatal(err)
	}
	if err := s.AddJob(disabled); err != nil {
		t.Fatal(err)
	}

	stats := s.Stats()
	if stats["total_jobs"] != 2 || stats["active_jobs"] != 1 {
		t.Errorf("unexpected stats: %v", stats)
	}
}
