package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"mercator-hq/copycheck/pkg/batch"
)

// RemoteRunner processes the newest remote sheet. *Runner implements it.
type RemoteRunner interface {
	RunLatestRemote(ctx context.Context) (*Report, error)
}

// Scheduler runs RunLatestRemote on a cron schedule. A run still in
// progress when the next one is due makes that next run skip.
type Scheduler struct {
	runner     RemoteRunner
	schedule   string
	runOnStart bool
	cron       *cron.Cron
	logger     *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewScheduler creates a Scheduler for a standard cron expression.
func NewScheduler(runner RemoteRunner, schedule string, runOnStart bool, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "jobs.scheduler")
	return &Scheduler{
		runner:     runner,
		schedule:   schedule,
		runOnStart: runOnStart,
		cron:       cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{logger}))),
		logger:     logger,
	}
}

// Start schedules the job and stops it when ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		return fmt.Errorf("schedule not configured")
	}
	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule job: %w", err)
	}
	s.cron.Start()
	s.running = true
	s.logger.Info("job scheduler started", "schedule", s.schedule, "run_on_start", s.runOnStart)

	if s.runOnStart {
		go s.RunOnce(ctx)
	}

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// RunOnce runs the job immediately and logs the outcome.
func (s *Scheduler) RunOnce(ctx context.Context) {
	ctx = batch.WithTrigger(ctx, batch.TriggerSchedule)

	report, err := s.runner.RunLatestRemote(ctx)
	switch {
	case errors.Is(err, ErrNoInput):
		s.logger.Info("scheduled job found no input sheet")
	case err != nil:
		s.logger.Error("scheduled job failed", "error", err)
	default:
		s.logger.Info("scheduled job completed",
			"run_id", report.RunID,
			"input", report.Input,
			"output", report.Output,
			"rows", report.Rows,
		)
	}
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		<-s.cron.Stop().Done()
		s.running = false
		s.logger.Info("job scheduler stopped")
	}
}

// IsRunning reports whether the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled run, or nil.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append([]any{"error", err}, keysAndValues...)...)
}
