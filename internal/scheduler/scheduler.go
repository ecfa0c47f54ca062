// Package scheduler runs named recurring actions on cron-style schedules.
// All jobs share one gocron runtime; a failure in one job is logged and
// contained, never affecting other jobs or the scheduler itself.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Action is the signature for scheduled job actions. The context is the
// scheduler's base context; actions should respect its cancellation.
type Action func(ctx context.Context) error

// JobInfo is a point-in-time description of one registered job.
type JobInfo struct {
	Name     string
	Schedule string
	NextRun  *time.Time
}

type jobEntry struct {
	job      gocron.Job
	schedule string
}

// Scheduler manages named periodic jobs on top of the gocron library.
// Job names are unique; adding a job under an existing name stops and
// replaces the old job. The registry survives Stop, so Start resumes the
// same set of jobs.
type Scheduler struct {
	logger  *slog.Logger
	gocron  gocron.Scheduler
	mu      sync.Mutex
	jobs    map[string]jobEntry
	running bool
}

// New creates a stopped scheduler. Jobs can be added before Start; they will
// not fire until Start is called.
func New(logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}

	gs, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	return &Scheduler{
		logger: logger.With("component", "scheduler"),
		gocron: gs,
		jobs:   make(map[string]jobEntry),
	}, nil
}

// AddJob registers a periodic job under a unique name. An existing job with
// the same name is stopped and removed before the new one is created, so at
// no point are two timers live for one name. If the scheduler is running the
// job is scheduled immediately, otherwise it waits for Start.
func (s *Scheduler) AddJob(name, cronExpr string, action Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.jobs[name]; ok {
		s.logger.Warn("Job already exists, replacing", "job", name, "old_schedule", existing.schedule)
		if err := s.gocron.RemoveJob(existing.job.ID()); err != nil {
			s.logger.Error("Failed to remove previous job", "job", name, "error", err)
		}
		delete(s.jobs, name)
	}

	job, err := s.gocron.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(s.wrap(name, action), context.Background()),
		gocron.WithName(name),
		// One firing at a time per job; a slow action delays, but never
		// overlaps or skips, its own next firing.
		gocron.WithSingletonMode(gocron.LimitModeWait),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule job %q: %w", name, err)
	}

	s.jobs[name] = jobEntry{job: job, schedule: cronExpr}
	s.logger.Info("Job added", "job", name, "schedule", cronExpr, "scheduler_running", s.running)

	return nil
}

// wrap guards a job action so that neither errors nor panics reach the
// gocron runtime. Failures are logged and the job keeps its schedule.
func (s *Scheduler) wrap(name string, action Action) func(ctx context.Context) {
	return func(ctx context.Context) {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("Job panicked", "job", name, "panic", r)
			}
		}()

		s.logger.Debug("Running job", "job", name)
		startTime := time.Now()

		if err := action(ctx); err != nil {
			s.logger.Error("Job failed", "job", name, "error", err, "duration", time.Since(startTime))
			return
		}

		s.logger.Debug("Job finished", "job", name, "duration", time.Since(startTime))
	}
}

// RemoveJob stops and discards the named job. Unknown names are a no-op.
func (s *Scheduler) RemoveJob(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.jobs[name]
	if !ok {
		return
	}

	if err := s.gocron.RemoveJob(entry.job.ID()); err != nil {
		s.logger.Error("Failed to remove job", "job", name, "error", err)
	}
	delete(s.jobs, name)
	s.logger.Info("Job removed", "job", name)
}

// Start begins firing all registered jobs. Idempotent.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}

	s.gocron.Start()
	s.running = true
	s.logger.Info("Scheduler started", "jobs", len(s.jobs))
}

// Stop halts all job timers without clearing the registry; a later Start
// resumes the same jobs. Idempotent.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	if err := s.gocron.StopJobs(); err != nil {
		s.logger.Error("Error stopping jobs", "error", err)
	}
	s.running = false
	s.logger.Info("Scheduler stopped", "jobs", len(s.jobs))
}

// Shutdown stops the scheduler and releases the underlying runtime, waiting
// for in-flight job invocations to complete. The scheduler cannot be reused
// afterwards.
func (s *Scheduler) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = false
	if err := s.gocron.Shutdown(); err != nil {
		return fmt.Errorf("failed to shut down scheduler: %w", err)
	}
	return nil
}

// Running reports whether the scheduler is currently firing jobs.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Jobs returns a snapshot of the registered jobs. Next-run times are only
// available while the scheduler is running.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	infos := make([]JobInfo, 0, len(s.jobs))
	for name, entry := range s.jobs {
		info := JobInfo{Name: name, Schedule: entry.schedule}
		if nextRun, err := entry.job.NextRun(); err == nil && !nextRun.IsZero() {
			info.NextRun = &nextRun
		}
		infos = append(infos, info)
	}
	return infos
}
