package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()

	s, err := New(nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Shutdown()
	})
	return s
}

func noopAction(context.Context) error { return nil }

func TestAddJob(t *testing.T) {
	s := newTestScheduler(t)

	require.NoError(t, s.AddJob("health_check", "*/15 * * * *", noopAction))

	jobs := s.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "health_check", jobs[0].Name)
	assert.Equal(t, "*/15 * * * *", jobs[0].Schedule)
}

func TestAddJobInvalidCron(t *testing.T) {
	s := newTestScheduler(t)

	err := s.AddJob("broken", "not a cron expression", noopAction)
	require.Error(t, err)
	assert.Empty(t, s.Jobs())
}

func TestAddJobReplacesDuplicateName(t *testing.T) {
	s := newTestScheduler(t)

	require.NoError(t, s.AddJob("health_check", "*/15 * * * *", noopAction))
	require.NoError(t, s.AddJob("health_check", "0 * * * *", noopAction))

	jobs := s.Jobs()
	require.Len(t, jobs, 1, "registry must contain exactly one entry per name")
	assert.Equal(t, "0 * * * *", jobs[0].Schedule, "replacement must carry the new schedule")
}

func TestRemoveJob(t *testing.T) {
	s := newTestScheduler(t)

	require.NoError(t, s.AddJob("cleanup", "0 4 * * *", noopAction))
	s.RemoveJob("cleanup")
	assert.Empty(t, s.Jobs())
}

func TestRemoveJobUnknownNameIsNoop(t *testing.T) {
	s := newTestScheduler(t)

	require.NoError(t, s.AddJob("cleanup", "0 4 * * *", noopAction))

	s.RemoveJob("never_registered")

	jobs := s.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "cleanup", jobs[0].Name)
}

func TestStartStopIdempotent(t *testing.T) {
	s := newTestScheduler(t)
	require.NoError(t, s.AddJob("health_check", "*/15 * * * *", noopAction))

	assert.False(t, s.Running())

	s.Start()
	s.Start()
	assert.True(t, s.Running())

	s.Stop()
	s.Stop()
	assert.False(t, s.Running())

	// Registry survives Stop.
	require.Len(t, s.Jobs(), 1)

	s.Start()
	assert.True(t, s.Running())
}

func TestJobsAddedWhileRunning(t *testing.T) {
	s := newTestScheduler(t)

	s.Start()
	require.NoError(t, s.AddJob("late_job", "*/5 * * * *", noopAction))

	jobs := s.Jobs()
	require.Len(t, jobs, 1)
	assert.NotNil(t, jobs[0].NextRun, "a job added to a running scheduler must have a next run time")
}

func TestWrapContainsActionError(t *testing.T) {
	s := newTestScheduler(t)

	ran := false
	wrapped := s.wrap("failing", func(context.Context) error {
		ran = true
		return errors.New("remote service exploded")
	})

	assert.NotPanics(t, func() {
		wrapped(context.Background())
	})
	assert.True(t, ran)
}

func TestWrapContainsActionPanic(t *testing.T) {
	s := newTestScheduler(t)

	wrapped := s.wrap("panicking", func(context.Context) error {
		panic("boom")
	})

	assert.NotPanics(t, func() {
		wrapped(context.Background())
	})

	// The scheduler itself is unaffected by the contained panic.
	require.NoError(t, s.AddJob("other", "0 * * * *", noopAction))
	s.Start()
	assert.True(t, s.Running())
}
