package bot

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telearr/telearr/internal/bot/tasks"
	"github.com/telearr/telearr/internal/config"
	"github.com/telearr/telearr/internal/scheduler"
)

func noopTask(ctx context.Context) error { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRegisterTasksSchedulesEnabledTasks(t *testing.T) {
	t.Parallel()

	sched, err := scheduler.New(nil)
	require.NoError(t, err)
	defer sched.Shutdown()

	cfg := config.SchedulerConfig{Tasks: map[string]config.TaskConfig{
		"health_check":      {Enabled: true, Schedule: "*/15 * * * *"},
		"store_maintenance": {Enabled: false, Schedule: "0 4 * * *"},
	}}
	funcs := map[string]tasks.ScheduledTaskFunc{
		"health_check":      noopTask,
		"store_maintenance": noopTask,
	}

	require.NoError(t, RegisterTasks(testLogger(), sched, cfg, funcs))

	jobs := sched.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "health_check", jobs[0].Name)
}

func TestRegisterTasksRejectsUnknownTaskName(t *testing.T) {
	t.Parallel()

	sched, err := scheduler.New(nil)
	require.NoError(t, err)
	defer sched.Shutdown()

	cfg := config.SchedulerConfig{Tasks: map[string]config.TaskConfig{
		"mystery_task": {Enabled: true, Schedule: "* * * * *"},
	}}

	err = RegisterTasks(testLogger(), sched, cfg, map[string]tasks.ScheduledTaskFunc{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mystery_task")
}

func TestRegisterTasksRejectsBadSchedule(t *testing.T) {
	t.Parallel()

	sched, err := scheduler.New(nil)
	require.NoError(t, err)
	defer sched.Shutdown()

	cfg := config.SchedulerConfig{Tasks: map[string]config.TaskConfig{
		"health_check": {Enabled: true, Schedule: "not a cron expression"},
	}}

	err = RegisterTasks(testLogger(), sched, cfg, map[string]tasks.ScheduledTaskFunc{"health_check": noopTask})
	assert.Error(t, err)
}
