package tasks

import (
	"context"
	"fmt"
	"time"
)

// newHealthCheckTask creates the scheduled task that probes all configured
// external services and updates the health monitor state.
func newHealthCheckTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "health_check")

	return func(ctx context.Context) error {
		log.DebugContext(ctx, "Starting scheduled health check...")
		startTime := time.Now()

		err := deps.Monitor.RunChecks(ctx)

		duration := time.Since(startTime)

		if err != nil {
			log.ErrorContext(ctx, "Health check task failed", "error", err, "duration", duration)
			return fmt.Errorf("health check failed: %w", err)
		}

		log.DebugContext(ctx, "Scheduled health check completed", "duration", duration)
		return nil
	}
}
