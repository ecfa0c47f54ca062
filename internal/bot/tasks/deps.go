// Package tasks implements the scheduled tasks run by the job scheduler.
// It includes task definitions, dependencies, and registration mechanisms.
package tasks

import (
	"log/slog"

	"github.com/telearr/telearr/internal/config"
	"github.com/telearr/telearr/internal/database"
	"github.com/telearr/telearr/internal/health"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger  *slog.Logger
	Config  *config.Config
	Store   database.Store
	Monitor *health.Monitor
}
