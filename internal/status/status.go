// Package status composes the human-readable system status report from the
// health monitor and the job scheduler. Rendering never propagates a
// failure: a broken snapshot source produces a single opaque error notice.
package status

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/telearr/telearr/internal/health"
	"github.com/telearr/telearr/internal/scheduler"
)

// ErrorNotice is the single user-facing message sent when a report cannot
// be produced.
const ErrorNotice = "❌ Error getting system status. Please try again later."

// SnapshotSource supplies the current health snapshot.
type SnapshotSource interface {
	Snapshot() health.Snapshot
}

// JobSource supplies the current scheduled job list.
type JobSource interface {
	Jobs() []scheduler.JobInfo
	Running() bool
}

// Aggregator renders composite status reports.
type Aggregator struct {
	logger *slog.Logger
	source SnapshotSource
	jobs   JobSource
}

// New builds an aggregator. jobs may be nil, omitting the scheduler section.
func New(logger *slog.Logger, source SnapshotSource, jobs JobSource) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		logger: logger.With("component", "status"),
		source: source,
		jobs:   jobs,
	}
}

// Render produces the status report. ok is false when the snapshot source
// failed, in which case the caller should send ErrorNotice instead.
func (a *Aggregator) Render() (text string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("Status source failed", "panic", r)
			text, ok = "", false
		}
	}()

	snapshot := a.source.Snapshot()

	var b strings.Builder
	b.WriteString("📊 *System Status*\n\n")

	b.WriteString("🏥 *Health Check*\n")
	if snapshot.Running {
		b.WriteString("• Status: ✅ Running\n")
	} else {
		b.WriteString("• Status: ❌ Stopped\n")
	}
	fmt.Fprintf(&b, "• Interval: %s\n", snapshot.CheckInterval)
	if snapshot.LastCheck != nil {
		fmt.Fprintf(&b, "• Last Check: %s\n", snapshot.LastCheck.Format(time.DateTime))
	}

	b.WriteString("\n🔧 *Services*\n")
	if len(snapshot.Unhealthy) > 0 {
		b.WriteString("❌ Unhealthy Services:\n")
		for _, service := range snapshot.Unhealthy {
			fmt.Fprintf(&b, "• %s\n", service)
		}
	} else {
		b.WriteString("✅ All services are healthy\n")
	}

	if a.jobs != nil {
		b.WriteString("\n⏰ *Scheduled Jobs*\n")
		jobs := a.jobs.Jobs()
		if len(jobs) == 0 {
			b.WriteString("• none\n")
		}
		for _, job := range jobs {
			if job.NextRun != nil {
				fmt.Fprintf(&b, "• %s (`%s`), next run %s\n", job.Name, job.Schedule, job.NextRun.Format(time.DateTime))
			} else {
				fmt.Fprintf(&b, "• %s (`%s`)\n", job.Name, job.Schedule)
			}
		}
	}

	return b.String(), true
}
