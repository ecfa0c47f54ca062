// Package health runs reachability probes against the configured services
// and keeps a point-in-time snapshot of which ones are unhealthy. The
// periodic cadence is driven externally (a scheduled job); this package only
// executes checks and tracks state.
package health

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Probe checks one service and returns its reported version on success.
type Probe struct {
	Name  string
	Check func(ctx context.Context) (string, error)
}

// Snapshot is a point-in-time report of monitor state. Unhealthy entries are
// ordered by probe registration order; an empty list means every enabled
// service answered its last check.
type Snapshot struct {
	Running       bool
	CheckInterval time.Duration
	LastCheck     *time.Time
	Unhealthy     []string
}

// serviceFailure records one probe failure. The name alone identifies the
// failing service; the error text is informational and may change between
// runs without the service counting as recovered.
type serviceFailure struct {
	name string
	err  string
}

// Monitor executes probes and diffs the unhealthy set between runs.
type Monitor struct {
	logger   *slog.Logger
	interval time.Duration
	probes   []Probe

	mu        sync.Mutex
	running   bool
	lastCheck *time.Time
	failures  []serviceFailure
}

// NewMonitor builds a monitor over the given probes. interval is the
// configured check cadence, reported in snapshots.
func NewMonitor(logger *slog.Logger, interval time.Duration, probes []Probe) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		logger:   logger.With("component", "health"),
		interval: interval,
		probes:   probes,
	}
}

// Start marks periodic monitoring as active. Idempotent.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	m.running = true
	m.logger.Info("Health monitoring started", "interval", m.interval, "probes", len(m.probes))
}

// Stop marks periodic monitoring as inactive. Idempotent.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	m.running = false
	m.logger.Info("Health monitoring stopped")
}

// RunChecks probes every service once and updates the unhealthy set,
// logging services that became unhealthy or recovered since the previous
// run. It never returns an error; probe failures are part of the result.
func (m *Monitor) RunChecks(ctx context.Context) error {
	var failures []serviceFailure

	for _, probe := range m.probes {
		version, err := probe.Check(ctx)
		if err != nil {
			m.logger.Warn("Service unhealthy", "service", probe.Name, "error", err)
			failures = append(failures, serviceFailure{name: probe.Name, err: err.Error()})
			continue
		}
		m.logger.Debug("Service healthy", "service", probe.Name, "version", version)
	}

	now := time.Now()

	m.mu.Lock()
	previous := m.failures
	m.failures = failures
	m.lastCheck = &now
	m.mu.Unlock()

	for _, name := range diffNames(failures, previous) {
		m.logger.Error("Service became unhealthy", "service", name)
	}
	for _, name := range diffNames(previous, failures) {
		m.logger.Info("Service recovered", "service", name)
	}

	if len(failures) == 0 {
		m.logger.Info("All services healthy", "checked", len(m.probes))
	}

	return nil
}

// Snapshot returns the current monitor state. It never fails.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	unhealthy := make([]string, 0, len(m.failures))
	for _, f := range m.failures {
		unhealthy = append(unhealthy, fmt.Sprintf("%s: %s", f.name, f.err))
	}

	return Snapshot{
		Running:       m.running,
		CheckInterval: m.interval,
		LastCheck:     m.lastCheck,
		Unhealthy:     unhealthy,
	}
}

// diffNames returns the service names of a that are not failing in b,
// preserving order. Error text is ignored so a changed message does not
// count as a state transition.
func diffNames(a, b []serviceFailure) []string {
	seen := make(map[string]bool, len(b))
	for _, f := range b {
		seen[f.name] = true
	}

	var out []string
	for _, f := range a {
		if !seen[f.name] {
			out = append(out, f.name)
		}
	}
	return out
}
