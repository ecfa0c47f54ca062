package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okProbe(name string) Probe {
	return Probe{Name: name, Check: func(ctx context.Context) (string, error) {
		return "1.0.0", nil
	}}
}

func failProbe(name string, err error) Probe {
	return Probe{Name: name, Check: func(ctx context.Context) (string, error) {
		return "", err
	}}
}

func TestRunChecksRecordsUnhealthyServices(t *testing.T) {
	t.Parallel()

	m := NewMonitor(nil, 15*time.Minute, []Probe{
		okProbe("Radarr"),
		failProbe("Sonarr", errors.New("connection refused")),
		okProbe("SABnzbd"),
	})

	require.NoError(t, m.RunChecks(context.Background()))

	snapshot := m.Snapshot()
	require.Len(t, snapshot.Unhealthy, 1)
	assert.Equal(t, "Sonarr: connection refused", snapshot.Unhealthy[0])
	require.NotNil(t, snapshot.LastCheck)
	assert.WithinDuration(t, time.Now(), *snapshot.LastCheck, time.Minute)
	assert.Equal(t, 15*time.Minute, snapshot.CheckInterval)
}

func TestRunChecksNeverReturnsError(t *testing.T) {
	t.Parallel()

	m := NewMonitor(nil, time.Minute, []Probe{
		failProbe("Radarr", errors.New("boom")),
		failProbe("Transmission", errors.New("boom")),
	})

	assert.NoError(t, m.RunChecks(context.Background()))
	assert.Len(t, m.Snapshot().Unhealthy, 2)
}

func TestRunChecksTracksRecovery(t *testing.T) {
	t.Parallel()

	healthy := false
	m := NewMonitor(nil, time.Minute, []Probe{{
		Name: "Radarr",
		Check: func(ctx context.Context) (string, error) {
			if healthy {
				return "5.0.0", nil
			}
			return "", errors.New("down")
		},
	}})

	require.NoError(t, m.RunChecks(context.Background()))
	assert.Len(t, m.Snapshot().Unhealthy, 1)

	healthy = true
	require.NoError(t, m.RunChecks(context.Background()))
	assert.Empty(t, m.Snapshot().Unhealthy)
}

func TestStartStopIdempotent(t *testing.T) {
	t.Parallel()

	m := NewMonitor(nil, time.Minute, nil)
	assert.False(t, m.Snapshot().Running)

	m.Start()
	m.Start()
	assert.True(t, m.Snapshot().Running)

	m.Stop()
	m.Stop()
	assert.False(t, m.Snapshot().Running)
}

func TestSnapshotCopiesUnhealthyList(t *testing.T) {
	t.Parallel()

	m := NewMonitor(nil, time.Minute, []Probe{failProbe("Radarr", errors.New("down"))})
	require.NoError(t, m.RunChecks(context.Background()))

	first := m.Snapshot()
	first.Unhealthy[0] = "mutated"
	assert.Equal(t, "Radarr: down", m.Snapshot().Unhealthy[0])
}

func TestChangedErrorTextIsNotAStateTransition(t *testing.T) {
	t.Parallel()

	probeErr := errors.New("connection refused")
	m := NewMonitor(nil, time.Minute, []Probe{{
		Name: "Sonarr",
		Check: func(ctx context.Context) (string, error) {
			return "", probeErr
		},
	}})

	require.NoError(t, m.RunChecks(context.Background()))

	probeErr = errors.New("HTTP 503")
	require.NoError(t, m.RunChecks(context.Background()))

	snapshot := m.Snapshot()
	require.Len(t, snapshot.Unhealthy, 1)
	assert.Equal(t, "Sonarr: HTTP 503", snapshot.Unhealthy[0], "the latest error text is reported")
	assert.Empty(t, diffNames(
		[]serviceFailure{{name: "Sonarr", err: "HTTP 503"}},
		[]serviceFailure{{name: "Sonarr", err: "connection refused"}},
	), "same service with a new error is not newly unhealthy")
}
