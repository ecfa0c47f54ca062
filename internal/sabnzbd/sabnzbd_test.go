package sabnzbd

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telearr/telearr/internal/config"
)

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	return &Client{
		apiURL:     srv.URL + "/api",
		apiKey:     "test-key",
		httpClient: srv.Client(),
		logger:     slog.Default(),
	}
}

func TestQueueCountsDownloadingSlots(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "queue", r.URL.Query().Get("mode"))
		assert.Equal(t, "json", r.URL.Query().Get("output"))
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		w.Write([]byte(`{"queue":{
			"slots":[{"status":"Downloading"},{"status":"Queued"},{"status":"Paused"}],
			"noofslots":3,"speed":"5.2 MB/s","size":"1.2 GB","paused":false}}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	queue := c.Queue(context.Background())

	assert.Equal(t, 1, queue.Active)
	assert.Equal(t, 3, queue.Queued)
	assert.Equal(t, "5.2 MB/s", queue.Speed)
	assert.Equal(t, "1.2 GB", queue.Size)
}

func TestQueueDefaultsOnServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	queue := c.Queue(context.Background())

	assert.Equal(t, QueueStatus{Active: 0, Queued: 0, Speed: "0 KB/s", Size: "0 MB"}, queue)
}

func TestQueueDefaultsOnMissingFields(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"queue":{}}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	queue := c.Queue(context.Background())

	assert.Equal(t, "0 KB/s", queue.Speed)
	assert.Equal(t, "0 MB", queue.Size)
}

func TestCommandReportsRemoteStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     string
		code     int
		expected bool
	}{
		{"status true", `{"status":true}`, http.StatusOK, true},
		{"status false", `{"status":false}`, http.StatusOK, false},
		{"status missing", `{}`, http.StatusOK, false},
		{"http error", `{"status":true}`, http.StatusBadGateway, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.code)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := newTestClient(t, srv)
			assert.Equal(t, tc.expected, c.PauseQueue(context.Background()))
		})
	}
}

func TestSetSpeedLimitSendsPercent(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "config", r.URL.Query().Get("mode"))
		assert.Equal(t, "speedlimit", r.URL.Query().Get("name"))
		assert.Equal(t, "50", r.URL.Query().Get("value"))
		w.Write([]byte(`{"status":true}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	assert.True(t, c.SetSpeedLimit(context.Background(), 50))
}

func TestVersionReturnsErrorForHealthProbe(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"version":"4.3.2"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	version, err := c.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "4.3.2", version)

	srv.Close()
	_, err = c.Version(context.Background())
	assert.Error(t, err)
}

func TestNewRejectsIncompleteConfig(t *testing.T) {
	t.Parallel()

	_, err := New(config.SABnzbdConfig{Enabled: false}, slog.Default())
	assert.Error(t, err)

	_, err = New(config.SABnzbdConfig{
		Enabled: true,
		Server:  config.ServerConfig{Addr: "localhost", Port: 8080},
	}, slog.Default())
	assert.Error(t, err, "missing API key must fail construction")
}
