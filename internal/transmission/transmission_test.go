package transmission

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telearr/telearr/internal/config"
)

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	return &Client{
		rpcURL:     srv.URL + "/transmission/rpc",
		httpClient: srv.Client(),
		logger:     slog.Default(),
	}
}

// sessionServer imitates the Transmission CSRF handshake: requests without
// the current session id get a 409 carrying the id to use.
func sessionServer(t *testing.T, handler func(w http.ResponseWriter, req rpcRequest)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(sessionIDHeader) != "session-123" {
			w.Header().Set(sessionIDHeader, "session-123")
			w.WriteHeader(http.StatusConflict)
			return
		}
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		handler(w, req)
	}))
}

func TestCallNegotiatesSessionID(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := sessionServer(t, func(w http.ResponseWriter, req rpcRequest) {
		calls.Add(1)
		w.Write([]byte(`{"result":"success","arguments":{"version":"4.0.5","alt-speed-enabled":true}}`))
	})
	defer srv.Close()

	c := newTestClient(t, srv)
	version, err := c.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "4.0.5", version)
	assert.Equal(t, int32(1), calls.Load())

	// The negotiated id is reused on the next call.
	_, err = c.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCallFailsWhenNegotiationLoops(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(sessionIDHeader, "rotating-id-"+r.Header.Get(sessionIDHeader))
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.Version(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "negotiation failed")
}

func TestSetAltSpeed(t *testing.T) {
	t.Parallel()

	var gotMethod string
	var gotEnabled bool
	srv := sessionServer(t, func(w http.ResponseWriter, req rpcRequest) {
		gotMethod = req.Method
		gotEnabled, _ = req.Arguments["alt-speed-enabled"].(bool)
		w.Write([]byte(`{"result":"success","arguments":{}}`))
	})
	defer srv.Close()

	c := newTestClient(t, srv)
	assert.True(t, c.SetAltSpeed(context.Background(), true))
	assert.Equal(t, "session-set", gotMethod)
	assert.True(t, gotEnabled)

	assert.True(t, c.SetAltSpeed(context.Background(), false))
	assert.False(t, gotEnabled)
}

func TestSetAltSpeedReturnsFalseOnRPCError(t *testing.T) {
	t.Parallel()

	srv := sessionServer(t, func(w http.ResponseWriter, req rpcRequest) {
		w.Write([]byte(`{"result":"forbidden","arguments":{}}`))
	})
	defer srv.Close()

	c := newTestClient(t, srv)
	assert.False(t, c.SetAltSpeed(context.Background(), true))
}

func TestStatusNeverFails(t *testing.T) {
	t.Parallel()

	srv := sessionServer(t, func(w http.ResponseWriter, req rpcRequest) {
		w.Write([]byte(`{"result":"success","arguments":{"version":"4.0.5","alt-speed-enabled":true}}`))
	})

	c := newTestClient(t, srv)
	st := c.Status(context.Background())
	assert.True(t, st.Connected)
	assert.True(t, st.AltSpeedEnabled)
	assert.Equal(t, "4.0.5", st.Version)
	assert.Empty(t, st.Error)

	srv.Close()
	st = c.Status(context.Background())
	assert.True(t, st.Enabled)
	assert.False(t, st.Connected)
	assert.NotEmpty(t, st.Error)
}

func TestNewRejectsIncompleteConfig(t *testing.T) {
	t.Parallel()

	_, err := New(config.TransmissionConfig{Enabled: false}, slog.Default())
	assert.Error(t, err)

	_, err = New(config.TransmissionConfig{Enabled: true, Host: "localhost"}, slog.Default())
	assert.Error(t, err, "missing port must fail construction")
}
