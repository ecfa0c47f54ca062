package arr

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	return &Client{
		name:       "radarr",
		baseURL:    srv.URL,
		apiBase:    "/api/v3",
		apiKey:     "test-key",
		httpClient: srv.Client(),
		logger:     slog.Default(),
	}
}

func TestRequestSendsAPIKey(t *testing.T) {
	t.Parallel()

	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Api-Key")
		w.Write([]byte(`{"version":"5.0.0"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	version, err := c.SystemStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "5.0.0", version)
	assert.Equal(t, "test-key", gotKey)
}

func TestRequestRetriesOnServerError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"version":"5.0.0"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	version, err := c.SystemStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "5.0.0", version)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRequestGivesUpAfterMaxRetries(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.SystemStatus(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Equal(t, int32(maxRetries+1), calls.Load())
}

func TestRequestDoesNotRetryClientError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`[{"errorMessage":"Movie not found"}]`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.SystemStatus(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Movie not found")
	assert.Equal(t, int32(1), calls.Load())
}

func TestRequestHonorsContextCancellation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestClient(t, srv)
	_, err := c.SystemStatus(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestParseErrorBody(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{"arr error array", `[{"errorMessage":"This movie has already been added"}]`, "This movie has already been added"},
		{"empty body", ``, "no response body"},
		{"plain text", `upstream exploded`, "upstream exploded"},
		{"malformed array", `[{]`, "[{]"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, parseErrorBody([]byte(tc.body)))
		})
	}
}

func TestAlreadyExists(t *testing.T) {
	t.Parallel()

	assert.True(t, AlreadyExists(errors.New(`radarr returned HTTP 400: This movie has already been added`)))
	assert.True(t, AlreadyExists(errors.New(`sonarr returned HTTP 400: This series is already in your library`)))
	assert.False(t, AlreadyExists(errors.New("connection error: dial tcp: refused")))
	assert.False(t, AlreadyExists(nil))
}

func TestFilterRootFolders(t *testing.T) {
	t.Parallel()

	c := &Client{excluded: []string{"/movies/kids"}}
	folders := []rootFolderResource{
		{Path: "/movies", FreeSpace: 100},
		{Path: "/movies/kids", FreeSpace: 50},
		{Path: "/movies/4k", FreeSpace: 200},
	}

	kept := c.filterRootFolders(folders)
	require.Len(t, kept, 2)
	assert.Equal(t, "/movies", kept[0].Path)
	assert.Equal(t, "/movies/4k", kept[1].Path)
}

func TestPosterURLPrefersRemote(t *testing.T) {
	t.Parallel()

	images := []imageResource{
		{CoverType: "banner", RemoteURL: "https://example.com/banner.jpg"},
		{CoverType: "poster", RemoteURL: "https://example.com/poster.jpg", URL: "/local/poster.jpg"},
	}
	assert.Equal(t, "https://example.com/poster.jpg", posterURL(images))

	assert.Equal(t, "/local/poster.jpg", posterURL([]imageResource{{CoverType: "poster", URL: "/local/poster.jpg"}}))
	assert.Equal(t, "", posterURL(nil))
}
