package library

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telearr/telearr/internal/arr"
	"github.com/telearr/telearr/internal/config"
	"github.com/telearr/telearr/internal/media"
)

func radarrFor(t *testing.T, srv *httptest.Server) *arr.Radarr {
	t.Helper()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	r, err := arr.NewRadarr(config.ArrConfig{
		Enabled: true,
		Server:  config.ServerConfig{Addr: u.Hostname(), Port: port},
		APIKey:  "test-key",
	}, nil)
	require.NoError(t, err)
	return r
}

func searchServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"title":"Dune","tmdbId":438631}]`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestUnconfiguredServicesDegradeToEmptyResults(t *testing.T) {
	t.Parallel()

	s := NewService(nil, nil, nil, nil)

	assert.False(t, s.MoviesEnabled())
	assert.False(t, s.SeriesEnabled())
	assert.False(t, s.MusicEnabled())

	result := s.Search(context.Background(), media.KindMovie, "dune")
	assert.Equal(t, media.KindMovie, result.Kind)
	assert.Empty(t, result.Items)
	assert.Zero(t, result.Total)

	assert.Nil(t, s.QualityProfiles(context.Background(), media.KindSeries))
	assert.Nil(t, s.RootFolders(context.Background(), media.KindArtist))
	assert.Nil(t, s.Library(context.Background(), media.KindMovie))
	assert.False(t, s.Delete(context.Background(), media.KindMovie, 1))

	added := s.Add(context.Background(), media.Item{Kind: media.KindMovie, Title: "Dune"}, 1, "/movies")
	assert.False(t, added.OK)
	assert.Contains(t, added.Message, "not available")
}

func TestRuntimeToggleDisablesConfiguredService(t *testing.T) {
	t.Parallel()

	s := NewService(nil, radarrFor(t, searchServer(t)), nil, nil)
	require.True(t, s.MoviesEnabled())
	require.True(t, s.Configured(media.KindMovie))

	s.SetKindEnabled(media.KindMovie, false)

	assert.False(t, s.MoviesEnabled())
	assert.True(t, s.Configured(media.KindMovie), "a toggled-off service stays configured")
	assert.Empty(t, s.Search(context.Background(), media.KindMovie, "dune").Items)

	added := s.Add(context.Background(), media.Item{Kind: media.KindMovie, Title: "Dune", TMDBID: 438631}, 1, "/movies")
	assert.False(t, added.OK)
	assert.Contains(t, added.Message, "not available")

	s.SetKindEnabled(media.KindMovie, true)
	assert.True(t, s.MoviesEnabled())
	assert.Len(t, s.Search(context.Background(), media.KindMovie, "dune").Items, 1)
}

func TestApplyOverrides(t *testing.T) {
	t.Parallel()

	s := NewService(nil, radarrFor(t, searchServer(t)), nil, nil)

	s.ApplyOverrides(map[string]string{
		SettingKey(media.KindMovie): "false",
		"unrelated.key":             "true",
	})
	assert.False(t, s.MoviesEnabled())

	s.ApplyOverrides(map[string]string{SettingKey(media.KindMovie): "true"})
	assert.True(t, s.MoviesEnabled())
}

func TestSearchFailureYieldsEmptyResult(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	s := NewService(nil, radarrFor(t, srv), nil, nil)
	result := s.Search(context.Background(), media.KindMovie, "dune")

	assert.Equal(t, media.KindMovie, result.Kind)
	assert.Empty(t, result.Items)
}

func TestAddReportsAlreadyExists(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`[{"errorMessage":"This movie has already been added"}]`))
			return
		}
		w.Write([]byte(`[{"title":"Dune","tmdbId":438631}]`))
	}))
	defer srv.Close()

	s := NewService(nil, radarrFor(t, srv), nil, nil)
	result := s.Add(context.Background(), media.Item{Kind: media.KindMovie, Title: "Dune", TMDBID: 438631}, 1, "/movies")

	assert.False(t, result.OK)
	assert.True(t, result.AlreadyExists)
	assert.Contains(t, result.Message, "already in your library")
}

func TestAddSuccess(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusCreated)
			return
		}
		w.Write([]byte(`[{"title":"Dune","tmdbId":438631}]`))
	}))
	defer srv.Close()

	s := NewService(nil, radarrFor(t, srv), nil, nil)
	result := s.Add(context.Background(), media.Item{Kind: media.KindMovie, Title: "Dune", TMDBID: 438631}, 1, "/movies")

	assert.True(t, result.OK)
	assert.Contains(t, result.Message, "has been added")
}
