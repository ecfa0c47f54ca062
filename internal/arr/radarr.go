package arr

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/telearr/telearr/internal/config"
	"github.com/telearr/telearr/internal/media"
)

// Radarr is the movie manager client.
type Radarr struct {
	*Client
}

// NewRadarr validates the Radarr configuration and returns a client for its
// v3 API.
func NewRadarr(cfg config.ArrConfig, logger *slog.Logger) (*Radarr, error) {
	c, err := newClient("radarr", cfg, "/api/v3", logger)
	if err != nil {
		return nil, err
	}
	return &Radarr{Client: c}, nil
}

type movieResource struct {
	ID       int64           `json:"id"`
	Title    string          `json:"title"`
	Year     int             `json:"year"`
	Overview string          `json:"overview"`
	TmdbID   int64           `json:"tmdbId"`
	Images   []imageResource `json:"images"`
}

func (r movieResource) toItem() media.Item {
	return media.Item{
		Kind:      media.KindMovie,
		ID:        r.ID,
		Title:     r.Title,
		Year:      r.Year,
		Overview:  r.Overview,
		PosterURL: posterURL(r.Images),
		TMDBID:    r.TmdbID,
	}
}

// Search looks up movies by free-text term.
func (r *Radarr) Search(ctx context.Context, term string) ([]media.Item, error) {
	var resources []movieResource
	endpoint := "movie/lookup?term=" + url.QueryEscape(term)
	if err := r.get(ctx, endpoint, &resources); err != nil {
		return nil, err
	}

	items := make([]media.Item, 0, len(resources))
	for _, res := range resources {
		items = append(items, res.toItem())
	}
	return items, nil
}

// Movies lists the library.
func (r *Radarr) Movies(ctx context.Context) ([]media.Item, error) {
	var resources []movieResource
	if err := r.get(ctx, "movie", &resources); err != nil {
		return nil, err
	}

	items := make([]media.Item, 0, len(resources))
	for _, res := range resources {
		items = append(items, res.toItem())
	}
	return items, nil
}

type addMovieRequest struct {
	TmdbID              int64           `json:"tmdbId"`
	Title               string          `json:"title"`
	QualityProfileID    int64           `json:"qualityProfileId"`
	RootFolderPath      string          `json:"rootFolderPath"`
	Monitored           bool            `json:"monitored"`
	MinimumAvailability string          `json:"minimumAvailability"`
	AddOptions          addMovieOptions `json:"addOptions"`
}

type addMovieOptions struct {
	SearchForMovie bool `json:"searchForMovie"`
}

// AddMovie adds a movie by TMDB id, monitored, with an immediate search.
func (r *Radarr) AddMovie(ctx context.Context, tmdbID, qualityProfileID int64, rootFolder string) error {
	var resources []movieResource
	endpoint := fmt.Sprintf("movie/lookup?term=%s", url.QueryEscape(fmt.Sprintf("tmdb:%d", tmdbID)))
	if err := r.get(ctx, endpoint, &resources); err != nil {
		return err
	}
	if len(resources) == 0 {
		return fmt.Errorf("no movie found with TMDB ID %d", tmdbID)
	}

	req := addMovieRequest{
		TmdbID:              resources[0].TmdbID,
		Title:               resources[0].Title,
		QualityProfileID:    qualityProfileID,
		RootFolderPath:      rootFolder,
		Monitored:           true,
		MinimumAvailability: "announced",
		AddOptions:          addMovieOptions{SearchForMovie: true},
	}
	return r.post(ctx, "movie", req, nil)
}

// DeleteMovie removes a movie from the library, keeping its files.
func (r *Radarr) DeleteMovie(ctx context.Context, movieID int64) error {
	return r.delete(ctx, fmt.Sprintf("movie/%d?deleteFiles=false", movieID))
}
