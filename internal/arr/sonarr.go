package arr

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/telearr/telearr/internal/config"
	"github.com/telearr/telearr/internal/media"
)

// Sonarr is the series manager client.
type Sonarr struct {
	*Client
}

// NewSonarr validates the Sonarr configuration and returns a client for its
// v3 API.
func NewSonarr(cfg config.ArrConfig, logger *slog.Logger) (*Sonarr, error) {
	c, err := newClient("sonarr", cfg, "/api/v3", logger)
	if err != nil {
		return nil, err
	}
	return &Sonarr{Client: c}, nil
}

type seriesResource struct {
	ID       int64           `json:"id"`
	Title    string          `json:"title"`
	Year     int             `json:"year"`
	Overview string          `json:"overview"`
	TvdbID   int64           `json:"tvdbId"`
	Images   []imageResource `json:"images"`
	Seasons  []seasonResource `json:"seasons"`
}

type seasonResource struct {
	SeasonNumber int  `json:"seasonNumber"`
	Monitored    bool `json:"monitored"`
}

func (r seriesResource) toItem() media.Item {
	seasons := 0
	for _, s := range r.Seasons {
		if s.SeasonNumber > 0 {
			seasons++
		}
	}
	return media.Item{
		Kind:        media.KindSeries,
		ID:          r.ID,
		Title:       r.Title,
		Year:        r.Year,
		Overview:    r.Overview,
		PosterURL:   posterURL(r.Images),
		TVDBID:      r.TvdbID,
		SeasonCount: seasons,
	}
}

// Search looks up series by free-text term.
func (s *Sonarr) Search(ctx context.Context, term string) ([]media.Item, error) {
	var resources []seriesResource
	endpoint := "series/lookup?term=" + url.QueryEscape(term)
	if err := s.get(ctx, endpoint, &resources); err != nil {
		return nil, err
	}

	items := make([]media.Item, 0, len(resources))
	for _, res := range resources {
		items = append(items, res.toItem())
	}
	return items, nil
}

// Series lists the library.
func (s *Sonarr) Series(ctx context.Context) ([]media.Item, error) {
	var resources []seriesResource
	if err := s.get(ctx, "series", &resources); err != nil {
		return nil, err
	}

	items := make([]media.Item, 0, len(resources))
	for _, res := range resources {
		items = append(items, res.toItem())
	}
	return items, nil
}

type addSeriesRequest struct {
	TvdbID           int64            `json:"tvdbId"`
	Title            string           `json:"title"`
	QualityProfileID int64            `json:"qualityProfileId"`
	RootFolderPath   string           `json:"rootFolderPath"`
	Monitored        bool             `json:"monitored"`
	SeasonFolder     bool             `json:"seasonFolder"`
	Seasons          []seasonResource `json:"seasons,omitempty"`
	AddOptions       addSeriesOptions `json:"addOptions"`
}

type addSeriesOptions struct {
	SearchForMissingEpisodes bool `json:"searchForMissingEpisodes"`
}

// AddSeries adds a series by TVDB id. When monitoredSeasons is non-empty only
// those season numbers are monitored; otherwise every season is.
func (s *Sonarr) AddSeries(ctx context.Context, tvdbID, qualityProfileID int64, rootFolder string, monitoredSeasons []int) error {
	var resources []seriesResource
	endpoint := fmt.Sprintf("series/lookup?term=%s", url.QueryEscape(fmt.Sprintf("tvdb:%d", tvdbID)))
	if err := s.get(ctx, endpoint, &resources); err != nil {
		return err
	}
	if len(resources) == 0 {
		return fmt.Errorf("no series found with TVDB ID %d", tvdbID)
	}
	found := resources[0]

	var seasons []seasonResource
	if len(monitoredSeasons) > 0 {
		wanted := make(map[int]bool, len(monitoredSeasons))
		for _, n := range monitoredSeasons {
			wanted[n] = true
		}
		for _, season := range found.Seasons {
			seasons = append(seasons, seasonResource{
				SeasonNumber: season.SeasonNumber,
				Monitored:    wanted[season.SeasonNumber],
			})
		}
	}

	req := addSeriesRequest{
		TvdbID:           found.TvdbID,
		Title:            found.Title,
		QualityProfileID: qualityProfileID,
		RootFolderPath:   rootFolder,
		Monitored:        true,
		SeasonFolder:     true,
		Seasons:          seasons,
		AddOptions:       addSeriesOptions{SearchForMissingEpisodes: true},
	}
	return s.post(ctx, "series", req, nil)
}

// DeleteSeries removes a series from the library, keeping its files.
func (s *Sonarr) DeleteSeries(ctx context.Context, seriesID int64) error {
	return s.delete(ctx, fmt.Sprintf("series/%d?deleteFiles=false", seriesID))
}
