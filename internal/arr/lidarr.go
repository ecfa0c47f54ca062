package arr

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/telearr/telearr/internal/config"
	"github.com/telearr/telearr/internal/media"
)

// Lidarr is the music manager client.
type Lidarr struct {
	*Client
}

// NewLidarr validates the Lidarr configuration and returns a client for its
// v1 API.
func NewLidarr(cfg config.ArrConfig, logger *slog.Logger) (*Lidarr, error) {
	c, err := newClient("lidarr", cfg, "/api/v1", logger)
	if err != nil {
		return nil, err
	}
	return &Lidarr{Client: c}, nil
}

type artistResource struct {
	ID              int64           `json:"id"`
	ArtistName      string          `json:"artistName"`
	Overview        string          `json:"overview"`
	ForeignArtistID string          `json:"foreignArtistId"`
	ArtistType      string          `json:"artistType"`
	Images          []imageResource `json:"images"`
}

func (r artistResource) toItem() media.Item {
	return media.Item{
		Kind:            media.KindArtist,
		ID:              r.ID,
		Title:           r.ArtistName,
		Overview:        r.Overview,
		PosterURL:       posterURL(r.Images),
		ForeignArtistID: r.ForeignArtistID,
		ArtistType:      r.ArtistType,
	}
}

// Search looks up artists by free-text term.
func (l *Lidarr) Search(ctx context.Context, term string) ([]media.Item, error) {
	var resources []artistResource
	endpoint := "artist/lookup?term=" + url.QueryEscape(term)
	if err := l.get(ctx, endpoint, &resources); err != nil {
		return nil, err
	}

	items := make([]media.Item, 0, len(resources))
	for _, res := range resources {
		items = append(items, res.toItem())
	}
	return items, nil
}

// Artists lists the library.
func (l *Lidarr) Artists(ctx context.Context) ([]media.Item, error) {
	var resources []artistResource
	if err := l.get(ctx, "artist", &resources); err != nil {
		return nil, err
	}

	items := make([]media.Item, 0, len(resources))
	for _, res := range resources {
		items = append(items, res.toItem())
	}
	return items, nil
}

type metadataProfileResource struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// MetadataProfiles lists Lidarr's metadata profiles; the first one is used
// as the default when adding artists.
func (l *Lidarr) MetadataProfiles(ctx context.Context) ([]media.QualityProfile, error) {
	var resources []metadataProfileResource
	if err := l.get(ctx, "metadataprofile", &resources); err != nil {
		return nil, err
	}

	profiles := make([]media.QualityProfile, 0, len(resources))
	for _, r := range resources {
		profiles = append(profiles, media.QualityProfile{ID: r.ID, Name: r.Name})
	}
	return profiles, nil
}

type addArtistRequest struct {
	ForeignArtistID   string           `json:"foreignArtistId"`
	ArtistName        string           `json:"artistName"`
	QualityProfileID  int64            `json:"qualityProfileId"`
	MetadataProfileID int64            `json:"metadataProfileId"`
	RootFolderPath    string           `json:"rootFolderPath"`
	Monitored         bool             `json:"monitored"`
	AddOptions        addArtistOptions `json:"addOptions"`
}

type addArtistOptions struct {
	SearchForMissingAlbums bool `json:"searchForMissingAlbums"`
}

// AddArtist adds an artist by MusicBrainz id with a search for missing
// albums. When metadataProfileID is zero the first configured profile is
// used.
func (l *Lidarr) AddArtist(ctx context.Context, foreignArtistID string, qualityProfileID, metadataProfileID int64, rootFolder string) error {
	var resources []artistResource
	endpoint := "artist/lookup?term=" + url.QueryEscape("lidarr:"+foreignArtistID)
	if err := l.get(ctx, endpoint, &resources); err != nil {
		return err
	}
	if len(resources) == 0 {
		return fmt.Errorf("no artist found with ID %s", foreignArtistID)
	}

	if metadataProfileID == 0 {
		profiles, err := l.MetadataProfiles(ctx)
		if err != nil {
			return err
		}
		if len(profiles) == 0 {
			return fmt.Errorf("lidarr has no metadata profiles configured")
		}
		metadataProfileID = profiles[0].ID
	}

	req := addArtistRequest{
		ForeignArtistID:   resources[0].ForeignArtistID,
		ArtistName:        resources[0].ArtistName,
		QualityProfileID:  qualityProfileID,
		MetadataProfileID: metadataProfileID,
		RootFolderPath:    rootFolder,
		Monitored:         true,
		AddOptions:        addArtistOptions{SearchForMissingAlbums: true},
	}
	return l.post(ctx, "artist", req, nil)
}

// DeleteArtist removes an artist from the library, keeping files.
func (l *Lidarr) DeleteArtist(ctx context.Context, artistID int64) error {
	return l.delete(ctx, fmt.Sprintf("artist/%d?deleteFiles=false", artistID))
}
