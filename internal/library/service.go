// Package library is the facade the Telegram handlers talk to for media
// operations. It routes by media kind to the managing service client and
// normalizes every failure into an empty or default result.
package library

import (
	"context"
	"log/slog"
	"sync"

	"github.com/telearr/telearr/internal/arr"
	"github.com/telearr/telearr/internal/media"
)

// SettingKey is the store key holding a kind's runtime enable override.
func SettingKey(kind media.Kind) string {
	return "service." + string(kind) + ".enabled"
}

// Service routes media operations to Radarr, Sonarr and Lidarr. Clients may
// be nil when their service is unconfigured; a configured service can
// additionally be disabled at runtime via SetKindEnabled. Every operation on
// an unavailable service degrades to an empty result. Transport failures are
// logged here and never surface as errors.
type Service struct {
	logger *slog.Logger
	radarr *arr.Radarr
	sonarr *arr.Sonarr
	lidarr *arr.Lidarr

	mu       sync.RWMutex
	disabled map[media.Kind]bool
}

// NewService wires the facade with whichever clients are available.
func NewService(logger *slog.Logger, radarr *arr.Radarr, sonarr *arr.Sonarr, lidarr *arr.Lidarr) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		logger:   logger.With("component", "library"),
		radarr:   radarr,
		sonarr:   sonarr,
		lidarr:   lidarr,
		disabled: make(map[media.Kind]bool),
	}
}

// Configured reports whether a client exists for the kind, regardless of any
// runtime override.
func (s *Service) Configured(kind media.Kind) bool {
	switch kind {
	case media.KindMovie:
		return s.radarr != nil
	case media.KindSeries:
		return s.sonarr != nil
	case media.KindArtist:
		return s.lidarr != nil
	}
	return false
}

// Enabled reports whether requests for the kind can currently be served.
func (s *Service) Enabled(kind media.Kind) bool {
	if !s.Configured(kind) {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.disabled[kind]
}

// SetKindEnabled overrides a configured kind's availability at runtime.
// Enabling an unconfigured kind has no effect.
func (s *Service) SetKindEnabled(kind media.Kind, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disabled[kind] = !enabled
}

// ApplyOverrides applies persisted enable overrides keyed by SettingKey.
// Unknown keys are ignored.
func (s *Service) ApplyOverrides(overrides map[string]string) {
	for _, kind := range []media.Kind{media.KindMovie, media.KindSeries, media.KindArtist} {
		if value, ok := overrides[SettingKey(kind)]; ok {
			s.SetKindEnabled(kind, value != "false")
		}
	}
}

// MoviesEnabled reports whether movie requests can be served.
func (s *Service) MoviesEnabled() bool { return s.Enabled(media.KindMovie) }

// SeriesEnabled reports whether series requests can be served.
func (s *Service) SeriesEnabled() bool { return s.Enabled(media.KindSeries) }

// MusicEnabled reports whether music requests can be served.
func (s *Service) MusicEnabled() bool { return s.Enabled(media.KindArtist) }

// Search runs a free-text search for the given kind. Failures yield an empty
// result set.
func (s *Service) Search(ctx context.Context, kind media.Kind, term string) media.SearchResult {
	if !s.Enabled(kind) {
		return media.SearchResult{Kind: kind}
	}

	var (
		items []media.Item
		err   error
	)

	switch kind {
	case media.KindMovie:
		items, err = s.radarr.Search(ctx, term)
	case media.KindSeries:
		items, err = s.sonarr.Search(ctx, term)
	case media.KindArtist:
		items, err = s.lidarr.Search(ctx, term)
	default:
		return media.SearchResult{Kind: kind}
	}

	if err != nil {
		s.logger.Error("Search failed", "kind", kind, "term", term, "error", err)
		return media.SearchResult{Kind: kind}
	}

	return media.SearchResult{Kind: kind, Items: items, Total: len(items)}
}

// clientFor returns the shared client for an available kind, or nil.
func (s *Service) clientFor(kind media.Kind) *arr.Client {
	if !s.Enabled(kind) {
		return nil
	}
	switch kind {
	case media.KindMovie:
		return s.radarr.Client
	case media.KindSeries:
		return s.sonarr.Client
	case media.KindArtist:
		return s.lidarr.Client
	}
	return nil
}

// QualityProfiles lists profiles for the kind's service; empty on failure.
func (s *Service) QualityProfiles(ctx context.Context, kind media.Kind) []media.QualityProfile {
	client := s.clientFor(kind)
	if client == nil {
		return nil
	}

	profiles, err := client.QualityProfiles(ctx)
	if err != nil {
		s.logger.Error("Failed to get quality profiles", "kind", kind, "error", err)
		return nil
	}
	return profiles
}

// RootFolders lists root folders for the kind's service; empty on failure.
func (s *Service) RootFolders(ctx context.Context, kind media.Kind) []media.RootFolder {
	client := s.clientFor(kind)
	if client == nil {
		return nil
	}

	folders, err := client.RootFolders(ctx)
	if err != nil {
		s.logger.Error("Failed to get root folders", "kind", kind, "error", err)
		return nil
	}
	return folders
}

// AddResult reports the outcome of an add operation.
type AddResult struct {
	OK            bool
	AlreadyExists bool
	Message       string
}

// Add sends one item to its managing service. The item must carry the
// kind-specific id; profile and folder come from the handler conversation.
func (s *Service) Add(ctx context.Context, item media.Item, qualityProfileID int64, rootFolder string) AddResult {
	var err error

	switch item.Kind {
	case media.KindMovie:
		if !s.Enabled(media.KindMovie) {
			return AddResult{Message: "Radarr is not available"}
		}
		err = s.radarr.AddMovie(ctx, item.TMDBID, qualityProfileID, rootFolder)
	case media.KindSeries:
		if !s.Enabled(media.KindSeries) {
			return AddResult{Message: "Sonarr is not available"}
		}
		err = s.sonarr.AddSeries(ctx, item.TVDBID, qualityProfileID, rootFolder, nil)
	case media.KindArtist:
		if !s.Enabled(media.KindArtist) {
			return AddResult{Message: "Lidarr is not available"}
		}
		err = s.lidarr.AddArtist(ctx, item.ForeignArtistID, qualityProfileID, 0, rootFolder)
	default:
		return AddResult{Message: "Unknown media kind"}
	}

	if err != nil {
		if arr.AlreadyExists(err) {
			s.logger.Info("Item already in library", "kind", item.Kind, "title", item.Title)
			return AddResult{AlreadyExists: true, Message: item.Title + " is already in your library"}
		}
		s.logger.Error("Failed to add item", "kind", item.Kind, "title", item.Title, "error", err)
		return AddResult{Message: "Failed to add " + item.Title}
	}

	return AddResult{OK: true, Message: item.Title + " has been added"}
}

// Library lists everything the kind's service manages; empty on failure.
func (s *Service) Library(ctx context.Context, kind media.Kind) []media.Item {
	if !s.Enabled(kind) {
		return nil
	}

	var (
		items []media.Item
		err   error
	)

	switch kind {
	case media.KindMovie:
		items, err = s.radarr.Movies(ctx)
	case media.KindSeries:
		items, err = s.sonarr.Series(ctx)
	case media.KindArtist:
		items, err = s.lidarr.Artists(ctx)
	default:
		return nil
	}

	if err != nil {
		s.logger.Error("Failed to list library", "kind", kind, "error", err)
		return nil
	}
	return items
}

// Delete removes one library item by its service-side id.
func (s *Service) Delete(ctx context.Context, kind media.Kind, id int64) bool {
	if !s.Enabled(kind) {
		return false
	}

	var err error

	switch kind {
	case media.KindMovie:
		err = s.radarr.DeleteMovie(ctx, id)
	case media.KindSeries:
		err = s.sonarr.DeleteSeries(ctx, id)
	case media.KindArtist:
		err = s.lidarr.DeleteArtist(ctx, id)
	default:
		return false
	}

	if err != nil {
		s.logger.Error("Failed to delete item", "kind", kind, "id", id, "error", err)
		return false
	}
	return true
}
