// Package media defines the media data model shared between the service
// clients and the Telegram handlers. It has no dependencies on either side.
package media

// Kind tags an Item with its media type.
type Kind string

// Supported media kinds.
const (
	KindMovie  Kind = "movie"
	KindSeries Kind = "series"
	KindArtist Kind = "artist"
)

// Label returns a human-readable name for the kind.
func (k Kind) Label() string {
	switch k {
	case KindMovie:
		return "Movie"
	case KindSeries:
		return "Series"
	case KindArtist:
		return "Artist"
	default:
		return string(k)
	}
}

// Item is one piece of media. The Kind tag selects which of the type-specific
// fields are meaningful: TMDBID for movies, TVDBID/SeasonCount for series,
// ForeignArtistID/ArtistType for artists.
type Item struct {
	Kind      Kind
	ID        int64
	Title     string
	Year      int
	Overview  string
	PosterURL string

	TMDBID int64

	TVDBID      int64
	SeasonCount int

	ForeignArtistID string
	ArtistType      string
}

// QualityProfile is a download quality profile configured in a service.
type QualityProfile struct {
	ID             int64
	Name           string
	UpgradeAllowed bool
}

// RootFolder is a library storage location.
type RootFolder struct {
	Path      string
	FreeSpace int64
}

// Tag is a service-side label attached to media items.
type Tag struct {
	ID    int64
	Label string
}

// SearchResult carries the outcome of one media search.
type SearchResult struct {
	Kind  Kind
	Items []Item
	Total int
}
