package catalog

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a Gateway when a single requested record does not
// exist.
var ErrNotFound = errors.New("catalog: not found")

// ErrInvalidationUnsupported is returned when the configured Store has no way
// to remove or clear entries.
var ErrInvalidationUnsupported = errors.New("catalog: store does not support invalidation")

// Gateway is the remote data backend holding artists, tracks, albums, events
// and labels. Implementations talk to the hosted database; this package only
// composes their results.
type Gateway interface {
	TopArtists(ctx context.Context, limit int) ([]Artist, error)
	Artist(ctx context.Context, id string) (*Artist, error)
	ArtistsByIDs(ctx context.Context, ids []string) ([]Artist, error)
	ArtistImages(ctx context.Context, artistID string) ([]ArtistImage, error)
	ArtistLinks(ctx context.Context, artistID string) ([]ArtistLink, error)
	ArtistCities(ctx context.Context, artistID string) ([]City, error)
	SearchArtists(ctx context.Context, query string, limit int) ([]Artist, error)

	TracksByArtist(ctx context.Context, artistID string) ([]Track, error)
	AlbumsByIDs(ctx context.Context, ids []string) ([]Album, error)

	Labels(ctx context.Context) ([]Label, error)
	// LabelArtistCounts and LabelTrackCounts map label id to a count.
	LabelArtistCounts(ctx context.Context) (map[string]int, error)
	LabelTrackCounts(ctx context.Context) (map[string]int, error)

	UpcomingEvents(ctx context.Context, limit int) ([]Event, error)
}
