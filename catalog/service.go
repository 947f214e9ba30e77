package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	cache "github.com/mxcd/go-ttlcache"
	"go.uber.org/zap"
)

// Service composes view models for the site pages from several gateway
// queries and caches them.
type Service struct {
	Options  *Options
	memoizer *Memoizer
}

// Options passed to NewService
//
// Cache: store shared by all views. Required
// Gateway: remote data backend. Required
// SingleFlight: coalesce concurrent misses on the same key into one load
// Logger: defaults to a no-op logger
type Options struct {
	Cache        Store
	Gateway      Gateway
	SingleFlight bool
	Logger       *zap.Logger
}

func NewService(opts *Options) *Service {
	options := *opts
	if options.Gateway == nil {
		panic("Gateway must be provided")
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}
	return &Service{
		Options:  &options,
		memoizer: NewMemoizer(options.Cache, options.SingleFlight, options.Logger),
	}
}

// TopArtists returns the most popular artists.
func (s *Service) TopArtists(ctx context.Context, limit int) ([]Artist, error) {
	return Memoize(ctx, s.memoizer, cache.Key("top-artists", limit), TTLAggregate, func(ctx context.Context) ([]Artist, error) {
		return s.Options.Gateway.TopArtists(ctx, limit)
	})
}

// LabelStats returns every label with its artist and track counts, busiest
// label first. When the counts cannot be fetched the labels are still listed
// with zero counts and the result is cached only briefly.
func (s *Service) LabelStats(ctx context.Context) (*LabelDirectory, error) {
	return MemoizeFunc(ctx, s.memoizer, cache.Key("label-stats"), s.loadLabelStats)
}

func (s *Service) loadLabelStats(ctx context.Context) (*LabelDirectory, time.Duration, error) {
	labels, err := s.Options.Gateway.Labels(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("fetch labels: %w", err)
	}

	dir := &LabelDirectory{Labels: make([]LabelStats, 0, len(labels))}

	artistCounts, err := s.Options.Gateway.LabelArtistCounts(ctx)
	if err != nil {
		s.Options.Logger.Warn("label artist counts unavailable, using fallback", zap.Error(err))
		dir.Degraded = true
	}
	trackCounts, err := s.Options.Gateway.LabelTrackCounts(ctx)
	if err != nil {
		s.Options.Logger.Warn("label track counts unavailable, using fallback", zap.Error(err))
		dir.Degraded = true
	}

	for _, label := range labels {
		dir.Labels = append(dir.Labels, LabelStats{
			Label:       label,
			ArtistCount: artistCounts[label.ID],
			TrackCount:  trackCounts[label.ID],
		})
	}
	sort.SliceStable(dir.Labels, func(i, j int) bool {
		a, b := dir.Labels[i], dir.Labels[j]
		if a.ArtistCount != b.ArtistCount {
			return a.ArtistCount > b.ArtistCount
		}
		return a.Label.Name < b.Label.Name
	})

	if dir.Degraded {
		return dir, TTLFallback, nil
	}
	return dir, TTLAggregate, nil
}

// ArtistProfile returns the artist with images, links and cities. A failing
// side query degrades to an empty list instead of failing the page.
func (s *Service) ArtistProfile(ctx context.Context, id string) (*ArtistProfile, error) {
	return MemoizeFunc(ctx, s.memoizer, cache.Key("artist-profile", id), func(ctx context.Context) (*ArtistProfile, time.Duration, error) {
		return s.loadArtistProfile(ctx, id)
	})
}

func (s *Service) loadArtistProfile(ctx context.Context, id string) (*ArtistProfile, time.Duration, error) {
	artist, err := s.Options.Gateway.Artist(ctx, id)
	if err != nil {
		return nil, 0, fmt.Errorf("fetch artist %s: %w", id, err)
	}
	if artist == nil {
		return nil, 0, fmt.Errorf("fetch artist %s: %w", id, ErrNotFound)
	}

	profile := &ArtistProfile{
		Artist: *artist,
		Images: []ArtistImage{},
		Links:  []ArtistLink{},
		Cities: []City{},
	}

	if images, err := s.Options.Gateway.ArtistImages(ctx, id); err != nil {
		s.degrade(profile, "images", id, err)
	} else if images != nil {
		profile.Images = images
	}
	if links, err := s.Options.Gateway.ArtistLinks(ctx, id); err != nil {
		s.degrade(profile, "links", id, err)
	} else if links != nil {
		profile.Links = links
	}
	if cities, err := s.Options.Gateway.ArtistCities(ctx, id); err != nil {
		s.degrade(profile, "cities", id, err)
	} else if cities != nil {
		profile.Cities = cities
	}

	if profile.Artist.ImageURL == "" && len(profile.Images) > 0 {
		profile.Artist.ImageURL = profile.Images[0].URL
	}

	if profile.Degraded {
		return profile, TTLFallback, nil
	}
	return profile, TTLAggregate, nil
}

func (s *Service) degrade(profile *ArtistProfile, part, id string, err error) {
	s.Options.Logger.Warn("artist profile part unavailable",
		zap.String("part", part),
		zap.String("artist", id),
		zap.Error(err),
	)
	profile.Degraded = true
}

// ArtistTracks returns the artist's tracks joined with all of their artists
// and their album.
func (s *Service) ArtistTracks(ctx context.Context, artistID string) ([]TrackView, error) {
	return Memoize(ctx, s.memoizer, cache.Key("artist-tracks", artistID), TTLAggregate, func(ctx context.Context) ([]TrackView, error) {
		return s.loadArtistTracks(ctx, artistID)
	})
}

func (s *Service) loadArtistTracks(ctx context.Context, artistID string) ([]TrackView, error) {
	tracks, err := s.Options.Gateway.TracksByArtist(ctx, artistID)
	if err != nil {
		return nil, fmt.Errorf("fetch tracks of %s: %w", artistID, err)
	}
	if len(tracks) == 0 {
		return []TrackView{}, nil
	}

	var artistIDs, albumIDs []string
	seenArtists := make(map[string]bool)
	seenAlbums := make(map[string]bool)
	for _, track := range tracks {
		for _, id := range track.ArtistIDs {
			if !seenArtists[id] {
				seenArtists[id] = true
				artistIDs = append(artistIDs, id)
			}
		}
		if track.AlbumID != "" && !seenAlbums[track.AlbumID] {
			seenAlbums[track.AlbumID] = true
			albumIDs = append(albumIDs, track.AlbumID)
		}
	}

	artists, err := s.Options.Gateway.ArtistsByIDs(ctx, artistIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch track artists: %w", err)
	}
	artistByID := make(map[string]Artist, len(artists))
	for _, artist := range artists {
		artistByID[artist.ID] = artist
	}

	albumByID := make(map[string]Album)
	if len(albumIDs) > 0 {
		albums, err := s.Options.Gateway.AlbumsByIDs(ctx, albumIDs)
		if err != nil {
			return nil, fmt.Errorf("fetch track albums: %w", err)
		}
		for _, album := range albums {
			albumByID[album.ID] = album
		}
	}

	views := make([]TrackView, 0, len(tracks))
	for _, track := range tracks {
		view := TrackView{Track: track, Artists: make([]Artist, 0, len(track.ArtistIDs))}
		for _, id := range track.ArtistIDs {
			if artist, ok := artistByID[id]; ok {
				view.Artists = append(view.Artists, artist)
			}
		}
		if album, ok := albumByID[track.AlbumID]; ok {
			view.Album = &album
		}
		views = append(views, view)
	}
	return views, nil
}

// UpcomingEvents returns the next events on the calendar.
func (s *Service) UpcomingEvents(ctx context.Context, limit int) ([]Event, error) {
	return Memoize(ctx, s.memoizer, cache.Key("upcoming-events", limit), TTLEvents, func(ctx context.Context) ([]Event, error) {
		return s.Options.Gateway.UpcomingEvents(ctx, limit)
	})
}

// Search finds artists by name. The query is trimmed and lower-cased before it
// is used, so "  Foo" and "foo" share a cache entry.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]Artist, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []Artist{}, nil
	}
	return Memoize(ctx, s.memoizer, cache.KeyWithParams("search", map[string]any{"q": query, "limit": limit}), TTLSearch, func(ctx context.Context) ([]Artist, error) {
		return s.Options.Gateway.SearchArtists(ctx, query, limit)
	})
}

// InvalidateArtist drops every cached view keyed by the artist id.
func (s *Service) InvalidateArtist(ctx context.Context, id string) error {
	keys := []string{cache.Key("artist-profile", id), cache.Key("artist-tracks", id)}
	switch store := s.Options.Cache.(type) {
	case interface {
		Remove(context.Context, string) error
	}:
		var errs []error
		for _, key := range keys {
			errs = append(errs, store.Remove(ctx, key))
		}
		return errors.Join(errs...)
	case interface{ Remove(string) }:
		for _, key := range keys {
			store.Remove(key)
		}
	default:
		return fmt.Errorf("remove artist %s: %w", id, ErrInvalidationUnsupported)
	}
	return nil
}

// Invalidate drops every cached view, for use after bulk data changes.
func (s *Service) Invalidate(ctx context.Context) error {
	switch store := s.Options.Cache.(type) {
	case interface{ Clear(context.Context) error }:
		return store.Clear(ctx)
	case interface{ Clear() }:
		store.Clear()
	default:
		return fmt.Errorf("clear views: %w", ErrInvalidationUnsupported)
	}
	return nil
}
