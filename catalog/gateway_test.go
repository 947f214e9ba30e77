package catalog

import (
	"context"
	"errors"
	"sync"
	"time"
)

var errBackend = errors.New("backend unavailable")

// fakeGateway serves fixed data and counts calls per method. Methods listed
// in fail return errBackend.
type fakeGateway struct {
	mu    sync.Mutex
	calls map[string]int
	fail  map[string]bool
	delay time.Duration

	artists []Artist
	images  map[string][]ArtistImage
	links   map[string][]ArtistLink
	cities  map[string][]City
	tracks  []Track
	albums  []Album
	labels  []Label
	events  []Event

	labelArtists map[string]int
	labelTracks  map[string]int
}

func newFakeGateway() *fakeGateway {
	released := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)
	return &fakeGateway{
		calls: make(map[string]int),
		fail:  make(map[string]bool),
		artists: []Artist{
			{ID: "1", Name: "Light", Slug: "light", LabelID: "l1", Popularity: 90},
			{ID: "2", Name: "Snik", Slug: "snik", LabelID: "l1", Popularity: 80},
			{ID: "3", Name: "Mad Clip", Slug: "mad-clip", LabelID: "l2", Popularity: 95},
		},
		images: map[string][]ArtistImage{
			"1": {{ArtistID: "1", URL: "https://img/1.jpg", Kind: "portrait"}},
		},
		links: map[string][]ArtistLink{
			"1": {{ArtistID: "1", Platform: "spotify", URL: "https://spotify/1"}},
		},
		cities: map[string][]City{
			"1": {{ID: "ath", Name: "Athens"}},
		},
		tracks: []Track{
			{ID: "t1", Title: "Intro", ArtistIDs: []string{"1"}, AlbumID: "a1", ReleasedAt: released},
			{ID: "t2", Title: "Collab", ArtistIDs: []string{"1", "2"}, AlbumID: "a1", ReleasedAt: released},
			{ID: "t3", Title: "Single", ArtistIDs: []string{"1", "9"}, AlbumID: "missing", ReleasedAt: released},
			{ID: "t4", Title: "Loose", ArtistIDs: []string{"1"}, ReleasedAt: released},
		},
		albums: []Album{
			{ID: "a1", Title: "Debut", ReleasedAt: released},
		},
		labels: []Label{
			{ID: "l1", Name: "Minos", Slug: "minos"},
			{ID: "l2", Name: "Panik", Slug: "panik"},
			{ID: "l3", Name: "Empty", Slug: "empty"},
		},
		events: []Event{
			{ID: "e1", Title: "Release Party", Venue: "Gazi", City: "Athens", StartsAt: released.AddDate(1, 0, 0)},
		},
		labelArtists: map[string]int{"l1": 2, "l2": 1},
		labelTracks:  map[string]int{"l1": 4, "l2": 7},
	}
}

func (g *fakeGateway) call(ctx context.Context, method string) error {
	g.mu.Lock()
	g.calls[method]++
	failing := g.fail[method]
	delay := g.delay
	g.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if failing {
		return errBackend
	}
	return nil
}

func (g *fakeGateway) count(method string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[method]
}

func (g *fakeGateway) setFail(method string, fail bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fail[method] = fail
}

func (g *fakeGateway) TopArtists(ctx context.Context, limit int) ([]Artist, error) {
	if err := g.call(ctx, "TopArtists"); err != nil {
		return nil, err
	}
	if limit > len(g.artists) {
		limit = len(g.artists)
	}
	return g.artists[:limit], nil
}

func (g *fakeGateway) Artist(ctx context.Context, id string) (*Artist, error) {
	if err := g.call(ctx, "Artist"); err != nil {
		return nil, err
	}
	for _, artist := range g.artists {
		if artist.ID == id {
			a := artist
			return &a, nil
		}
	}
	return nil, ErrNotFound
}

func (g *fakeGateway) ArtistsByIDs(ctx context.Context, ids []string) ([]Artist, error) {
	if err := g.call(ctx, "ArtistsByIDs"); err != nil {
		return nil, err
	}
	var out []Artist
	for _, id := range ids {
		for _, artist := range g.artists {
			if artist.ID == id {
				out = append(out, artist)
			}
		}
	}
	return out, nil
}

func (g *fakeGateway) ArtistImages(ctx context.Context, artistID string) ([]ArtistImage, error) {
	if err := g.call(ctx, "ArtistImages"); err != nil {
		return nil, err
	}
	return g.images[artistID], nil
}

func (g *fakeGateway) ArtistLinks(ctx context.Context, artistID string) ([]ArtistLink, error) {
	if err := g.call(ctx, "ArtistLinks"); err != nil {
		return nil, err
	}
	return g.links[artistID], nil
}

func (g *fakeGateway) ArtistCities(ctx context.Context, artistID string) ([]City, error) {
	if err := g.call(ctx, "ArtistCities"); err != nil {
		return nil, err
	}
	return g.cities[artistID], nil
}

func (g *fakeGateway) SearchArtists(ctx context.Context, query string, limit int) ([]Artist, error) {
	if err := g.call(ctx, "SearchArtists"); err != nil {
		return nil, err
	}
	var out []Artist
	for _, artist := range g.artists {
		if artist.Slug == query || artist.ID == query {
			out = append(out, artist)
		}
	}
	return out, nil
}

func (g *fakeGateway) TracksByArtist(ctx context.Context, artistID string) ([]Track, error) {
	if err := g.call(ctx, "TracksByArtist"); err != nil {
		return nil, err
	}
	var out []Track
	for _, track := range g.tracks {
		for _, id := range track.ArtistIDs {
			if id == artistID {
				out = append(out, track)
				break
			}
		}
	}
	return out, nil
}

func (g *fakeGateway) AlbumsByIDs(ctx context.Context, ids []string) ([]Album, error) {
	if err := g.call(ctx, "AlbumsByIDs"); err != nil {
		return nil, err
	}
	var out []Album
	for _, id := range ids {
		for _, album := range g.albums {
			if album.ID == id {
				out = append(out, album)
			}
		}
	}
	return out, nil
}

func (g *fakeGateway) Labels(ctx context.Context) ([]Label, error) {
	if err := g.call(ctx, "Labels"); err != nil {
		return nil, err
	}
	return g.labels, nil
}

func (g *fakeGateway) LabelArtistCounts(ctx context.Context) (map[string]int, error) {
	if err := g.call(ctx, "LabelArtistCounts"); err != nil {
		return nil, err
	}
	return g.labelArtists, nil
}

func (g *fakeGateway) LabelTrackCounts(ctx context.Context) (map[string]int, error) {
	if err := g.call(ctx, "LabelTrackCounts"); err != nil {
		return nil, err
	}
	return g.labelTracks, nil
}

func (g *fakeGateway) UpcomingEvents(ctx context.Context, limit int) ([]Event, error) {
	if err := g.call(ctx, "UpcomingEvents"); err != nil {
		return nil, err
	}
	if limit > len(g.events) {
		limit = len(g.events)
	}
	return g.events[:limit], nil
}
