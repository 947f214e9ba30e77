package catalog

import "time"

type Artist struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	LabelID    string `json:"label_id,omitempty"`
	ImageURL   string `json:"image_url,omitempty"`
	Popularity int    `json:"popularity"`
}

type ArtistImage struct {
	ArtistID string `json:"artist_id"`
	URL      string `json:"url"`
	Kind     string `json:"kind"`
}

type ArtistLink struct {
	ArtistID string `json:"artist_id"`
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

type City struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Album struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	CoverURL   string    `json:"cover_url,omitempty"`
	ReleasedAt time.Time `json:"released_at"`
}

type Track struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	ArtistIDs  []string  `json:"artist_ids"`
	AlbumID    string    `json:"album_id,omitempty"`
	ReleasedAt time.Time `json:"released_at"`
}

type Label struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Event struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Venue     string    `json:"venue"`
	City      string    `json:"city"`
	StartsAt  time.Time `json:"starts_at"`
	TicketURL string    `json:"ticket_url,omitempty"`
}

// LabelStats is a label together with how many artists and tracks it has.
type LabelStats struct {
	Label       Label `json:"label"`
	ArtistCount int   `json:"artist_count"`
	TrackCount  int   `json:"track_count"`
}

// LabelDirectory is the label statistics page. Degraded is set when the
// counts could not be fetched and are reported as zero.
type LabelDirectory struct {
	Labels   []LabelStats `json:"labels"`
	Degraded bool         `json:"degraded"`
}

// ArtistProfile bundles an artist with everything the profile page shows.
// Degraded is set when one of the side queries failed and was replaced by an
// empty list.
type ArtistProfile struct {
	Artist   Artist        `json:"artist"`
	Images   []ArtistImage `json:"images"`
	Links    []ArtistLink  `json:"links"`
	Cities   []City        `json:"cities"`
	Degraded bool          `json:"degraded"`
}

// TrackView is a track joined with its artists and album. Album is nil when
// the track has no album or the album is unknown.
type TrackView struct {
	Track   Track    `json:"track"`
	Artists []Artist `json:"artists"`
	Album   *Album   `json:"album,omitempty"`
}
