package models

import (
	"fmt"
	"time"
)

// Sentinel playlist used when playback has no context (album play, radio, ...).
const (
	FreePlaylistName = "Free"
	FreePlaylistURI  = "free"
)

// Artist is a Spotify artist. ID is empty until the artist has been resolved
// against the database; Name is the natural key.
type Artist struct {
	ID   string
	Name string
	URI  string
	URL  string
}

// Validate checks if the artist's data is valid and returns an error if not
func (a Artist) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("artist name is required")
	}
	return nil
}

// Track is a Spotify track with its (ordered) artist list. ID is empty until
// the track has been resolved; Name is the natural key.
type Track struct {
	ID      string
	Name    string
	URI     string
	URL     string
	Artists []Artist
}

// Validate checks if the track's data is valid and returns an error if not
func (t Track) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("track name is required")
	}
	return nil
}

// ArtistNames returns the track's artist names in order.
func (t Track) ArtistNames() []string {
	names := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		names[i] = a.Name
	}
	return names
}

// Playlist is a Spotify playlist or listening context. URI is the natural key;
// Name is the only mutable field, refreshed to the latest observed value on
// each resolution because playlists can be renamed.
type Playlist struct {
	ID   string
	Name string
	URI  string
	URL  string
}

// Validate checks if the playlist's data is valid and returns an error if not
func (p Playlist) Validate() error {
	if p.URI == "" {
		return fmt.Errorf("playlist uri is required")
	}
	return nil
}

// FreePlaylist returns the sentinel playlist for context-free playback.
func FreePlaylist() Playlist {
	return Playlist{Name: FreePlaylistName, URI: FreePlaylistURI}
}

// Listening is one recorded listening occurrence: a poll tick during which
// the track was confirmed playing. Append-only.
type Listening struct {
	TrackID    string
	PlaylistID string
	Date       time.Time
}

// Playback is the currently-playing snapshot returned by the music service.
// A nil Playback, a nil Item or IsPlaying=false all mean "nothing playing".
type Playback struct {
	IsPlaying bool
	Item      *PlaybackItem
	Context   *PlaybackContext
}

// PlaybackItem is the track metadata inside a Playback snapshot.
type PlaybackItem struct {
	ID   string
	Name string
	URI  string
	URL  string
}

// PlaybackContext identifies what the item is playing from (usually a
// playlist). Absent for free playback.
type PlaybackContext struct {
	URI string
	URL string
}

// ReportEntry pairs an entity with the listening minutes attributed to it
// over the report's range.
type ReportEntry struct {
	Name    string
	URI     string
	URL     string
	Minutes int
}

// Report is a derived aggregate over a half-open date range [Start, End).
// It is never persisted; it is assembled after all sub-queries succeed.
type Report struct {
	Start time.Time
	End   time.Time

	Minutes       int
	TrackCount    int
	ArtistCount   int
	PlaylistCount int

	TopTracks    []ReportEntry
	TopArtists   []ReportEntry
	TopPlaylists []ReportEntry
}
