package services

import (
	"context"

	"github.com/desertthunder/spotrack/internal/models"
)

// Player is the narrow music-service surface the tracker depends on.
type Player interface {
	// RefreshAccessToken requests a fresh access token from the service and
	// returns it. The caller is responsible for persisting it.
	RefreshAccessToken(ctx context.Context) (string, error)

	// CurrentlyPlaying returns the current playback snapshot, or nil when
	// nothing is playing.
	CurrentlyPlaying(ctx context.Context) (*models.Playback, error)

	// TrackArtists returns the artists credited on a track, in order.
	TrackArtists(ctx context.Context, trackID string) ([]models.Artist, error)

	// CurrentUserPlaylists lists the authenticated user's playlists. Used to
	// resolve a playing context's display name by matching its uri.
	CurrentUserPlaylists(ctx context.Context) ([]models.Playlist, error)
}

// Notifier delivers user-facing messages to a destination channel. For the
// Discord implementation a channel is a webhook URL.
type Notifier interface {
	// SendNowPlaying announces the track and playlist currently playing.
	SendNowPlaying(ctx context.Context, channel string, track models.Track, playlist models.Playlist) error

	// SendNothingPlaying announces that no listening is in progress.
	SendNothingPlaying(ctx context.Context, channel string) error

	// SendReport delivers an aggregated listening report under a title.
	SendReport(ctx context.Context, channel string, report models.Report, title string) error
}
