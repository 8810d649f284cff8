package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotrack/internal/models"
	"github.com/desertthunder/spotrack/internal/repositories"
	"github.com/desertthunder/spotrack/internal/services"
)

// Playlist name used when the playing context matches none of the user's
// playlists (followed playlist that was since unfollowed, album context, ...).
const unknownPlaylistName = "Unknown"

// TickOutcome is the result of one poll tick.
type TickOutcome int

const (
	// TickRecorded means a listening event was persisted and announced.
	TickRecorded TickOutcome = iota
	// TickNoPlayback means nothing was playing; no event was written.
	TickNoPlayback
	// TickFailed means the tick was aborted by an error; no event was
	// written and the nothing-playing message was sent instead.
	TickFailed
)

func (o TickOutcome) String() string {
	switch o {
	case TickRecorded:
		return "recorded"
	case TickNoPlayback:
		return "no_playback"
	case TickFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// CredentialStore persists the refreshed access token between ticks.
type CredentialStore interface {
	SetAccessToken(token string)
	Save() error
}

// Tracker runs the poll tick state machine. Each tick is self-contained: no
// state is carried between ticks except the externally persisted credentials.
type Tracker struct {
	player    services.Player
	notifier  services.Notifier
	creds     CredentialStore
	tracks    *repositories.TrackRepository
	artists   *repositories.ArtistRepository
	playlists *repositories.PlaylistRepository
	events    *repositories.ListeningRepository
	channel   string
	logger    *log.Logger
}

// TrackerOpts contains the dependencies for creating a Tracker.
type TrackerOpts struct {
	Player    services.Player
	Notifier  services.Notifier
	Creds     CredentialStore
	Tracks    *repositories.TrackRepository
	Artists   *repositories.ArtistRepository
	Playlists *repositories.PlaylistRepository
	Events    *repositories.ListeningRepository
	Channel   string
	Logger    *log.Logger
}

// NewTracker creates a new Tracker with the provided dependencies.
func NewTracker(opts TrackerOpts) *Tracker {
	return &Tracker{
		player:    opts.Player,
		notifier:  opts.Notifier,
		creds:     opts.Creds,
		tracks:    opts.Tracks,
		artists:   opts.Artists,
		playlists: opts.Playlists,
		events:    opts.Events,
		channel:   opts.Channel,
		logger:    opts.Logger,
	}
}

// Tick executes one poll: refresh → fetch → resolve → record → notify.
// Errors never propagate; they downgrade the tick to the nothing-playing
// path so the scheduler keeps running.
func (t *Tracker) Tick(ctx context.Context) TickOutcome {
	token, err := t.player.RefreshAccessToken(ctx)
	if err != nil {
		return t.fail(ctx, fmt.Errorf("refreshing token: %w", err))
	}

	t.creds.SetAccessToken(token)
	if err := t.creds.Save(); err != nil {
		return t.fail(ctx, fmt.Errorf("persisting token: %w", err))
	}

	playback, err := t.player.CurrentlyPlaying(ctx)
	if err != nil {
		return t.fail(ctx, fmt.Errorf("fetching playback: %w", err))
	}

	if playback == nil || playback.Item == nil || !playback.IsPlaying {
		t.notifyNothing(ctx)
		return TickNoPlayback
	}

	playlist, err := t.resolvePlaylist(ctx, playback.Context)
	if err != nil {
		return t.fail(ctx, fmt.Errorf("resolving playlist: %w", err))
	}

	track, err := t.resolveTrack(ctx, playback.Item)
	if err != nil {
		return t.fail(ctx, fmt.Errorf("resolving track: %w", err))
	}

	if err := t.events.Record(track.ID, playlist.ID); err != nil {
		return t.fail(ctx, fmt.Errorf("recording listening: %w", err))
	}

	t.logger.Info("listening recorded", "track", track.Name, "playlist", playlist.Name)

	if err := t.notifier.SendNowPlaying(ctx, t.channel, track, playlist); err != nil {
		t.logger.Warn("failed to send now-playing message", "err", err)
	}

	return TickRecorded
}

// resolveTrack builds the track value from the playing item, resolves its
// artists first so their identities can be attached, then resolves the track
// itself (which persists the author rows).
func (t *Tracker) resolveTrack(ctx context.Context, item *models.PlaybackItem) (models.Track, error) {
	artists, err := t.player.TrackArtists(ctx, item.ID)
	if err != nil {
		return models.Track{}, fmt.Errorf("fetching track artists: %w", err)
	}

	resolved := make([]models.Artist, 0, len(artists))
	for _, artist := range artists {
		a, err := t.artists.Resolve(artist)
		if err != nil {
			return models.Track{}, err
		}
		resolved = append(resolved, a)
	}

	return t.tracks.Resolve(models.Track{
		Name:    item.Name,
		URI:     item.URI,
		URL:     item.URL,
		Artists: resolved,
	})
}

// resolvePlaylist builds the playlist value from the playback context. A nil
// context means free playback and resolves to the sentinel playlist. A
// context whose uri matches none of the user's playlists keeps a placeholder
// name.
func (t *Tracker) resolvePlaylist(ctx context.Context, playbackCtx *models.PlaybackContext) (models.Playlist, error) {
	if playbackCtx == nil {
		return t.playlists.Resolve(models.FreePlaylist())
	}

	name := unknownPlaylistName
	userPlaylists, err := t.player.CurrentUserPlaylists(ctx)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("listing playlists: %w", err)
	}

	for _, p := range userPlaylists {
		if p.URI == playbackCtx.URI {
			name = p.Name
			break
		}
	}

	return t.playlists.Resolve(models.Playlist{
		Name: name,
		URI:  playbackCtx.URI,
		URL:  playbackCtx.URL,
	})
}

// fail logs the tick error and sends the nothing-playing message so the
// channel still gets exactly one notification for the tick.
func (t *Tracker) fail(ctx context.Context, err error) TickOutcome {
	t.logger.Error("tick failed", "err", err)
	t.notifyNothing(ctx)
	return TickFailed
}

func (t *Tracker) notifyNothing(ctx context.Context) {
	if err := t.notifier.SendNothingPlaying(ctx, t.channel); err != nil {
		t.logger.Warn("failed to send nothing-playing message", "err", err)
	}
}
