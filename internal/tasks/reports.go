package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotrack/internal/models"
	"github.com/desertthunder/spotrack/internal/repositories"
	"github.com/desertthunder/spotrack/internal/services"
)

// topN is the ranking depth of every report.
const topN = 5

// ReportChannels maps each window kind to its notification destination.
type ReportChannels struct {
	Daily   string
	Weekly  string
	Monthly string
	Yearly  string
}

// For returns the destination for a window kind.
func (c ReportChannels) For(kind WindowKind) string {
	switch kind {
	case Weekly:
		return c.Weekly
	case Monthly:
		return c.Monthly
	case Yearly:
		return c.Yearly
	default:
		return c.Daily
	}
}

// Reporter builds reports over calendar windows and sends them. A failed
// window is logged and skipped; remaining windows are still attempted.
type Reporter struct {
	events   *repositories.ListeningRepository
	notifier services.Notifier
	channels ReportChannels
	logger   *log.Logger
}

// NewReporter creates a new Reporter with the provided dependencies.
func NewReporter(events *repositories.ListeningRepository, notifier services.Notifier, channels ReportChannels, logger *log.Logger) *Reporter {
	return &Reporter{
		events:   events,
		notifier: notifier,
		channels: channels,
		logger:   logger,
	}
}

// BuildReport aggregates the listening figures over [start, end). The report
// is only assembled after every sub-query succeeds; a failing sub-query
// fails the whole report.
func (r *Reporter) BuildReport(start, end time.Time) (models.Report, error) {
	minutes, err := r.events.Minutes(start, end)
	if err != nil {
		return models.Report{}, fmt.Errorf("querying minutes: %w", err)
	}

	trackCount, err := r.events.TrackCount(start, end)
	if err != nil {
		return models.Report{}, fmt.Errorf("querying track count: %w", err)
	}

	artistCount, err := r.events.ArtistCount(start, end)
	if err != nil {
		return models.Report{}, fmt.Errorf("querying artist count: %w", err)
	}

	playlistCount, err := r.events.PlaylistCount(start, end)
	if err != nil {
		return models.Report{}, fmt.Errorf("querying playlist count: %w", err)
	}

	topTracks, err := r.events.TopTracks(start, end, topN)
	if err != nil {
		return models.Report{}, fmt.Errorf("querying top tracks: %w", err)
	}

	topArtists, err := r.events.TopArtists(start, end, topN)
	if err != nil {
		return models.Report{}, fmt.Errorf("querying top artists: %w", err)
	}

	topPlaylists, err := r.events.TopPlaylists(start, end, topN)
	if err != nil {
		return models.Report{}, fmt.Errorf("querying top playlists: %w", err)
	}

	return models.Report{
		Start:         start,
		End:           end,
		Minutes:       minutes,
		TrackCount:    trackCount,
		ArtistCount:   artistCount,
		PlaylistCount: playlistCount,
		TopTracks:     topTracks,
		TopArtists:    topArtists,
		TopPlaylists:  topPlaylists,
	}, nil
}

// SendDue builds and sends the windows due at now.
func (r *Reporter) SendDue(ctx context.Context, now time.Time) {
	r.send(ctx, DueWindows(now))
}

// SendAll builds and sends all four windows relative to now, regardless of
// due rules. Used by the on-demand report command.
func (r *Reporter) SendAll(ctx context.Context, now time.Time) {
	r.send(ctx, AllWindows(now))
}

func (r *Reporter) send(ctx context.Context, windows []Window) {
	for _, window := range windows {
		report, err := r.BuildReport(window.Start, window.End)
		if err != nil {
			r.logger.Error("skipping report window", "window", window.Kind.String(), "err", err)
			continue
		}

		if err := r.notifier.SendReport(ctx, r.channels.For(window.Kind), report, window.Title()); err != nil {
			r.logger.Error("failed to send report", "window", window.Kind.String(), "err", err)
			continue
		}

		r.logger.Info("report sent", "window", window.Kind.String(), "minutes", report.Minutes)
	}
}
