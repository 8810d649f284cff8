package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/spotrack/internal/formatter"
	"github.com/desertthunder/spotrack/internal/models"
	"github.com/desertthunder/spotrack/internal/shared"
)

const embedColorBlue = 0x0000ff

// webhookEmbed mirrors the Discord webhook embed object.
type webhookEmbed struct {
	Title  string         `json:"title,omitempty"`
	Color  int            `json:"color,omitempty"`
	Fields []webhookField `json:"fields,omitempty"`
}

type webhookField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type webhookPayload struct {
	Content string         `json:"content,omitempty"`
	Embeds  []webhookEmbed `json:"embeds,omitempty"`
}

// DiscordService implements the Notifier interface over Discord webhooks.
// The channel argument of each method is the webhook URL to post to.
type DiscordService struct {
	httpClient *http.Client
}

// NewDiscordService creates a new Discord webhook notifier.
// A nil client defaults to [http.DefaultClient].
func NewDiscordService(client *http.Client) *DiscordService {
	if client == nil {
		client = http.DefaultClient
	}
	return &DiscordService{httpClient: client}
}

// SendNowPlaying announces the track and playlist currently playing.
func (d *DiscordService) SendNowPlaying(ctx context.Context, channel string, track models.Track, playlist models.Playlist) error {
	payload := webhookPayload{
		Embeds: []webhookEmbed{{
			Title: "Écoute en cours :",
			Color: embedColorBlue,
			Fields: []webhookField{
				{Name: "Titre", Value: track.Name, Inline: true},
				{Name: "Artistes", Value: formatter.JoinArtists(track.ArtistNames()), Inline: true},
				{Name: "Playlist", Value: playlist.Name, Inline: true},
			},
		}},
	}

	return d.post(ctx, channel, payload)
}

// SendNothingPlaying announces that no listening is in progress.
func (d *DiscordService) SendNothingPlaying(ctx context.Context, channel string) error {
	return d.post(ctx, channel, webhookPayload{Content: "Aucune écoute en cours."})
}

// SendReport delivers an aggregated listening report under a title.
func (d *DiscordService) SendReport(ctx context.Context, channel string, report models.Report, title string) error {
	payload := webhookPayload{
		Embeds: []webhookEmbed{{
			Title: title,
			Color: embedColorBlue,
			Fields: []webhookField{
				{Name: "Temps d'écoute", Value: formatter.FormatMinutes(report.Minutes), Inline: true},
				{Name: "Nombre de titres", Value: fmt.Sprintf("%d", report.TrackCount)},
				{Name: "Nombre d'artistes", Value: fmt.Sprintf("%d", report.ArtistCount)},
				{Name: "Nombre de playlists", Value: fmt.Sprintf("%d", report.PlaylistCount)},
				{Name: "Top titres", Value: entryNames(report.TopTracks)},
				{Name: "Top artistes", Value: entryNames(report.TopArtists)},
				{Name: "Top playlists", Value: entryNames(report.TopPlaylists)},
			},
		}},
	}

	return d.post(ctx, channel, payload)
}

// entryNames joins report entry names for an embed field. Discord rejects
// empty field values, hence the dash placeholder.
func entryNames(entries []models.ReportEntry) string {
	if len(entries) == 0 {
		return "-"
	}

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return strings.Join(names, "\n")
}

func (d *DiscordService) post(ctx context.Context, webhookURL string, payload webhookPayload) error {
	if webhookURL == "" {
		return fmt.Errorf("%w: webhook URL is empty", shared.ErrInvalidConfig)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: discord webhook status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	return nil
}
