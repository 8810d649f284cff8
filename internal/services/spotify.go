package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go"
	"github.com/desertthunder/spotrack/internal/models"
	"github.com/desertthunder/spotrack/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// Response types follow
// https://developer.spotify.com/documentation/web-api/reference/
type externalURLs struct {
	Spotify string `json:"spotify"`
}

// spotifyArtist represents a Spotify artist.
type spotifyArtist struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	URI          string       `json:"uri"`
	ExternalURLs externalURLs `json:"external_urls"`
}

// spotifyTrack represents a Spotify track.
type spotifyTrack struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	URI          string          `json:"uri"`
	ExternalURLs externalURLs    `json:"external_urls"`
	Artists      []spotifyArtist `json:"artists"`
}

// spotifyContext represents the playback context (playlist, album, ...).
type spotifyContext struct {
	Type         string       `json:"type"`
	URI          string       `json:"uri"`
	ExternalURLs externalURLs `json:"external_urls"`
}

// spotifyCurrentlyPlaying represents the /me/player/currently-playing payload.
type spotifyCurrentlyPlaying struct {
	IsPlaying bool            `json:"is_playing"`
	Item      *spotifyTrack   `json:"item"`
	Context   *spotifyContext `json:"context"`
}

type simplePlaylist struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	URI          string       `json:"uri"`
	ExternalURLs externalURLs `json:"external_urls"`
}

type paginatedPlaylists struct {
	Items []simplePlaylist `json:"items"`
	Next  *string          `json:"next"`
}

// apiError carries the HTTP status of a failed Spotify call so retries can
// distinguish transient server errors from everything else.
type apiError struct {
	status int
}

func (e *apiError) Error() string {
	return fmt.Sprintf("spotify API error: status %d", e.status)
}

func (e *apiError) Unwrap() error {
	return shared.ErrAPIRequest
}

// SpotifyService implements the Player interface against the Spotify Web API.
// Uses [oauth2] for token refresh and a [rate.Limiter] to stay inside the
// API's request budget.
type SpotifyService struct {
	config       *oauth2.Config
	token        *oauth2.Token
	refreshToken string
	httpClient   *http.Client
	limiter      *rate.Limiter

	// baseURL is overridden in tests.
	baseURL string
}

// NewSpotifyService creates a new Spotify service with the given credentials.
// The refresh token may be empty until `spotrack auth` has been run once.
func NewSpotifyService(cfg shared.SpotifyConfig) (*SpotifyService, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: client_id and client_secret are required", shared.ErrMissingCredentials)
	}

	redirectURI := cfg.RedirectURI
	if redirectURI == "" {
		redirectURI = "http://localhost:8080/callback"
	}

	config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"user-read-currently-playing",
			"user-read-playback-state",
			"playlist-read-private",
			"playlist-read-collaborative",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	svc := &SpotifyService{
		config:       config,
		refreshToken: cfg.RefreshToken,
		httpClient:   http.DefaultClient,
		limiter:      rate.NewLimiter(rate.Every(time.Second), 4),
		baseURL:      spotifyBaseURL,
	}

	if cfg.AccessToken != "" {
		svc.token = &oauth2.Token{AccessToken: cfg.AccessToken}
	}

	return svc, nil
}

// AuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) AuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for a token pair and installs it on
// the service. Returns the token so the caller can persist it.
func (s *SpotifyService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange auth code: %w", err)
	}

	s.token = token
	if token.RefreshToken != "" {
		s.refreshToken = token.RefreshToken
	}

	return token, nil
}

// RefreshAccessToken requests a fresh access token using the stored refresh
// token. Transient token-endpoint failures are retried.
func (s *SpotifyService) RefreshAccessToken(ctx context.Context) (string, error) {
	if s.refreshToken == "" {
		return "", shared.ErrNoRefreshToken
	}

	var token *oauth2.Token
	err := retry.Do(
		func() error {
			var err error
			source := s.config.TokenSource(ctx, &oauth2.Token{RefreshToken: s.refreshToken})
			token, err = source.Token()
			return err
		},
		retry.Attempts(3),
		retry.RetryIf(func(err error) bool {
			if rerr, ok := err.(*oauth2.RetrieveError); ok {
				return rerr.Response != nil && rerr.Response.StatusCode/100 == 5
			}
			return false
		}),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	s.token = token
	if token.RefreshToken != "" {
		s.refreshToken = token.RefreshToken
	}

	return token.AccessToken, nil
}

// doRequest performs an authenticated GET against the Spotify API and decodes
// the response into result when the status carries a body. Returns the status
// code so callers can distinguish 204 (no content) from 200.
func (s *SpotifyService) doRequest(ctx context.Context, endpoint string, result any) (int, error) {
	if s.token == nil {
		return 0, shared.ErrNotAuthenticated
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limiter: %w", err)
	}

	var status int
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+endpoint, nil)
			if err != nil {
				return fmt.Errorf("failed to create request: %w", err)
			}

			req.Header.Set("Authorization", "Bearer "+s.token.AccessToken)
			req.Header.Set("Content-Type", "application/json")

			resp, err := s.httpClient.Do(req)
			if err != nil {
				return fmt.Errorf("request failed: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				return &apiError{status: resp.StatusCode}
			}

			status = resp.StatusCode
			if result != nil && resp.StatusCode != http.StatusNoContent {
				if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
					return fmt.Errorf("failed to decode response: %w", err)
				}
			}

			return nil
		},
		retry.Attempts(3),
		retry.RetryIf(func(err error) bool {
			if aerr, ok := err.(*apiError); ok {
				return aerr.status/100 == 5
			}
			return false
		}),
	)
	if err != nil {
		return status, err
	}

	return status, nil
}

// CurrentlyPlaying returns the user's playback snapshot, or nil when nothing
// is playing (Spotify answers 204 in that case).
func (s *SpotifyService) CurrentlyPlaying(ctx context.Context) (*models.Playback, error) {
	var payload spotifyCurrentlyPlaying

	status, err := s.doRequest(ctx, "/me/player/currently-playing", &payload)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNoContent || payload.Item == nil {
		return nil, nil
	}

	playback := &models.Playback{
		IsPlaying: payload.IsPlaying,
		Item: &models.PlaybackItem{
			ID:   payload.Item.ID,
			Name: payload.Item.Name,
			URI:  payload.Item.URI,
			URL:  payload.Item.ExternalURLs.Spotify,
		},
	}

	if payload.Context != nil {
		playback.Context = &models.PlaybackContext{
			URI: payload.Context.URI,
			URL: payload.Context.ExternalURLs.Spotify,
		}
	}

	return playback, nil
}

// TrackArtists returns the artists credited on a track, in order.
func (s *SpotifyService) TrackArtists(ctx context.Context, trackID string) ([]models.Artist, error) {
	var track spotifyTrack

	if _, err := s.doRequest(ctx, "/tracks/"+trackID, &track); err != nil {
		return nil, err
	}

	artists := make([]models.Artist, 0, len(track.Artists))
	for _, a := range track.Artists {
		artists = append(artists, models.Artist{
			Name: a.Name,
			URI:  a.URI,
			URL:  a.ExternalURLs.Spotify,
		})
	}

	return artists, nil
}

// CurrentUserPlaylists retrieves all playlists for the authenticated user.
func (s *SpotifyService) CurrentUserPlaylists(ctx context.Context) ([]models.Playlist, error) {
	var playlists []models.Playlist
	limit := 50
	offset := 0

	for {
		endpoint := fmt.Sprintf("/me/playlists?limit=%d&offset=%d", limit, offset)

		var page paginatedPlaylists
		if _, err := s.doRequest(ctx, endpoint, &page); err != nil {
			return nil, err
		}

		for _, p := range page.Items {
			playlists = append(playlists, models.Playlist{
				Name: p.Name,
				URI:  p.URI,
				URL:  p.ExternalURLs.Spotify,
			})
		}

		if page.Next == nil {
			break
		}
		offset += limit
	}

	return playlists, nil
}
