package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Spotify  SpotifyConfig  `toml:"spotify"`
	Discord  DiscordConfig  `toml:"discord"`
	Database DatabaseConfig `toml:"database"`
	Tracker  TrackerConfig  `toml:"tracker"`
}

// SpotifyConfig contains Spotify API credentials and the persisted tokens.
// AccessToken is rewritten on every refresh; RefreshToken is long lived.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
	AccessToken  string `toml:"access_token"`
	RefreshToken string `toml:"refresh_token"`
}

// DiscordConfig contains the webhook destinations for notifications, one per
// report window plus the live tracking channel.
type DiscordConfig struct {
	TrackingWebhook string `toml:"tracking_webhook"`
	DailyWebhook    string `toml:"daily_webhook"`
	WeeklyWebhook   string `toml:"weekly_webhook"`
	MonthlyWebhook  string `toml:"monthly_webhook"`
	YearlyWebhook   string `toml:"yearly_webhook"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// TrackerConfig contains scheduling settings. ReportHour is the local
// wall-clock hour at which the daily report job fires.
type TrackerConfig struct {
	ReportHour int `toml:"report_hour"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ConfigStore persists a Config back to its file. The tracker writes the
// refreshed Spotify access token through it on every poll tick.
type ConfigStore struct {
	Config *Config
	Path   string
}

// AccessToken returns the persisted Spotify access token.
func (s *ConfigStore) AccessToken() string {
	return s.Config.Spotify.AccessToken
}

// SetAccessToken replaces the in-memory Spotify access token.
func (s *ConfigStore) SetAccessToken(token string) {
	s.Config.Spotify.AccessToken = token
}

// Save writes the current configuration back to disk as TOML.
func (s *ConfigStore) Save() error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(s.Config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(s.Path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
