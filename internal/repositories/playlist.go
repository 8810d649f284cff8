package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/spotrack/internal/models"
)

// PlaylistRepository resolves playlists to their persisted identity, keyed by
// uri. Playlist names can change; the stored name follows the latest observed
// value, the uri never does.
type PlaylistRepository struct {
	db *sql.DB
}

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// Resolve returns the playlist with its persisted identity, creating the row
// if the uri has never been seen. A non-empty observed name that differs from
// the stored one refreshes the stored name.
func (r *PlaylistRepository) Resolve(playlist models.Playlist) (models.Playlist, error) {
	if err := playlist.Validate(); err != nil {
		return models.Playlist{}, fmt.Errorf("validation failed: %w", err)
	}

	var (
		id         string
		storedName string
	)
	err := r.db.QueryRow("SELECT id, name FROM playlist WHERE uri = ?", playlist.URI).Scan(&id, &storedName)
	if err == sql.ErrNoRows {
		if err := insertEntity(r.db, "playlist", playlist.Name, playlist.URI, playlist.URL); err != nil {
			return models.Playlist{}, err
		}
		err = r.db.QueryRow("SELECT id, name FROM playlist WHERE uri = ?", playlist.URI).Scan(&id, &storedName)
	}
	if err != nil {
		return models.Playlist{}, fmt.Errorf("failed to look up playlist: %w", err)
	}

	playlist.ID = id

	if playlist.Name != "" && playlist.Name != storedName {
		if _, err := r.db.Exec("UPDATE playlist SET name = ? WHERE id = ?", playlist.Name, id); err != nil {
			return models.Playlist{}, fmt.Errorf("failed to refresh playlist name: %w", err)
		}
	} else {
		playlist.Name = storedName
	}

	return playlist, nil
}
