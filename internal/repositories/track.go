package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/spotrack/internal/models"
	"github.com/desertthunder/spotrack/internal/shared"
)

// TrackRepository resolves tracks to their persisted identity, keyed by name,
// and maintains the track↔artist author rows.
type TrackRepository struct {
	db *sql.DB
}

// NewTrackRepository creates a new TrackRepository with the given database connection
func NewTrackRepository(db *sql.DB) *TrackRepository {
	return &TrackRepository{db: db}
}

// Resolve returns the track with its persisted identity, creating the row if
// the name has never been seen, and persists the author rows linking it to
// its artists. Every artist on the track must already carry an identity.
func (r *TrackRepository) Resolve(track models.Track) (models.Track, error) {
	if err := track.Validate(); err != nil {
		return models.Track{}, fmt.Errorf("validation failed: %w", err)
	}

	for _, artist := range track.Artists {
		if artist.ID == "" {
			return models.Track{}, fmt.Errorf("%w: artist %q must be resolved before the track", shared.ErrArtistNotFound, artist.Name)
		}
	}

	var id string
	err := r.db.QueryRow("SELECT id FROM track WHERE name = ?", track.Name).Scan(&id)
	if err == sql.ErrNoRows {
		if err := insertEntity(r.db, "track", track.Name, track.URI, track.URL); err != nil {
			return models.Track{}, err
		}
		err = r.db.QueryRow("SELECT id FROM track WHERE name = ?", track.Name).Scan(&id)
	}
	if err != nil {
		return models.Track{}, fmt.Errorf("failed to look up track: %w", err)
	}

	track.ID = id

	if err := r.saveAuthors(track); err != nil {
		return models.Track{}, err
	}

	return track, nil
}

// saveAuthors inserts the missing author rows for the track's artists.
func (r *TrackRepository) saveAuthors(track models.Track) error {
	for _, artist := range track.Artists {
		_, err := r.db.Exec("INSERT OR IGNORE INTO author (id_track, id_artist) VALUES (?, ?)", track.ID, artist.ID)
		if err != nil {
			return fmt.Errorf("failed to insert author row: %w", err)
		}
	}

	return nil
}
