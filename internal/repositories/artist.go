package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/spotrack/internal/models"
)

// ArtistRepository resolves artists to their persisted identity, keyed by
// name.
type ArtistRepository struct {
	db *sql.DB
}

// NewArtistRepository creates a new ArtistRepository with the given database connection
func NewArtistRepository(db *sql.DB) *ArtistRepository {
	return &ArtistRepository{db: db}
}

// Resolve returns the artist with its persisted identity, creating the row if
// the name has never been seen. Resolving the same name twice yields the same
// identity.
func (r *ArtistRepository) Resolve(artist models.Artist) (models.Artist, error) {
	if err := artist.Validate(); err != nil {
		return models.Artist{}, fmt.Errorf("validation failed: %w", err)
	}

	var id string
	err := r.db.QueryRow("SELECT id FROM artist WHERE name = ?", artist.Name).Scan(&id)
	if err == sql.ErrNoRows {
		if err := insertEntity(r.db, "artist", artist.Name, artist.URI, artist.URL); err != nil {
			return models.Artist{}, err
		}
		err = r.db.QueryRow("SELECT id FROM artist WHERE name = ?", artist.Name).Scan(&id)
	}
	if err != nil {
		return models.Artist{}, fmt.Errorf("failed to look up artist: %w", err)
	}

	artist.ID = id
	return artist, nil
}
