// package repositories provides the persistence layer for tracked entities.
//
// The track, artist and playlist repositories resolve a value to its stable
// persisted identity, creating the row on first sight. Resolution is
// idempotent: the same natural key (name, or uri for playlists) always yields
// the same identity. The listening repository appends one row per confirmed
// poll tick and answers the half-open range queries behind reports.
package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/spotrack/internal/shared"
)

// insertEntity writes a new identity row into one of the entity tables,
// which all share the (id, name, uri, url, created_at) shape. OR IGNORE
// tolerates a row racing in between lookup and insert.
func insertEntity(db *sql.DB, table, name, uri, url string) error {
	query := fmt.Sprintf("INSERT OR IGNORE INTO %s (id, name, uri, url, created_at) VALUES (?, ?, ?, ?, ?)", table)

	if _, err := db.Exec(query, shared.GenerateID(), name, uri, url, time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to insert %s: %w", table, err)
	}

	return nil
}
