package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/spotrack/internal/models"
)

// TicksPerMinute converts listening occurrences into minutes. The tracker
// polls every 30 seconds, so two recorded ticks approximate one minute of
// listening. Changing the poll interval requires changing this divisor to
// match (tasks.PollInterval is derived from it).
const TicksPerMinute = 2

// ListeningRepository appends listening events and answers the aggregate
// queries behind reports. Events are append-only; all range queries use the
// half-open convention start <= date < end, on Unix-second timestamps.
type ListeningRepository struct {
	db *sql.DB
}

// NewListeningRepository creates a new ListeningRepository with the given database connection
func NewListeningRepository(db *sql.DB) *ListeningRepository {
	return &ListeningRepository{db: db}
}

// Record appends one listening event for the given identities, stamped now.
func (r *ListeningRepository) Record(trackID, playlistID string) error {
	return r.RecordAt(trackID, playlistID, time.Now())
}

// RecordAt appends one listening event with an explicit timestamp.
func (r *ListeningRepository) RecordAt(trackID, playlistID string, date time.Time) error {
	_, err := r.db.Exec("INSERT INTO listening (id_track, id_playlist, date) VALUES (?, ?, ?)", trackID, playlistID, date.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert listening: %w", err)
	}

	return nil
}

// Minutes returns the listening minutes over [start, end), derived from the
// occurrence count and the poll interval.
func (r *ListeningRepository) Minutes(start, end time.Time) (int, error) {
	count, err := r.Occurrences(start, end)
	if err != nil {
		return 0, err
	}

	return count / TicksPerMinute, nil
}

// Occurrences returns the raw number of listening events over [start, end).
func (r *ListeningRepository) Occurrences(start, end time.Time) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM listening WHERE date >= ? AND date < ?", start.Unix(), end.Unix()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count listenings: %w", err)
	}

	return count, nil
}

// TrackCount returns the number of distinct tracks listened to over [start, end).
func (r *ListeningRepository) TrackCount(start, end time.Time) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(DISTINCT id_track) FROM listening WHERE date >= ? AND date < ?", start.Unix(), end.Unix()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tracks: %w", err)
	}

	return count, nil
}

// ArtistCount returns the number of distinct artists listened to over
// [start, end), through the track→author association.
func (r *ListeningRepository) ArtistCount(start, end time.Time) (int, error) {
	query := `
		SELECT COUNT(DISTINCT a.id_artist)
		FROM listening l
		JOIN author a ON l.id_track = a.id_track
		WHERE l.date >= ? AND l.date < ?
	`

	var count int
	err := r.db.QueryRow(query, start.Unix(), end.Unix()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count artists: %w", err)
	}

	return count, nil
}

// PlaylistCount returns the number of distinct playlists listened to over [start, end).
func (r *ListeningRepository) PlaylistCount(start, end time.Time) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(DISTINCT id_playlist) FROM listening WHERE date >= ? AND date < ?", start.Unix(), end.Unix()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count playlists: %w", err)
	}

	return count, nil
}

// TopTracks returns the most played tracks over [start, end), ordered by
// occurrence count descending, limited to n. Tie order is unspecified.
func (r *ListeningRepository) TopTracks(start, end time.Time, n int) ([]models.ReportEntry, error) {
	query := `
		SELECT t.name, t.uri, t.url, COUNT(*)
		FROM listening l
		JOIN track t ON l.id_track = t.id
		WHERE l.date >= ? AND l.date < ?
		GROUP BY t.id, t.name, t.uri, t.url
		ORDER BY COUNT(*) DESC
		LIMIT ?
	`

	return r.queryRanking(query, start, end, n)
}

// TopArtists returns the most played artists over [start, end), through the
// author association, ordered by occurrence count descending.
func (r *ListeningRepository) TopArtists(start, end time.Time, n int) ([]models.ReportEntry, error) {
	query := `
		SELECT ar.name, ar.uri, ar.url, COUNT(*)
		FROM listening l
		JOIN author a ON l.id_track = a.id_track
		JOIN artist ar ON a.id_artist = ar.id
		WHERE l.date >= ? AND l.date < ?
		GROUP BY ar.id, ar.name, ar.uri, ar.url
		ORDER BY COUNT(*) DESC
		LIMIT ?
	`

	return r.queryRanking(query, start, end, n)
}

// TopPlaylists returns the most played playlists over [start, end), ordered
// by occurrence count descending.
func (r *ListeningRepository) TopPlaylists(start, end time.Time, n int) ([]models.ReportEntry, error) {
	query := `
		SELECT p.name, p.uri, p.url, COUNT(*)
		FROM listening l
		JOIN playlist p ON l.id_playlist = p.id
		WHERE l.date >= ? AND l.date < ?
		GROUP BY p.id, p.name, p.uri, p.url
		ORDER BY COUNT(*) DESC
		LIMIT ?
	`

	return r.queryRanking(query, start, end, n)
}

func (r *ListeningRepository) queryRanking(query string, start, end time.Time, n int) ([]models.ReportEntry, error) {
	rows, err := r.db.Query(query, start.Unix(), end.Unix(), n)
	if err != nil {
		return nil, fmt.Errorf("failed to query ranking: %w", err)
	}
	defer rows.Close()

	var entries []models.ReportEntry
	for rows.Next() {
		var (
			entry models.ReportEntry
			count int
		)
		if err := rows.Scan(&entry.Name, &entry.URI, &entry.URL, &count); err != nil {
			return nil, fmt.Errorf("failed to scan ranking row: %w", err)
		}

		entry.Minutes = count / TicksPerMinute
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}
