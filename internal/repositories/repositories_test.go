package repositories

import (
	"database/sql"
	"testing"
	"time"

	"github.com/desertthunder/spotrack/internal/models"
	"github.com/desertthunder/spotrack/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
		t.Fatalf("failed to count %s rows: %v", table, err)
	}
	return count
}

func TestArtistRepository(t *testing.T) {
	t.Run("Resolve creates on first sight", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewArtistRepository(db)

		artist, err := repo.Resolve(models.Artist{Name: "Daft Punk", URI: "spotify:artist:1", URL: "https://open.spotify.com/artist/1"})
		if err != nil {
			t.Fatalf("failed to resolve artist: %v", err)
		}

		if artist.ID == "" {
			t.Error("artist ID should be set after resolution")
		}
		if got := countRows(t, db, "artist"); got != 1 {
			t.Errorf("expected 1 artist row, got %d", got)
		}
	})

	t.Run("Resolve is idempotent", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewArtistRepository(db)

		first, err := repo.Resolve(models.Artist{Name: "Daft Punk", URI: "spotify:artist:1"})
		if err != nil {
			t.Fatalf("failed to resolve artist: %v", err)
		}

		second, err := repo.Resolve(models.Artist{Name: "Daft Punk", URI: "spotify:artist:1"})
		if err != nil {
			t.Fatalf("failed to re-resolve artist: %v", err)
		}

		if first.ID != second.ID {
			t.Errorf("expected identity %s, got %s", first.ID, second.ID)
		}
		if got := countRows(t, db, "artist"); got != 1 {
			t.Errorf("expected 1 artist row after two resolutions, got %d", got)
		}
	})

	t.Run("Resolve rejects empty name", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewArtistRepository(db)

		if _, err := repo.Resolve(models.Artist{URI: "spotify:artist:1"}); err == nil {
			t.Error("expected error for artist without a name")
		}
	})
}

func TestTrackRepository(t *testing.T) {
	t.Run("Resolve persists author rows", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		artists := NewArtistRepository(db)
		tracks := NewTrackRepository(db)

		a1, err := artists.Resolve(models.Artist{Name: "Daft Punk"})
		if err != nil {
			t.Fatalf("failed to resolve artist: %v", err)
		}
		a2, err := artists.Resolve(models.Artist{Name: "Pharrell Williams"})
		if err != nil {
			t.Fatalf("failed to resolve artist: %v", err)
		}

		track, err := tracks.Resolve(models.Track{Name: "Get Lucky", URI: "spotify:track:1", Artists: []models.Artist{a1, a2}})
		if err != nil {
			t.Fatalf("failed to resolve track: %v", err)
		}

		if track.ID == "" {
			t.Error("track ID should be set after resolution")
		}
		if got := countRows(t, db, "author"); got != 2 {
			t.Errorf("expected 2 author rows, got %d", got)
		}
	})

	t.Run("Resolve is idempotent", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		artists := NewArtistRepository(db)
		tracks := NewTrackRepository(db)

		artist, err := artists.Resolve(models.Artist{Name: "Daft Punk"})
		if err != nil {
			t.Fatalf("failed to resolve artist: %v", err)
		}

		first, err := tracks.Resolve(models.Track{Name: "Get Lucky", Artists: []models.Artist{artist}})
		if err != nil {
			t.Fatalf("failed to resolve track: %v", err)
		}
		second, err := tracks.Resolve(models.Track{Name: "Get Lucky", Artists: []models.Artist{artist}})
		if err != nil {
			t.Fatalf("failed to re-resolve track: %v", err)
		}

		if first.ID != second.ID {
			t.Errorf("expected identity %s, got %s", first.ID, second.ID)
		}
		if got := countRows(t, db, "track"); got != 1 {
			t.Errorf("expected 1 track row after two resolutions, got %d", got)
		}
		if got := countRows(t, db, "author"); got != 1 {
			t.Errorf("expected 1 author row after two resolutions, got %d", got)
		}
	})

	t.Run("Resolve rejects unresolved artists", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		tracks := NewTrackRepository(db)

		_, err := tracks.Resolve(models.Track{Name: "Get Lucky", Artists: []models.Artist{{Name: "Daft Punk"}}})
		if err == nil {
			t.Error("expected error for track with unresolved artist")
		}
	})
}

func TestPlaylistRepository(t *testing.T) {
	t.Run("Resolve keys by uri", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistRepository(db)

		first, err := repo.Resolve(models.Playlist{Name: "Focus", URI: "spotify:playlist:1"})
		if err != nil {
			t.Fatalf("failed to resolve playlist: %v", err)
		}

		// Same uri under a different name is the same playlist.
		second, err := repo.Resolve(models.Playlist{Name: "Deep Focus", URI: "spotify:playlist:1"})
		if err != nil {
			t.Fatalf("failed to re-resolve playlist: %v", err)
		}

		if first.ID != second.ID {
			t.Errorf("expected identity %s, got %s", first.ID, second.ID)
		}
		if got := countRows(t, db, "playlist"); got != 1 {
			t.Errorf("expected 1 playlist row, got %d", got)
		}
	})

	t.Run("Resolve refreshes a renamed playlist", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistRepository(db)

		if _, err := repo.Resolve(models.Playlist{Name: "Focus", URI: "spotify:playlist:1"}); err != nil {
			t.Fatalf("failed to resolve playlist: %v", err)
		}

		renamed, err := repo.Resolve(models.Playlist{Name: "Deep Focus", URI: "spotify:playlist:1"})
		if err != nil {
			t.Fatalf("failed to re-resolve playlist: %v", err)
		}
		if renamed.Name != "Deep Focus" {
			t.Errorf("expected refreshed name %q, got %q", "Deep Focus", renamed.Name)
		}

		var stored string
		if err := db.QueryRow("SELECT name FROM playlist WHERE uri = ?", "spotify:playlist:1").Scan(&stored); err != nil {
			t.Fatalf("failed to read stored name: %v", err)
		}
		if stored != "Deep Focus" {
			t.Errorf("expected stored name %q, got %q", "Deep Focus", stored)
		}
	})

	t.Run("Resolve keeps stored name when none observed", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistRepository(db)

		if _, err := repo.Resolve(models.Playlist{Name: "Focus", URI: "spotify:playlist:1"}); err != nil {
			t.Fatalf("failed to resolve playlist: %v", err)
		}

		resolved, err := repo.Resolve(models.Playlist{URI: "spotify:playlist:1"})
		if err != nil {
			t.Fatalf("failed to re-resolve playlist: %v", err)
		}
		if resolved.Name != "Focus" {
			t.Errorf("expected stored name %q, got %q", "Focus", resolved.Name)
		}
	})
}

// seedListening resolves a track/playlist pair and records events at the
// given timestamps.
func seedListening(t *testing.T, db *sql.DB, trackName, playlistURI string, dates ...time.Time) (models.Track, models.Playlist) {
	t.Helper()

	artists := NewArtistRepository(db)
	tracks := NewTrackRepository(db)
	playlists := NewPlaylistRepository(db)
	events := NewListeningRepository(db)

	artist, err := artists.Resolve(models.Artist{Name: trackName + " Artist"})
	if err != nil {
		t.Fatalf("failed to resolve artist: %v", err)
	}

	track, err := tracks.Resolve(models.Track{Name: trackName, Artists: []models.Artist{artist}})
	if err != nil {
		t.Fatalf("failed to resolve track: %v", err)
	}

	playlist, err := playlists.Resolve(models.Playlist{Name: playlistURI, URI: playlistURI})
	if err != nil {
		t.Fatalf("failed to resolve playlist: %v", err)
	}

	for _, date := range dates {
		if err := events.RecordAt(track.ID, playlist.ID, date); err != nil {
			t.Fatalf("failed to record listening: %v", err)
		}
	}

	return track, playlist
}

func TestListeningRepository(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	t.Run("Minutes derive from occurrences", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		seedListening(t, db, "Get Lucky", "spotify:playlist:1",
			start.Add(1*time.Hour),
			start.Add(2*time.Hour),
			start.Add(3*time.Hour),
			start.Add(4*time.Hour),
		)

		events := NewListeningRepository(db)

		occurrences, err := events.Occurrences(start, end)
		if err != nil {
			t.Fatalf("failed to count occurrences: %v", err)
		}
		if occurrences != 4 {
			t.Errorf("expected 4 occurrences, got %d", occurrences)
		}

		minutes, err := events.Minutes(start, end)
		if err != nil {
			t.Fatalf("failed to compute minutes: %v", err)
		}
		if minutes != occurrences/TicksPerMinute {
			t.Errorf("expected %d minutes, got %d", occurrences/TicksPerMinute, minutes)
		}
	})

	t.Run("Range is half-open", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		// One event exactly at start (included), one exactly at end
		// (excluded), one inside.
		seedListening(t, db, "Get Lucky", "spotify:playlist:1", start, start.Add(12*time.Hour), end)

		events := NewListeningRepository(db)

		occurrences, err := events.Occurrences(start, end)
		if err != nil {
			t.Fatalf("failed to count occurrences: %v", err)
		}
		if occurrences != 2 {
			t.Errorf("expected 2 occurrences in [start, end), got %d", occurrences)
		}
	})

	t.Run("Distinct counts", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		seedListening(t, db, "Get Lucky", "spotify:playlist:1", start.Add(time.Hour), start.Add(2*time.Hour))
		seedListening(t, db, "One More Time", "spotify:playlist:2", start.Add(3*time.Hour))

		events := NewListeningRepository(db)

		trackCount, err := events.TrackCount(start, end)
		if err != nil {
			t.Fatalf("failed to count tracks: %v", err)
		}
		if trackCount != 2 {
			t.Errorf("expected 2 distinct tracks, got %d", trackCount)
		}

		artistCount, err := events.ArtistCount(start, end)
		if err != nil {
			t.Fatalf("failed to count artists: %v", err)
		}
		if artistCount != 2 {
			t.Errorf("expected 2 distinct artists, got %d", artistCount)
		}

		playlistCount, err := events.PlaylistCount(start, end)
		if err != nil {
			t.Fatalf("failed to count playlists: %v", err)
		}
		if playlistCount != 2 {
			t.Errorf("expected 2 distinct playlists, got %d", playlistCount)
		}
	})

	t.Run("Top rankings order by occurrences", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		seedListening(t, db, "Get Lucky", "spotify:playlist:1",
			start.Add(1*time.Hour), start.Add(2*time.Hour), start.Add(3*time.Hour), start.Add(4*time.Hour))
		seedListening(t, db, "One More Time", "spotify:playlist:2", start.Add(5*time.Hour), start.Add(6*time.Hour))

		events := NewListeningRepository(db)

		topTracks, err := events.TopTracks(start, end, 5)
		if err != nil {
			t.Fatalf("failed to query top tracks: %v", err)
		}
		if len(topTracks) != 2 {
			t.Fatalf("expected 2 ranked tracks, got %d", len(topTracks))
		}
		if topTracks[0].Name != "Get Lucky" {
			t.Errorf("expected %q first, got %q", "Get Lucky", topTracks[0].Name)
		}
		if topTracks[0].Minutes != 4/TicksPerMinute {
			t.Errorf("expected %d minutes for top track, got %d", 4/TicksPerMinute, topTracks[0].Minutes)
		}

		topArtists, err := events.TopArtists(start, end, 5)
		if err != nil {
			t.Fatalf("failed to query top artists: %v", err)
		}
		if len(topArtists) != 2 || topArtists[0].Name != "Get Lucky Artist" {
			t.Errorf("unexpected top artists: %+v", topArtists)
		}

		topPlaylists, err := events.TopPlaylists(start, end, 5)
		if err != nil {
			t.Fatalf("failed to query top playlists: %v", err)
		}
		if len(topPlaylists) != 2 || topPlaylists[0].URI != "spotify:playlist:1" {
			t.Errorf("unexpected top playlists: %+v", topPlaylists)
		}
	})

	t.Run("Limit caps rankings", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		for i, name := range []string{"A", "B", "C", "D", "E", "F", "G"} {
			seedListening(t, db, name, "spotify:playlist:1", start.Add(time.Duration(i+1)*time.Hour))
		}

		events := NewListeningRepository(db)

		topTracks, err := events.TopTracks(start, end, 5)
		if err != nil {
			t.Fatalf("failed to query top tracks: %v", err)
		}
		if len(topTracks) != 5 {
			t.Errorf("expected ranking capped at 5, got %d", len(topTracks))
		}
	})
}
