package models

import "testing"

func TestValidate(t *testing.T) {
	t.Run("artist requires a name", func(t *testing.T) {
		if err := (Artist{URI: "spotify:artist:1"}).Validate(); err == nil {
			t.Error("expected error for artist without a name")
		}
		if err := (Artist{Name: "Daft Punk"}).Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("track requires a name", func(t *testing.T) {
		if err := (Track{}).Validate(); err == nil {
			t.Error("expected error for track without a name")
		}
		if err := (Track{Name: "Get Lucky"}).Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("playlist requires a uri", func(t *testing.T) {
		if err := (Playlist{Name: "Focus"}).Validate(); err == nil {
			t.Error("expected error for playlist without a uri")
		}
		if err := (Playlist{Name: "Focus", URI: "spotify:playlist:1"}).Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestArtistNames(t *testing.T) {
	track := Track{
		Name: "Get Lucky",
		Artists: []Artist{
			{Name: "Daft Punk"},
			{Name: "Pharrell Williams"},
		},
	}

	names := track.ArtistNames()
	if len(names) != 2 || names[0] != "Daft Punk" || names[1] != "Pharrell Williams" {
		t.Errorf("unexpected artist names: %v", names)
	}
}

func TestFreePlaylist(t *testing.T) {
	p := FreePlaylist()

	if p.Name != FreePlaylistName || p.URI != FreePlaylistURI {
		t.Errorf("unexpected sentinel playlist: %+v", p)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("sentinel playlist should validate: %v", err)
	}
}
