package services

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/listbridge/internal/models"
)

// stubProvider is a minimal in-memory [Provider].
type stubProvider struct {
	playlists []models.Playlist
	tracks    map[string][]models.Track
	listErr   error
	readErr   error
}

func (s *stubProvider) Name() string               { return "stub" }
func (s *stubProvider) Capabilities() Capabilities { return Capabilities{DisplayName: "Stub"} }
func (s *stubProvider) ListPlaylists(context.Context) ([]models.Playlist, error) {
	return s.playlists, s.listErr
}
func (s *stubProvider) ReadTracks(_ context.Context, id string) ([]models.Track, error) {
	return s.tracks[id], s.readErr
}
func (s *stubProvider) CreatePlaylist(context.Context, CreatePlaylistOptions) (string, error) {
	return "", nil
}
func (s *stubProvider) AddItems(context.Context, string, []string) error { return nil }
func (s *stubProvider) Search(context.Context, string) ([]models.Track, error) {
	return nil, nil
}

func TestCapabilities(t *testing.T) {
	tc := []struct {
		name string
		caps Capabilities
		want bool
	}{
		{"all supported", Capabilities{PlaylistCreate: true, TrackAdd: true, Search: true}, true},
		{"read only", Capabilities{}, false},
		{"no search", Capabilities{PlaylistCreate: true, TrackAdd: true}, false},
	}
	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.caps.Writable(); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestFetchCollection(t *testing.T) {
	p := &stubProvider{
		playlists: []models.Playlist{{ID: "p1", Name: "Road"}, {ID: "p2", Name: "Gym"}},
		tracks: map[string][]models.Track{
			"p1": {{ID: "a", Title: "A"}, {ID: "b", Title: "B"}},
			"p2": {{ID: "c", Title: "C"}},
		},
	}

	t.Run("fetches every playlist", func(t *testing.T) {
		c, err := FetchCollection(context.Background(), p, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if c.Source != "stub" {
			t.Errorf("expected source stub, got %s", c.Source)
		}
		if len(c.Playlists) != 2 || c.TotalTracks() != 3 {
			t.Errorf("expected 2 playlists with 3 tracks, got %d with %d", len(c.Playlists), c.TotalTracks())
		}
		if c.Playlists[0].TrackCount != 2 {
			t.Errorf("expected track count 2, got %d", c.Playlists[0].TrackCount)
		}
	})

	t.Run("selects by id or name in order", func(t *testing.T) {
		c, err := FetchCollection(context.Background(), p, []string{"Gym", "p1"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(c.Playlists) != 2 || c.Playlists[0].ID != "p2" || c.Playlists[1].ID != "p1" {
			t.Errorf("unexpected selection: %+v", c.Playlists)
		}
	})

	t.Run("propagates list errors", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := FetchCollection(context.Background(), &stubProvider{listErr: boom}, nil)
		if !errors.Is(err, boom) {
			t.Errorf("expected wrapped boom, got %v", err)
		}
	})

	t.Run("propagates read errors", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := FetchCollection(context.Background(), &stubProvider{playlists: p.playlists, readErr: boom}, nil)
		if !errors.Is(err, boom) {
			t.Errorf("expected wrapped boom, got %v", err)
		}
	})
}
