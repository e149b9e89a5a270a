package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/listbridge/internal/shared"
	"github.com/kkdai/youtube/v2"
)

type fakePlaylistFetcher struct {
	playlists map[string]*youtube.Playlist
}

func (f *fakePlaylistFetcher) GetPlaylistContext(_ context.Context, url string) (*youtube.Playlist, error) {
	if p, ok := f.playlists[url]; ok {
		return p, nil
	}
	return nil, errors.New("playlist unavailable")
}

func TestPublicYouTubeReader(t *testing.T) {
	fetcher := &fakePlaylistFetcher{playlists: map[string]*youtube.Playlist{
		"PL1": {
			ID:    "PL1",
			Title: "Road",
			Videos: []*youtube.PlaylistEntry{
				{ID: "v1", Title: "Nova - City Lights", Author: "NovaVEVO", Duration: 215 * time.Second},
				{ID: "v2", Title: "Midnight Drive", Author: "Kai - Topic"},
			},
		},
	}}
	r := &PublicYouTubeReader{client: fetcher, playlists: []string{"PL1"}}

	t.Run("ListPlaylists", func(t *testing.T) {
		playlists, err := r.ListPlaylists(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(playlists) != 1 || playlists[0].Name != "Road" || playlists[0].TrackCount != 2 {
			t.Errorf("unexpected playlists %+v", playlists)
		}
	})

	t.Run("ReadTracks", func(t *testing.T) {
		tracks, err := r.ReadTracks(context.Background(), "PL1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(tracks) != 2 {
			t.Fatalf("expected 2 tracks, got %d", len(tracks))
		}
		if tracks[0].Title != "City Lights" || tracks[0].PrimaryArtist() != "Nova" {
			t.Errorf("unexpected first track %+v", tracks[0])
		}
		if tracks[0].DurationMs == nil || *tracks[0].DurationMs != 215000 {
			t.Errorf("expected 215000ms, got %v", tracks[0].DurationMs)
		}
		if tracks[1].Title != "Midnight Drive" || tracks[1].PrimaryArtist() != "Kai" {
			t.Errorf("unexpected second track %+v", tracks[1])
		}
	})

	t.Run("unknown playlist", func(t *testing.T) {
		_, err := r.ReadTracks(context.Background(), "missing")
		if !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})

	t.Run("write operations are not supported", func(t *testing.T) {
		if r.Capabilities().Writable() {
			t.Error("expected read-only capabilities")
		}
		if _, err := r.CreatePlaylist(context.Background(), CreatePlaylistOptions{}); !errors.Is(err, shared.ErrNotSupported) {
			t.Errorf("expected ErrNotSupported, got %v", err)
		}
		if err := r.AddItems(context.Background(), "x", nil); !errors.Is(err, shared.ErrNotSupported) {
			t.Errorf("expected ErrNotSupported, got %v", err)
		}
		if _, err := r.Search(context.Background(), "x"); !errors.Is(err, shared.ErrNotSupported) {
			t.Errorf("expected ErrNotSupported, got %v", err)
		}
	})
}

func TestSplitVideoTitle(t *testing.T) {
	tc := []struct {
		name, title, channel string
		artist, want         string
	}{
		{"artist dash title", "Nova - City Lights", "NovaVEVO", "Nova", "City Lights"},
		{"topic channel", "City Lights", "Nova - Topic", "Nova", "City Lights"},
		{"empty side", "- City Lights", "Nova", "Nova", "- City Lights"},
	}
	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			artists, title := SplitVideoTitle(tt.title, tt.channel)
			if len(artists) != 1 || artists[0] != tt.artist || title != tt.want {
				t.Errorf("expected %s / %s, got %v / %s", tt.artist, tt.want, artists, title)
			}
		})
	}
}
