package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/listbridge/internal/models"
	"github.com/desertthunder/listbridge/internal/shared"
)

const spotifyTrackJSON = `{
	"type": "track",
	"id": "t1",
	"name": "City Lights",
	"uri": "spotify:track:t1",
	"duration_ms": 215000,
	"explicit": true,
	"external_ids": {"isrc": "USABC1900001"},
	"artists": [{"name": "Nova"}, {"name": "Kai"}],
	"album": {"name": "Nights", "release_date": "2019-05-01", "images": [{"url": "http://img/1"}]}
}`

func newSpotifyTest(t *testing.T, mux *http.ServeMux) *SpotifyProvider {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewSpotifyProvider(SpotifyOpts{BaseURL: srv.URL + "/", Backoff: &Backoff{MaxAttempts: 1}})
}

func TestSpotifyProvider(t *testing.T) {
	t.Run("Capabilities", func(t *testing.T) {
		p := NewSpotifyProvider(SpotifyOpts{})
		if !p.Capabilities().Writable() {
			t.Error("expected spotify to be writable")
		}
		if p.Name() != models.ProviderSpotify {
			t.Errorf("expected name spotify, got %s", p.Name())
		}
	})

	t.Run("ListPlaylists", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /me/playlists", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"items": [
				{"id": "p1", "name": "Road", "description": "drive", "public": true, "tracks": {"total": 2}, "images": [{"url": "http://cover"}]},
				{"id": "p2", "name": "Gym", "public": false, "tracks": {"total": 0}}
			], "next": null}`)
		})
		p := newSpotifyTest(t, mux)

		playlists, err := p.ListPlaylists(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(playlists) != 2 {
			t.Fatalf("expected 2 playlists, got %d", len(playlists))
		}
		first := playlists[0]
		if first.ID != "p1" || first.Name != "Road" || first.TrackCount != 2 || first.CoverURL != "http://cover" {
			t.Errorf("unexpected playlist %+v", first)
		}
		if first.Visibility != models.VisibilityPublic || playlists[1].Visibility != models.VisibilityPrivate {
			t.Error("expected visibility from public flag")
		}
	})

	t.Run("ReadTracks", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /playlists/p1/tracks", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `{"items": [{"is_local": false, "track": %s}], "next": null}`, spotifyTrackJSON)
		})
		p := newSpotifyTest(t, mux)

		tracks, err := p.ReadTracks(context.Background(), "p1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(tracks) != 1 {
			t.Fatalf("expected 1 track, got %d", len(tracks))
		}
		tr := tracks[0]
		if tr.Title != "City Lights" || len(tr.Artists) != 2 || tr.Album != "Nights" {
			t.Errorf("unexpected track %+v", tr)
		}
		if tr.DurationMs == nil || *tr.DurationMs != 215000 {
			t.Errorf("expected duration 215000, got %v", tr.DurationMs)
		}
		if tr.ReleaseYear == nil || *tr.ReleaseYear != 2019 {
			t.Errorf("expected release year 2019, got %v", tr.ReleaseYear)
		}
		if tr.Explicit == nil || !*tr.Explicit {
			t.Error("expected explicit true")
		}
		if tr.ISRC != "USABC1900001" {
			t.Errorf("expected isrc, got %s", tr.ISRC)
		}
		if tr.SourceID(models.ProviderSpotify) != "spotify:track:t1" {
			t.Errorf("expected uri source id, got %v", tr.SourceIDs)
		}
	})

	t.Run("CreatePlaylist", func(t *testing.T) {
		var payload map[string]any
		mux := http.NewServeMux()
		mux.HandleFunc("GET /me", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"id": "u1", "display_name": "Me"}`)
		})
		mux.HandleFunc("POST /users/u1/playlists", func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&payload)
			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, `{"id": "new1", "name": "Road · via ListBridge"}`)
		})
		p := newSpotifyTest(t, mux)

		id, err := p.CreatePlaylist(context.Background(), CreatePlaylistOptions{
			Name:       "Road · via ListBridge",
			Visibility: models.VisibilityPublic,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if id != "new1" {
			t.Errorf("expected id new1, got %s", id)
		}
		if payload["public"] != true {
			t.Errorf("expected public playlist, got %v", payload)
		}
	})

	t.Run("AddItems chunks by 100", func(t *testing.T) {
		var batches [][]string
		mux := http.NewServeMux()
		mux.HandleFunc("POST /playlists/new1/tracks", func(w http.ResponseWriter, r *http.Request) {
			var body struct {
				URIs []string `json:"uris"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			batches = append(batches, body.URIs)
			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, `{"snapshot_id": "s"}`)
		})
		p := newSpotifyTest(t, mux)

		ids := make([]string, 150)
		for i := range ids {
			ids[i] = fmt.Sprintf("spotify:track:id%d", i)
		}
		if err := p.AddItems(context.Background(), "new1", ids); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(batches) != 2 || len(batches[0]) != 100 || len(batches[1]) != 50 {
			t.Fatalf("expected batches of 100 and 50, got %d batches", len(batches))
		}
		if batches[0][0] != "spotify:track:id0" {
			t.Errorf("expected uri spotify:track:id0, got %s", batches[0][0])
		}
	})

	t.Run("Search", func(t *testing.T) {
		var query, limit string
		mux := http.NewServeMux()
		mux.HandleFunc("GET /search", func(w http.ResponseWriter, r *http.Request) {
			query = r.URL.Query().Get("q")
			limit = r.URL.Query().Get("limit")
			fmt.Fprintf(w, `{"tracks": {"items": [%s], "next": null}}`, spotifyTrackJSON)
		})
		p := newSpotifyTest(t, mux)

		tracks, err := p.Search(context.Background(), "nova city lights")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if query != "nova city lights" || limit != "10" {
			t.Errorf("unexpected query %q limit %q", query, limit)
		}
		if len(tracks) != 1 || tracks[0].ID != "t1" {
			t.Errorf("unexpected tracks %+v", tracks)
		}
	})

	t.Run("maps 401 to auth required", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /search", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error": {"status": 401, "message": "The access token expired"}}`)
		})
		p := newSpotifyTest(t, mux)

		_, err := p.Search(context.Background(), "x")
		if !errors.Is(err, shared.ErrAuthRequired) {
			t.Errorf("expected ErrAuthRequired, got %v", err)
		}
		if !errors.Is(err, shared.ErrSearch) {
			t.Errorf("expected ErrSearch, got %v", err)
		}
	})
}
