package services

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/desertthunder/listbridge/internal/models"
)

// Provider is a music catalog that playlists can be read from and written to.
type Provider interface {
	// Name returns the provider key used in source ids (e.g. "spotify", "youtube").
	Name() string

	// Capabilities describes which operations are available.
	Capabilities() Capabilities

	// ListPlaylists returns the authenticated user's playlists without tracks.
	ListPlaylists(ctx context.Context) ([]models.Playlist, error)

	// ReadTracks returns every track of a playlist in order.
	ReadTracks(ctx context.Context, playlistID string) ([]models.Track, error)

	// CreatePlaylist creates an empty playlist and returns its id.
	CreatePlaylist(ctx context.Context, opts CreatePlaylistOptions) (string, error)

	// AddItems appends the given provider track ids to a playlist.
	AddItems(ctx context.Context, playlistID string, ids []string) error

	// Search returns at most [SearchLimit] tracks for a free-text query.
	Search(ctx context.Context, query string) ([]models.Track, error)
}

// SearchLimit caps the results requested per search.
const SearchLimit = 10

// Capabilities describes a provider's supported operations.
type Capabilities struct {
	PlaylistCreate bool
	TrackAdd       bool
	Search         bool
	DisplayName    string
}

// Writable reports whether the provider can be a transfer target.
func (c Capabilities) Writable() bool {
	return c.PlaylistCreate && c.TrackAdd && c.Search
}

// CreatePlaylistOptions describes a destination playlist.
type CreatePlaylistOptions struct {
	Name        string
	Description string
	Visibility  models.Visibility
}

// FetchCollection reads playlists and their tracks from p.
//
// When ids is empty every playlist is fetched; otherwise only the listed ones, in the listed order.
func FetchCollection(ctx context.Context, p Provider, ids []string) (*models.Collection, error) {
	playlists, err := p.ListPlaylists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s playlists: %w", p.Name(), err)
	}

	if len(ids) > 0 {
		selected := make([]models.Playlist, 0, len(ids))
		for _, id := range ids {
			i := slices.IndexFunc(playlists, func(pl models.Playlist) bool { return pl.ID == id || pl.Name == id })
			if i < 0 {
				selected = append(selected, models.Playlist{ID: id, Name: id})
				continue
			}
			selected = append(selected, playlists[i])
		}
		playlists = selected
	}

	for i := range playlists {
		tracks, err := p.ReadTracks(ctx, playlists[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to read tracks of %q: %w", playlists[i].Name, err)
		}
		playlists[i].Tracks = tracks
		playlists[i].TrackCount = len(tracks)
	}

	return &models.Collection{Source: p.Name(), Playlists: playlists, FetchedAt: time.Now().UTC()}, nil
}
