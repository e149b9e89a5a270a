package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/listbridge/internal/models"
	"github.com/desertthunder/listbridge/internal/shared"
	"github.com/kkdai/youtube/v2"
)

// playlistFetcher is the subset of [youtube.Client] used by [PublicYouTubeReader].
type playlistFetcher interface {
	GetPlaylistContext(ctx context.Context, url string) (*youtube.Playlist, error)
}

// PublicYouTubeReader reads public YouTube playlists without OAuth or quota.
//
// It is a read-only source: create, add and search return [shared.ErrNotSupported].
type PublicYouTubeReader struct {
	client    playlistFetcher
	playlists []string
}

// NewPublicYouTubeReader creates a reader over the given playlist URLs or ids.
func NewPublicYouTubeReader(playlists []string) *PublicYouTubeReader {
	return &PublicYouTubeReader{client: &youtube.Client{HTTPClient: WrapClient(nil, DefaultRequestRate)}, playlists: playlists}
}

func (r *PublicYouTubeReader) Name() string { return models.ProviderYouTube }

func (r *PublicYouTubeReader) Capabilities() Capabilities {
	return Capabilities{DisplayName: "YouTube (public)"}
}

// ListPlaylists resolves each configured playlist.
func (r *PublicYouTubeReader) ListPlaylists(ctx context.Context) ([]models.Playlist, error) {
	playlists := make([]models.Playlist, 0, len(r.playlists))
	for _, ref := range r.playlists {
		p, err := r.client.GetPlaylistContext(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", shared.ErrPlaylistNotFound, ref, err)
		}
		playlists = append(playlists, models.Playlist{
			ID:          p.ID,
			Name:        p.Title,
			Description: p.Description,
			Visibility:  models.VisibilityPublic,
			TrackCount:  len(p.Videos),
		})
	}
	return playlists, nil
}

// ReadTracks fetches a playlist by id or URL.
func (r *PublicYouTubeReader) ReadTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	p, err := r.client.GetPlaylistContext(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", shared.ErrPlaylistNotFound, playlistID, err)
	}

	tracks := make([]models.Track, 0, len(p.Videos))
	for _, v := range p.Videos {
		if v == nil || v.ID == "" {
			continue
		}
		artists, title := SplitVideoTitle(v.Title, v.Author)
		t := models.Track{
			ID:        v.ID,
			Title:     title,
			Artists:   artists,
			SourceIDs: map[string]string{models.ProviderYouTube: v.ID},
		}
		if ms := int(v.Duration.Milliseconds()); ms > 0 {
			t.DurationMs = models.IntPtr(ms)
		}
		if len(v.Thumbnails) > 0 {
			t.CoverURL = v.Thumbnails[len(v.Thumbnails)-1].URL
		}
		tracks = append(tracks, t)
	}
	return tracks, nil
}

func (r *PublicYouTubeReader) CreatePlaylist(context.Context, CreatePlaylistOptions) (string, error) {
	return "", fmt.Errorf("%w: public reader cannot create playlists", shared.ErrNotSupported)
}

func (r *PublicYouTubeReader) AddItems(context.Context, string, []string) error {
	return fmt.Errorf("%w: public reader cannot add items", shared.ErrNotSupported)
}

func (r *PublicYouTubeReader) Search(context.Context, string) ([]models.Track, error) {
	return nil, fmt.Errorf("%w: public reader cannot search", shared.ErrNotSupported)
}

// SplitVideoTitle splits "Artist - Title" video titles. Without a separator the
// channel (minus " - Topic") is the artist and the whole title is kept.
func SplitVideoTitle(title, channel string) ([]string, string) {
	title = strings.TrimSpace(title)
	if left, right, ok := strings.Cut(title, " - "); ok && strings.TrimSpace(left) != "" && strings.TrimSpace(right) != "" {
		return []string{strings.TrimSpace(left)}, strings.TrimSpace(right)
	}
	return channelArtists(channel), title
}
