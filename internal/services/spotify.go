package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/listbridge/internal/models"
	"github.com/desertthunder/listbridge/internal/shared"
	"github.com/zmb3/spotify/v2"
)

// spotifyAddChunk is the maximum number of items per add request.
const spotifyAddChunk = 100

const spotifyTrackURIPrefix = "spotify:track:"

// SpotifyOpts configures a [SpotifyProvider].
type SpotifyOpts struct {
	HTTPClient *http.Client
	// BaseURL overrides the Web API root. Must end with "/".
	BaseURL string
	Backoff *Backoff
	Logger  *log.Logger
}

// SpotifyProvider reads and writes playlists through the Spotify Web API.
type SpotifyProvider struct {
	client  *spotify.Client
	backoff Backoff
	logger  *log.Logger

	mu     sync.Mutex
	userID string
}

// NewSpotifyProvider creates a provider. The HTTP client is expected to carry OAuth credentials.
func NewSpotifyProvider(opts SpotifyOpts) *SpotifyProvider {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	var clientOpts []spotify.ClientOption
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, spotify.WithBaseURL(opts.BaseURL))
	}
	backoff := DefaultBackoff()
	if opts.Backoff != nil {
		backoff = *opts.Backoff
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &SpotifyProvider{
		client:  spotify.New(httpClient, clientOpts...),
		backoff: backoff,
		logger:  logger.WithPrefix("spotify"),
	}
}

func (s *SpotifyProvider) Name() string { return models.ProviderSpotify }

func (s *SpotifyProvider) Capabilities() Capabilities {
	return Capabilities{PlaylistCreate: true, TrackAdd: true, Search: true, DisplayName: "Spotify"}
}

// ListPlaylists pages through the current user's playlists.
func (s *SpotifyProvider) ListPlaylists(ctx context.Context) ([]models.Playlist, error) {
	page, err := s.client.CurrentUsersPlaylists(ctx, spotify.Limit(50))
	if err != nil {
		return nil, spotifyErr(err)
	}

	var playlists []models.Playlist
	for {
		for _, p := range page.Playlists {
			pl := models.Playlist{
				ID:          string(p.ID),
				Name:        p.Name,
				Description: p.Description,
				Visibility:  models.VisibilityPrivate,
				TrackCount:  int(p.Tracks.Total),
			}
			if p.IsPublic {
				pl.Visibility = models.VisibilityPublic
			}
			if len(p.Images) > 0 {
				pl.CoverURL = p.Images[0].URL
			}
			playlists = append(playlists, pl)
		}

		err := s.client.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return playlists, spotifyErr(err)
		}
	}
	return playlists, nil
}

// ReadTracks pages through a playlist, skipping episodes and removed tracks.
func (s *SpotifyProvider) ReadTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	page, err := s.client.GetPlaylistItems(ctx, spotify.ID(playlistID), spotify.Limit(100))
	if err != nil {
		return nil, spotifyErr(err)
	}

	var tracks []models.Track
	for {
		for _, item := range page.Items {
			if item.Track.Track == nil {
				continue
			}
			tracks = append(tracks, spotifyTrack(*item.Track.Track))
		}

		err := s.client.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return tracks, spotifyErr(err)
		}
	}
	return tracks, nil
}

// CreatePlaylist creates a playlist owned by the current user.
func (s *SpotifyProvider) CreatePlaylist(ctx context.Context, opts CreatePlaylistOptions) (string, error) {
	userID, err := s.currentUserID(ctx)
	if err != nil {
		return "", err
	}
	public := opts.Visibility == models.VisibilityPublic
	p, err := s.client.CreatePlaylistForUser(ctx, userID, opts.Name, opts.Description, public, false)
	if err != nil {
		return "", fmt.Errorf("%w: %w", shared.ErrProviderWrite, spotifyErr(err))
	}
	s.logger.Debug("created playlist", "id", p.ID, "name", opts.Name)
	return string(p.ID), nil
}

// AddItems appends tracks in chunks of 100. ids may be bare ids or spotify:track: URIs.
func (s *SpotifyProvider) AddItems(ctx context.Context, playlistID string, ids []string) error {
	for start := 0; start < len(ids); start += spotifyAddChunk {
		end := min(start+spotifyAddChunk, len(ids))
		chunk := make([]spotify.ID, 0, end-start)
		for _, id := range ids[start:end] {
			chunk = append(chunk, spotify.ID(strings.TrimPrefix(id, spotifyTrackURIPrefix)))
		}

		err := s.backoff.Do(ctx, func(attempt int) error {
			if attempt > 0 {
				s.logger.Warn("retrying add", "playlist", playlistID, "attempt", attempt)
			}
			_, err := s.client.AddTracksToPlaylist(ctx, spotify.ID(playlistID), chunk...)
			return spotifyErr(err)
		})
		if err != nil {
			return fmt.Errorf("%w: %w", shared.ErrProviderWrite, err)
		}
	}
	return nil
}

// Search queries the track catalog.
func (s *SpotifyProvider) Search(ctx context.Context, query string) ([]models.Track, error) {
	res, err := s.client.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(SearchLimit))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrSearch, spotifyErr(err))
	}
	if res.Tracks == nil {
		return []models.Track{}, nil
	}
	tracks := make([]models.Track, 0, len(res.Tracks.Tracks))
	for _, t := range res.Tracks.Tracks {
		tracks = append(tracks, spotifyTrack(t))
	}
	return tracks, nil
}

func (s *SpotifyProvider) currentUserID(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userID != "" {
		return s.userID, nil
	}
	user, err := s.client.CurrentUser(ctx)
	if err != nil {
		return "", spotifyErr(err)
	}
	s.userID = user.ID
	return s.userID, nil
}

func spotifyTrack(t spotify.FullTrack) models.Track {
	artists := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		artists = append(artists, a.Name)
	}

	track := models.Track{
		ID:        string(t.ID),
		Title:     t.Name,
		Artists:   artists,
		Album:     t.Album.Name,
		ISRC:      t.ExternalIDs["isrc"],
		Explicit:  models.BoolPtr(t.Explicit),
		SourceIDs: map[string]string{models.ProviderSpotify: string(t.URI)},
	}
	if d := int(t.Duration); d > 0 {
		track.DurationMs = models.IntPtr(d)
	}
	if len(t.Album.ReleaseDate) >= 4 {
		if y, err := strconv.Atoi(t.Album.ReleaseDate[:4]); err == nil && y > 0 {
			track.ReleaseYear = models.IntPtr(y)
		}
	}
	if len(t.Album.Images) > 0 {
		track.CoverURL = t.Album.Images[0].URL
	}
	return track
}

// spotifyErr converts client errors into a [StatusError] so callers can match
// [shared.ErrAuthRequired] and retry decisions uniformly.
func spotifyErr(err error) error {
	if err == nil {
		return nil
	}
	var se spotify.Error
	if errors.As(err, &se) {
		return &StatusError{Provider: models.ProviderSpotify, Status: se.Status, Message: se.Message}
	}
	return err
}
