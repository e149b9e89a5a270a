package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/listbridge/internal/models"
	"github.com/desertthunder/listbridge/internal/shared"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// DefaultDailyQuota is the YouTube Data API's default daily unit budget.
const DefaultDailyQuota = 10000

// Quota unit costs per YouTube Data API call.
const (
	CostPlaylistList        = 1
	CostPlaylistInsert      = 50
	CostPlaylistItemsList   = 1
	CostPlaylistItemsInsert = 50
	CostSearchList          = 100
	CostVideosList          = 1
)

const youtubePageSize = 50

var isoDurationRe = regexp.MustCompile(`PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?`)

// QuotaUsage is an advisory view of the day's consumed units.
type QuotaUsage struct {
	Used      int `json:"used"`
	Remaining int `json:"remaining"`
	Daily     int `json:"daily"`
}

// QuotaStore persists consumed units per UTC day.
type QuotaStore interface {
	AddQuota(ctx context.Context, day string, units int) error
	QuotaUsed(ctx context.Context, day string) (int, error)
}

// QuotaTracker counts units consumed by successful calls.
type QuotaTracker struct {
	mu     sync.Mutex
	daily  int
	used   int
	day    string
	store  QuotaStore
	logger *log.Logger
	now    func() time.Time
}

// NewQuotaTracker creates a tracker with the given daily budget. store may be nil.
func NewQuotaTracker(daily int, store QuotaStore) *QuotaTracker {
	if daily <= 0 {
		daily = DefaultDailyQuota
	}
	return &QuotaTracker{daily: daily, store: store, logger: log.New(io.Discard), now: time.Now}
}

// SetLogger routes persistence warnings to logger.
func (q *QuotaTracker) SetLogger(logger *log.Logger) {
	if logger == nil {
		return
	}
	q.mu.Lock()
	q.logger = logger
	q.mu.Unlock()
}

func (q *QuotaTracker) today() string {
	return q.now().UTC().Format(time.DateOnly)
}

// Charge records units against today's budget.
func (q *QuotaTracker) Charge(ctx context.Context, units int) {
	q.mu.Lock()
	day := q.today()
	if day != q.day {
		q.day, q.used = day, 0
	}
	q.used += units
	logger := q.logger
	q.mu.Unlock()

	if q.store == nil {
		return
	}
	if err := q.store.AddQuota(ctx, day, units); err != nil {
		logger.Warn("failed to persist quota usage", "day", day, "units", units, "error", err)
	}
}

// Usage reports today's usage, preferring the persisted count when a store is set.
func (q *QuotaTracker) Usage(ctx context.Context) QuotaUsage {
	q.mu.Lock()
	day := q.today()
	used := q.used
	if day != q.day {
		used = 0
	}
	q.mu.Unlock()

	if q.store != nil {
		if n, err := q.store.QuotaUsed(ctx, day); err == nil {
			used = max(used, n)
		}
	}
	return QuotaUsage{Used: used, Remaining: max(0, q.daily-used), Daily: q.daily}
}

// YouTubeOpts configures a [YouTubeProvider].
type YouTubeOpts struct {
	HTTPClient *http.Client
	// BaseURL overrides the API root. Must end with "/".
	BaseURL string
	Quota   *QuotaTracker
	Backoff *Backoff
	Logger  *log.Logger
}

// YouTubeProvider reads and writes playlists through the YouTube Data API v3.
type YouTubeProvider struct {
	svc     *youtube.Service
	quota   *QuotaTracker
	backoff Backoff
	logger  *log.Logger
}

// NewYouTubeProvider creates a provider. The HTTP client is expected to carry OAuth credentials.
func NewYouTubeProvider(ctx context.Context, opts YouTubeOpts) (*YouTubeProvider, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	clientOpts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.BaseURL))
	}
	svc, err := youtube.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube service: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	p := &YouTubeProvider{
		svc:     svc,
		quota:   opts.Quota,
		backoff: DefaultBackoff(),
		logger:  logger.WithPrefix("youtube"),
	}
	if p.quota == nil {
		p.quota = NewQuotaTracker(DefaultDailyQuota, nil)
	}
	p.quota.SetLogger(p.logger)
	if opts.Backoff != nil {
		p.backoff = *opts.Backoff
	}
	return p, nil
}

func (y *YouTubeProvider) Name() string { return models.ProviderYouTube }

func (y *YouTubeProvider) Capabilities() Capabilities {
	return Capabilities{PlaylistCreate: true, TrackAdd: true, Search: true, DisplayName: "YouTube"}
}

// Quota returns the tracker charged by this provider.
func (y *YouTubeProvider) Quota() *QuotaTracker { return y.quota }

// ListPlaylists pages through the channel's playlists.
func (y *YouTubeProvider) ListPlaylists(ctx context.Context) ([]models.Playlist, error) {
	var playlists []models.Playlist
	call := y.svc.Playlists.List([]string{"snippet", "contentDetails", "status"}).
		Mine(true).
		MaxResults(youtubePageSize)
	err := call.Pages(ctx, func(res *youtube.PlaylistListResponse) error {
		y.quota.Charge(ctx, CostPlaylistList)
		for _, item := range res.Items {
			pl := models.Playlist{ID: item.Id}
			if s := item.Snippet; s != nil {
				pl.Name = s.Title
				pl.Description = s.Description
				pl.CoverURL = thumbnailURL(s.Thumbnails, "standard", "high")
			}
			if item.Status != nil {
				pl.Visibility = models.ParseVisibility(item.Status.PrivacyStatus)
			}
			if item.ContentDetails != nil {
				pl.TrackCount = int(item.ContentDetails.ItemCount)
			}
			playlists = append(playlists, pl)
		}
		return nil
	})
	if err != nil {
		return nil, youtubeErr(err)
	}
	return playlists, nil
}

// ReadTracks pages through a playlist's videos. Durations are not fetched.
func (y *YouTubeProvider) ReadTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	var tracks []models.Track
	call := y.svc.PlaylistItems.List([]string{"snippet", "contentDetails"}).
		PlaylistId(playlistID).
		MaxResults(youtubePageSize)
	err := call.Pages(ctx, func(res *youtube.PlaylistItemListResponse) error {
		y.quota.Charge(ctx, CostPlaylistItemsList)
		for _, item := range res.Items {
			s := item.Snippet
			if s == nil || s.ResourceId == nil || s.ResourceId.VideoId == "" {
				continue
			}
			id := s.ResourceId.VideoId
			tracks = append(tracks, models.Track{
				ID:        id,
				Title:     s.Title,
				Artists:   channelArtists(s.VideoOwnerChannelTitle),
				CoverURL:  thumbnailURL(s.Thumbnails, "medium", "high"),
				SourceIDs: map[string]string{models.ProviderYouTube: id},
			})
		}
		return nil
	})
	if err != nil {
		return nil, youtubeErr(err)
	}
	return tracks, nil
}

// CreatePlaylist inserts a playlist and returns its id.
func (y *YouTubeProvider) CreatePlaylist(ctx context.Context, opts CreatePlaylistOptions) (string, error) {
	privacy := string(models.VisibilityPrivate)
	if opts.Visibility == models.VisibilityPublic {
		privacy = string(models.VisibilityPublic)
	}
	playlist := &youtube.Playlist{
		Snippet: &youtube.PlaylistSnippet{Title: opts.Name, Description: opts.Description},
		Status:  &youtube.PlaylistStatus{PrivacyStatus: privacy},
	}
	created, err := y.svc.Playlists.Insert([]string{"snippet", "status"}, playlist).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("%w: %w", shared.ErrProviderWrite, youtubeErr(err))
	}
	y.quota.Charge(ctx, CostPlaylistInsert)
	return created.Id, nil
}

// AddItems inserts one video at a time. Each insert is retried by the provider's backoff only.
func (y *YouTubeProvider) AddItems(ctx context.Context, playlistID string, ids []string) error {
	for _, videoID := range ids {
		item := &youtube.PlaylistItem{
			Snippet: &youtube.PlaylistItemSnippet{
				PlaylistId: playlistID,
				ResourceId: &youtube.ResourceId{Kind: "youtube#video", VideoId: videoID},
			},
		}
		err := y.backoff.Do(ctx, func(attempt int) error {
			if attempt > 0 {
				y.logger.Warn("retrying insert", "video", videoID, "attempt", attempt)
			}
			if _, err := y.svc.PlaylistItems.Insert([]string{"snippet"}, item).Context(ctx).Do(); err != nil {
				return youtubeErr(err)
			}
			y.quota.Charge(ctx, CostPlaylistItemsInsert)
			return nil
		})
		if err != nil {
			return fmt.Errorf("%w: %w", shared.ErrProviderWrite, err)
		}
	}
	return nil
}

// Search finds videos and enriches them with durations and ratings.
func (y *YouTubeProvider) Search(ctx context.Context, query string) ([]models.Track, error) {
	found, err := y.svc.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		MaxResults(SearchLimit).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrSearch, youtubeErr(err))
	}
	y.quota.Charge(ctx, CostSearchList)

	ids := make([]string, 0, len(found.Items))
	for _, item := range found.Items {
		if item.Id != nil && item.Id.VideoId != "" {
			ids = append(ids, item.Id.VideoId)
		}
	}
	if len(ids) == 0 {
		return []models.Track{}, nil
	}

	videos, err := y.svc.Videos.List([]string{"snippet", "contentDetails"}).Id(ids...).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrSearch, youtubeErr(err))
	}
	y.quota.Charge(ctx, CostVideosList)

	tracks := make([]models.Track, 0, len(videos.Items))
	for _, v := range videos.Items {
		t := models.Track{ID: v.Id, SourceIDs: map[string]string{models.ProviderYouTube: v.Id}}
		if s := v.Snippet; s != nil {
			t.Title = s.Title
			t.Artists = channelArtists(s.ChannelTitle)
			t.CoverURL = thumbnailURL(s.Thumbnails, "high", "medium")
		}
		if cd := v.ContentDetails; cd != nil {
			t.Explicit = models.BoolPtr(cd.ContentRating != nil && cd.ContentRating.YtRating == "ytAgeRestricted")
			if ms := ParseISODuration(cd.Duration); ms > 0 {
				t.DurationMs = models.IntPtr(ms)
			}
		}
		tracks = append(tracks, t)
	}
	return tracks, nil
}

// thumbnailURL returns the first available thumbnail among sizes.
func thumbnailURL(d *youtube.ThumbnailDetails, sizes ...string) string {
	if d == nil {
		return ""
	}
	bySize := map[string]*youtube.Thumbnail{
		"default":  d.Default,
		"medium":   d.Medium,
		"high":     d.High,
		"standard": d.Standard,
		"maxres":   d.Maxres,
	}
	for _, size := range sizes {
		if th := bySize[size]; th != nil && th.Url != "" {
			return th.Url
		}
	}
	return ""
}

// youtubeErr converts a [googleapi.Error] into a [StatusError], marking exhausted quota.
func youtubeErr(err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return fmt.Errorf("request failed: %w", err)
	}
	se := &StatusError{Provider: models.ProviderYouTube, Status: gerr.Code, Message: gerr.Message}
	for _, e := range gerr.Errors {
		if e.Reason == "quotaExceeded" || e.Reason == "dailyLimitExceeded" {
			return fmt.Errorf("%w: %w", shared.ErrQuotaExceeded, se)
		}
	}
	return se
}

// ParseISODuration converts an ISO-8601 duration such as PT3M45S to milliseconds. Unparseable input yields 0.
func ParseISODuration(s string) int {
	m := isoDurationRe.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	part := func(v string) int {
		n, _ := strconv.Atoi(v)
		return n
	}
	return (part(m[1])*3600 + part(m[2])*60 + part(m[3])) * 1000
}

// channelArtists derives the artist list from a channel title, dropping the auto-generated " - Topic" suffix.
func channelArtists(channel string) []string {
	channel = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(channel), " - Topic"))
	if channel == "" {
		return []string{}
	}
	return []string{channel}
}

// IsQuotaExceeded reports whether err came from an exhausted YouTube quota.
func IsQuotaExceeded(err error) bool {
	return errors.Is(err, shared.ErrQuotaExceeded)
}
