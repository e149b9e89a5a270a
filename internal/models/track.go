package models

import (
	"maps"
	"strings"
	"time"
)

// Provider keys used in [Track.SourceIDs] and match decisions.
const (
	ProviderSpotify = "spotify"
	ProviderYouTube = "youtube"
)

// Visibility of a playlist on its provider.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// ParseVisibility maps free-form values to a [Visibility], defaulting to private.
func ParseVisibility(v string) Visibility {
	if strings.EqualFold(strings.TrimSpace(v), string(VisibilityPublic)) {
		return VisibilityPublic
	}
	return VisibilityPrivate
}

// Track is song metadata as reported by one provider.
type Track struct {
	ID          string            `json:"id" yaml:"id"`
	Title       string            `json:"title" yaml:"title"`
	Artists     []string          `json:"artists" yaml:"artists"`
	Album       string            `json:"album,omitempty" yaml:"album,omitempty"`
	DurationMs  *int              `json:"duration_ms,omitempty" yaml:"duration_ms,omitempty"`
	ISRC        string            `json:"isrc,omitempty" yaml:"isrc,omitempty"`
	ReleaseYear *int              `json:"release_year,omitempty" yaml:"release_year,omitempty"`
	Explicit    *bool             `json:"explicit,omitempty" yaml:"explicit,omitempty"`
	CoverURL    string            `json:"cover_url,omitempty" yaml:"cover_url,omitempty"`
	SourceIDs   map[string]string `json:"source_ids,omitempty" yaml:"source_ids,omitempty"`
}

// PrimaryArtist returns the first credited artist or "".
func (t Track) PrimaryArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0]
}

// SourceID returns the identifier recorded for provider, or "".
func (t Track) SourceID(provider string) string {
	return t.SourceIDs[provider]
}

// WithSourceID returns a copy of t with provider's id recorded. The receiver's map is not mutated.
func (t Track) WithSourceID(provider, id string) Track {
	ids := make(map[string]string, len(t.SourceIDs)+1)
	maps.Copy(ids, t.SourceIDs)
	ids[provider] = id
	t.SourceIDs = ids
	return t
}

// TargetID is the identifier to hand to provider when adding this track to a playlist.
func (t Track) TargetID(provider string) string {
	if id := t.SourceID(provider); id != "" {
		return id
	}
	return t.ID
}

// TrackKey identifies a source track across runs: the source provider id,
// then the target provider id, then the provider-local id.
func TrackKey(t Track, sourceProvider, targetProvider string) string {
	if id := t.SourceID(sourceProvider); id != "" {
		return id
	}
	if id := t.SourceID(targetProvider); id != "" {
		return id
	}
	return t.ID
}

// Playlist is a provider playlist with its ordered tracks.
type Playlist struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Visibility  Visibility `json:"visibility,omitempty" yaml:"visibility,omitempty"`
	CoverURL    string     `json:"cover_url,omitempty" yaml:"cover_url,omitempty"`
	TrackCount  int        `json:"track_count,omitempty" yaml:"track_count,omitempty"`
	Tracks      []Track    `json:"tracks" yaml:"tracks"`
}

// Collection groups the playlists read from one source.
type Collection struct {
	Source    string     `json:"source" yaml:"source"`
	Playlists []Playlist `json:"playlists" yaml:"playlists"`
	FetchedAt time.Time  `json:"fetched_at" yaml:"fetched_at"`
}

// TotalTracks sums the loaded tracks of every playlist.
func (c Collection) TotalTracks() int {
	n := 0
	for _, p := range c.Playlists {
		n += len(p.Tracks)
	}
	return n
}

// Playlist looks up a playlist by id.
func (c Collection) Playlist(id string) (Playlist, bool) {
	for _, p := range c.Playlists {
		if p.ID == id {
			return p, true
		}
	}
	return Playlist{}, false
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// BoolPtr returns a pointer to v.
func BoolPtr(v bool) *bool { return &v }
