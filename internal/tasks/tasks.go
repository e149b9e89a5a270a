package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/listbridge/internal/mapping"
	"github.com/desertthunder/listbridge/internal/models"
	"github.com/desertthunder/listbridge/internal/services"
	"github.com/desertthunder/listbridge/internal/shared"
)

// CheckpointStore persists the single live resume point.
type CheckpointStore interface {
	Save(ctx context.Context, cp models.TransferCheckpoint) error
	Load(ctx context.Context) (*models.TransferCheckpoint, error)
	Clear(ctx context.Context) error
}

// MatchStore persists accepted match decisions.
type MatchStore interface {
	Save(ctx context.Context, d models.MatchDecision) error
	Book(ctx context.Context, targetProvider string) (models.MatchBook, error)
}

// ReviewStore holds tracks waiting for a manual decision.
type ReviewStore interface {
	Enqueue(ctx context.Context, review models.PendingReview) (string, error)
	Get(ctx context.Context, id string) (*models.PendingReview, error)
	Delete(ctx context.Context, id string) error
}

// ReportStore keeps completed run summaries.
type ReportStore interface {
	Save(ctx context.Context, report models.TransferReport) error
}

// Target is the write side of a transfer: the destination catalog and its operations.
type Target struct {
	ProviderName   string
	CreatePlaylist func(ctx context.Context, opts services.CreatePlaylistOptions) (string, error)
	AddItems       func(ctx context.Context, playlistID string, ids []string) error
	Search         mapping.SearchFunc
}

// TargetFromProvider builds a Target from a provider. Read-only providers are rejected.
func TargetFromProvider(p services.Provider) (Target, error) {
	caps := p.Capabilities()
	if !caps.Writable() {
		return Target{}, fmt.Errorf("%w: %s cannot be a transfer target", shared.ErrNotSupported, caps.DisplayName)
	}
	return Target{
		ProviderName:   p.Name(),
		CreatePlaylist: p.CreatePlaylist,
		AddItems:       p.AddItems,
		Search:         p.Search,
	}, nil
}

func (t Target) validate() error {
	switch {
	case t.ProviderName == "":
		return fmt.Errorf("%w: target provider name", shared.ErrMissingArgument)
	case t.CreatePlaylist == nil || t.AddItems == nil || t.Search == nil:
		return fmt.Errorf("%w: target %s is missing operations", shared.ErrInvalidArgument, t.ProviderName)
	}
	return nil
}

// TrackKey identifies a source track across runs.
//
// Provider ids are preferred (see [models.TrackKey]); tracks without any id, such
// as CSV imports, fall back to their normalized "artist|title".
func TrackKey(t models.Track, sourceProvider, targetProvider, locale string) string {
	if key := models.TrackKey(t, sourceProvider, targetProvider); key != "" {
		return key
	}
	artist := strings.Join(mapping.NormalizeArtists(t.Artists[:min(len(t.Artists), 1)]), " ")
	return "meta:" + artist + "|" + mapping.NormalizeText(t.Title, locale)
}
