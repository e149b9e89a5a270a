package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/listbridge/internal/models"
	"github.com/desertthunder/listbridge/internal/shared"
)

// AutoMapResult summarises an auto-mapping pass.
type AutoMapResult struct {
	Total    int
	Accepted int
	Reused   int
	Pending  []models.FailureRecord
}

// AutoMap resolves every undecided track of the collection against the target
// without creating playlists. Accepted candidates become decisions; the rest are
// returned and queued for review when a [ReviewStore] is configured.
//
// Duplicate tracks across playlists are resolved once.
func (o *Orchestrator) AutoMap(ctx context.Context, c *models.Collection, target Target) (*AutoMapResult, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: collection", shared.ErrMissingArgument)
	}
	if target.ProviderName == "" || target.Search == nil {
		return nil, fmt.Errorf("%w: target search", shared.ErrMissingArgument)
	}

	book, err := o.book(ctx, target.ProviderName)
	if err != nil {
		return nil, err
	}

	result := &AutoMapResult{Total: c.TotalTracks()}
	seen := make(map[string]struct{})
	step := 0
	for _, p := range c.Playlists {
		for _, t := range p.Tracks {
			step++
			key := TrackKey(t, c.Source, target.ProviderName, o.locale)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			outcome, err := o.resolve(ctx, t, c.Source, target, book)
			if err != nil {
				return result, err
			}
			switch {
			case outcome.Reused:
				result.Reused++
			case outcome.Matched != nil:
				result.Accepted++
			case outcome.Failure != nil:
				result.Pending = append(result.Pending, *outcome.Failure)
			}
			o.notify(autoMapUpdate(step, result.Total, outcome))
		}
	}

	o.logger.Info("auto-mapping finished", "accepted", result.Accepted, "reused", result.Reused, "pending", len(result.Pending))
	return result, nil
}

// ResolveReview accepts choice for a pending review as a manual decision and removes the review.
func (o *Orchestrator) ResolveReview(ctx context.Context, reviewID string, choice models.Track) error {
	if o.reviews == nil {
		return fmt.Errorf("%w: no review store configured", shared.ErrNotSupported)
	}
	review, err := o.reviews.Get(ctx, reviewID)
	if err != nil {
		return err
	}

	book, err := o.book(ctx, review.TargetProvider)
	if err != nil {
		return err
	}

	score := 0
	for _, c := range review.Candidates {
		if c.Track.TargetID(review.TargetProvider) == choice.TargetID(review.TargetProvider) {
			score = c.Score
			break
		}
	}
	if err := o.accept(ctx, review.TrackKey, sourceProvider(review), review.TargetProvider, choice, score, true, book); err != nil {
		return err
	}
	return o.reviews.Delete(ctx, reviewID)
}

// SkipReview drops a pending review without recording a decision.
func (o *Orchestrator) SkipReview(ctx context.Context, reviewID string) error {
	if o.reviews == nil {
		return fmt.Errorf("%w: no review store configured", shared.ErrNotSupported)
	}
	return o.reviews.Delete(ctx, reviewID)
}

// sourceProvider guesses the source of a reviewed track from its recorded ids.
func sourceProvider(r *models.PendingReview) string {
	for provider := range r.Track.SourceIDs {
		if provider != r.TargetProvider {
			return provider
		}
	}
	return ""
}
