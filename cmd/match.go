package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/listbridge/internal/repositories"
	"github.com/desertthunder/listbridge/internal/shared"
	"github.com/desertthunder/listbridge/internal/tasks"
	"github.com/desertthunder/listbridge/internal/ui"
	"github.com/urfave/cli/v3"
)

// MatchAuto records confident matches for a collection and queues the rest for review.
func (r *Runner) MatchAuto(ctx context.Context, cmd *cli.Command) error {
	collection, err := r.sourceCollection(ctx, cmd)
	if err != nil {
		return err
	}

	dest, err := r.provider(ctx, cmd.String("to"), nil)
	if err != nil {
		return err
	}
	target, err := tasks.TargetFromProvider(dest)
	if err != nil {
		return err
	}
	r.printQuota(ctx, dest, collection.TotalTracks())

	orch, err := r.orchestrator(r.printProgress)
	if err != nil {
		return err
	}

	result, err := orch.AutoMap(ctx, collection, target)
	if err != nil {
		return err
	}

	r.writePlainln("")
	r.writePlainHeader("Auto-match Complete")
	r.writePlain("Tracks: %d\n", result.Total)
	r.writePlain("Accepted: %d\n", result.Accepted)
	r.writePlain("Already decided: %d\n", result.Reused)
	r.writePlain("Pending review: %d\n", len(result.Pending))
	if len(result.Pending) > 0 {
		r.writePlain("\nRun 'listbridge match review --to %s' to choose candidates.\n", target.ProviderName)
	}
	return nil
}

// MatchReview opens the review TUI for the target provider's queue.
func (r *Runner) MatchReview(ctx context.Context, cmd *cli.Command) error {
	target := cmd.String("to")
	reviewer, err := r.reviewQueue(target)
	if err != nil {
		return err
	}

	model, err := r.runTUI(ctx, ui.Options{Reviewer: reviewer})
	if err != nil {
		return err
	}
	return model.Err()
}

// MatchPending lists queued reviews with their best candidate.
func (r *Runner) MatchPending(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	reviews, err := repositories.NewReviewRepository(db).List(ctx, cmd.String("to"))
	if err != nil {
		return err
	}
	if len(reviews) == 0 {
		return r.writePlain("✓ Nothing to review\n")
	}

	rows := make([][]string, 0, len(reviews))
	for _, rv := range reviews {
		best, score := "-", ""
		if len(rv.Candidates) > 0 {
			c := rv.Candidates[0]
			best = fmt.Sprintf("%s - %s", strings.Join(c.Track.Artists, ", "), c.Track.Title)
			score = strconv.Itoa(c.Score)
		}
		rows = append(rows, []string{
			rv.ID,
			fmt.Sprintf("%s - %s", strings.Join(rv.Track.Artists, ", "), rv.Track.Title),
			rv.TargetProvider,
			best,
			score,
		})
	}
	return r.writeTable([]string{"ID", "Track", "Target", "Best candidate", "Score"}, rows,
		alignLeft, alignLeft, alignLeft, alignLeft, alignRight)
}

// MatchList prints the recorded decisions for the target provider.
func (r *Runner) MatchList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	decisions, err := repositories.NewMatchRepository(db).List(ctx, cmd.String("to"))
	if err != nil {
		return err
	}
	if len(decisions) == 0 {
		return r.writePlain("No match decisions recorded for %s\n", cmd.String("to"))
	}

	rows := make([][]string, 0, len(decisions))
	for _, d := range decisions {
		how := "auto"
		if d.Manual {
			how = "manual"
		}
		rows = append(rows, []string{
			d.TrackKey,
			fmt.Sprintf("%s - %s", strings.Join(d.Target.Artists, ", "), d.Target.Title),
			d.Target.ID,
			strconv.Itoa(d.Score),
			how,
		})
	}
	return r.writeTable([]string{"Key", "Target track", "Target ID", "Score", "Decision"}, rows,
		alignLeft, alignLeft, alignLeft, alignRight)
}

// MatchForget deletes one decision so the next run searches for the track again.
func (r *Runner) MatchForget(ctx context.Context, cmd *cli.Command) error {
	key := cmd.StringArg("key")
	if key == "" {
		return fmt.Errorf("%w: track key", shared.ErrMissingArgument)
	}

	db, err := r.database()
	if err != nil {
		return err
	}
	if err := repositories.NewMatchRepository(db).Delete(ctx, cmd.String("to"), key); err != nil {
		return err
	}
	return r.writePlain("✓ Forgot %s\n", key)
}
