package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/listbridge/internal/formatter"
	"github.com/desertthunder/listbridge/internal/models"
	"github.com/desertthunder/listbridge/internal/repositories"
	"github.com/desertthunder/listbridge/internal/services"
	"github.com/desertthunder/listbridge/internal/shared"
	"github.com/desertthunder/listbridge/internal/tasks"
	"github.com/urfave/cli/v3"
)

// TransferRun copies a collection to the target provider.
//
// Refuses to start while an interrupted run's checkpoint exists unless --force is set.
func (r *Runner) TransferRun(ctx context.Context, cmd *cli.Command) error {
	return r.transfer(ctx, cmd, false)
}

// TransferResume continues the interrupted run, skipping the playlists its checkpoint covers.
func (r *Runner) TransferResume(ctx context.Context, cmd *cli.Command) error {
	return r.transfer(ctx, cmd, true)
}

func (r *Runner) transfer(ctx context.Context, cmd *cli.Command, resume bool) error {
	lock := shared.NewRunLock(r.config.Transfer.LockPath)
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer lock.Release()

	db, err := r.database()
	if err != nil {
		return err
	}

	existing, err := repositories.NewCheckpointRepository(db).Load(ctx)
	if err != nil {
		return err
	}

	var resumeFrom *models.TransferCheckpoint
	switch {
	case resume && existing == nil:
		return fmt.Errorf("%w: no interrupted transfer to resume", shared.ErrInvalidArgument)
	case resume:
		resumeFrom = existing
		r.logger.Info("resuming transfer", "run", existing.RunID, "after", existing.PlaylistID)
	case existing != nil && !cmd.Bool("force"):
		return fmt.Errorf("%w: run %s stopped at %d%%; use `transfer resume`, `transfer discard` or --force",
			shared.ErrTransferRunning, existing.RunID, existing.Percent())
	}

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

	req := tasks.TransferRequest{Collection: collection, Target: target, ResumeFrom: resumeFrom}
	failuresPath := cmd.String("failures")

	if cmd.Bool("tui") {
		report, err := r.transferTUI(ctx, req)
		if err != nil || report == nil {
			return err
		}
		return r.printReport(report, failuresPath)
	}

	r.writePlain("Starting playlist transfer...\n")
	r.writePlain("Source: %s (%d playlists, %d tracks)\n", collection.Source, len(collection.Playlists), collection.TotalTracks())
	r.writePlain("Destination: %s\n\n", dest.Capabilities().DisplayName)

	orch, err := r.orchestrator(r.printProgress)
	if err != nil {
		return err
	}
	report, err := orch.TransferCollection(ctx, req)
	if err != nil {
		if services.IsQuotaExceeded(err) {
			r.writePlain("\nThe YouTube quota for today is used up. It resets at midnight Pacific time.\n")
		}
		r.writePlain("\nThe checkpoint was kept; run 'listbridge transfer resume' with the same source to continue.\n")
		return err
	}
	return r.printReport(report, failuresPath)
}

// printProgress renders orchestrator updates as they arrive.
func (r *Runner) printProgress(u tasks.ProgressUpdate) {
	switch u.Phase {
	case tasks.TransferStarted:
		r.writePlain("🚀 %s\n", u.Message)
	case tasks.CreatePlaylist:
		r.writePlain("\n📝 %s\n", u.Message)
	case tasks.MatchTrack, tasks.AutoMap:
		r.writePlain("   %s\n", u.Message)
	case tasks.AddItems:
		r.writePlain("➕ %s\n", u.Message)
	case tasks.SaveCheckpoint:
		r.logger.Debug(u.Message, "processed", u.Step, "total", u.Total)
	case tasks.TransferFailed:
		r.writePlain("\n✗ %s\n", u.Message)
	}
}

func (r *Runner) printReport(report *models.TransferReport, failuresPath string) error {
	matched := report.Processed - len(report.Failures)
	rate := 0.0
	if report.Processed > 0 {
		rate = float64(matched) / float64(report.Processed) * 100
	}

	r.writePlainln("")
	r.writePlainHeader("Transfer Complete!")
	r.writePlain("Run: %s\n", report.RunID)
	r.writePlain("Source: %s → %s\n", report.Source, report.TargetProvider)
	r.writePlain("Success rate: %d/%d (%.1f%%)\n", matched, report.Processed, rate)

	if n := len(report.Failures); n > 0 {
		r.writePlain("\nFailed to match %d tracks:\n", n)
		for _, f := range report.Failures {
			r.writePlain("  - %s - %s\n", strings.Join(f.Track.Artists, ", "), f.Track.Title)
		}
		r.writePlain("\nReview them with 'listbridge match review --to %s'\n", report.TargetProvider)
	}

	if failuresPath != "" {
		if err := formatter.WriteFailuresCSV(report.Failures, failuresPath); err != nil {
			return err
		}
		r.writePlain("Failures written to %s\n", failuresPath)
	}
	return nil
}

// printQuota shows the advisory YouTube budget before a run.
func (r *Runner) printQuota(ctx context.Context, dest services.Provider, tracks int) {
	yt, ok := dest.(*services.YouTubeProvider)
	if !ok {
		return
	}
	u := yt.Quota().Usage(ctx)
	r.writePlain("YouTube quota: %d/%d units used today (%d remaining)\n", u.Used, u.Daily, u.Remaining)

	// One search per track is the floor; the real cost depends on the cache and query fallbacks.
	if need := tracks * services.CostSearchList; need > u.Remaining {
		r.logger.Warn("transfer may exceed today's YouTube quota", "estimated", need, "remaining", u.Remaining)
	}
}

// TransferStatus prints the live checkpoint, if any.
func (r *Runner) TransferStatus(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	cp, err := repositories.NewCheckpointRepository(db).Load(ctx)
	if err != nil {
		return err
	}
	if cp == nil {
		return r.writePlain("No interrupted transfer\n")
	}

	r.writePlainHeader("Interrupted transfer")
	r.writePlain("Run: %s\n", cp.RunID)
	r.writePlain("Progress: %d/%d tracks (%d%%)\n", cp.Processed, cp.Total, cp.Percent())
	if cp.PlaylistID != "" {
		r.writePlain("Last playlist: %s → %s\n", cp.PlaylistID, cp.TargetPlaylistID)
	}
	r.writePlain("Unmatched so far: %d\n", len(cp.Failures))
	r.writePlain("Saved at: %s\n", cp.SavedAt.Local().Format("2006-01-02 15:04:05"))
	r.writePlainln("Run 'listbridge transfer resume' to continue or 'listbridge transfer discard' to start over.")
	return nil
}

// TransferDiscard clears the live checkpoint.
func (r *Runner) TransferDiscard(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}
	if err := repositories.NewCheckpointRepository(db).Clear(ctx); err != nil {
		return err
	}
	r.logger.Info("checkpoint discarded")
	return r.writePlain("✓ Checkpoint discarded\n")
}
