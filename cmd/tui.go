package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/listbridge/internal/models"
	"github.com/desertthunder/listbridge/internal/repositories"
	"github.com/desertthunder/listbridge/internal/shared"
	"github.com/desertthunder/listbridge/internal/tasks"
	"github.com/desertthunder/listbridge/internal/ui"
)

const defaultTUILog = "./tmp/listbridge-tui.log"

// reviewQueue adapts the review repository and the orchestrator to [ui.Reviewer].
type reviewQueue struct {
	reviews *repositories.ReviewRepository
	orch    *tasks.Orchestrator
	target  string
}

func (q reviewQueue) Pending(ctx context.Context) ([]*models.PendingReview, error) {
	return q.reviews.List(ctx, q.target)
}

func (q reviewQueue) Resolve(ctx context.Context, id string, choice models.Track) error {
	return q.orch.ResolveReview(ctx, id, choice)
}

func (q reviewQueue) Skip(ctx context.Context, id string) error {
	return q.orch.SkipReview(ctx, id)
}

func (r *Runner) reviewQueue(target string) (ui.Reviewer, error) {
	db, err := r.database()
	if err != nil {
		return nil, err
	}
	orch, err := r.orchestrator(nil)
	if err != nil {
		return nil, err
	}
	return reviewQueue{reviews: repositories.NewReviewRepository(db), orch: orch, target: target}, nil
}

// runTUI runs the program with logs redirected to a file so they do not interfere with rendering.
func (r *Runner) runTUI(ctx context.Context, opts ui.Options) (*ui.Model, error) {
	logPath := r.config.Log.File
	if logPath == "" {
		logPath = defaultTUILog
	}
	fileLogger, f, err := shared.NewFileLogger(logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file logger: %w", err)
	}
	defer f.Close()
	fileLogger.SetLevel(r.logger.GetLevel())

	prev := r.logger
	r.SetLogger(fileLogger)
	defer r.SetLogger(prev)

	opts.Thresholds = r.thresholds()
	model := ui.NewModel(ctx, opts)
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return nil, fmt.Errorf("error running TUI: %w", err)
	}
	return model, nil
}

// transferTUI runs req while the TUI renders its progress.
func (r *Runner) transferTUI(ctx context.Context, req tasks.TransferRequest) (*models.TransferReport, error) {
	reviewer, err := r.reviewQueue(req.Target.ProviderName)
	if err != nil {
		return nil, err
	}

	run := func(ctx context.Context, observe tasks.Observer) (*models.TransferReport, error) {
		orch, err := r.orchestrator(observe)
		if err != nil {
			return nil, err
		}
		return orch.TransferCollection(ctx, req)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model, err := r.runTUI(ctx, ui.Options{Reviewer: reviewer, Transfer: run})
	if err != nil {
		return nil, err
	}
	if err := model.Err(); err != nil {
		return nil, err
	}
	return model.Report(), nil
}
