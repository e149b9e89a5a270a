package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/desertthunder/listbridge/internal/formatter"
	"github.com/desertthunder/listbridge/internal/models"
	"github.com/desertthunder/listbridge/internal/repositories"
	"github.com/desertthunder/listbridge/internal/shared"
	"github.com/urfave/cli/v3"
)

// ReportsList prints recent transfer reports, newest first.
func (r *Runner) ReportsList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	reports, err := repositories.NewReportRepository(db).List(ctx, cmd.Int("limit"))
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		return r.writePlain("No transfers completed yet\n")
	}

	rows := make([][]string, 0, len(reports))
	for _, rp := range reports {
		rows = append(rows, []string{
			rp.RunID,
			rp.CompletedAt.Local().Format("2006-01-02 15:04"),
			rp.Source + " → " + rp.TargetProvider,
			strconv.Itoa(rp.Processed),
			strconv.Itoa(len(rp.Failures)),
		})
	}
	return r.writeTable([]string{"Run", "Completed", "Route", "Tracks", "Unmatched"}, rows,
		alignLeft, alignLeft, alignLeft, alignRight, alignRight)
}

// ReportsShow prints one report, optionally as Markdown or JSON, and can export its failures.
func (r *Runner) ReportsShow(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}
	repo := repositories.NewReportRepository(db)

	var report *models.TransferReport
	if id := cmd.StringArg("run-id"); id != "" {
		report, err = repo.Get(ctx, id)
	} else {
		report, err = repo.Latest(ctx)
	}
	if err != nil {
		return err
	}
	if report == nil {
		return fmt.Errorf("%w: no transfer report found", shared.ErrInvalidArgument)
	}

	switch {
	case cmd.Bool("json"):
		if err := r.writeJSON(report, true); err != nil {
			return err
		}
	case cmd.Bool("markdown"):
		if err := r.writePlain("%s", formatter.ReportToMarkdown(report)); err != nil {
			return err
		}
	default:
		if err := r.printReport(report, ""); err != nil {
			return err
		}
	}

	if path := cmd.String("failures"); path != "" {
		if err := formatter.WriteFailuresCSV(report.Failures, path); err != nil {
			return err
		}
		r.logger.Info("failures written", "path", path, "count", len(report.Failures))
	}
	return nil
}
