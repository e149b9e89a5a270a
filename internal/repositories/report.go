package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/listbridge/internal/models"
)

// ReportRepository stores completed transfer reports.
type ReportRepository struct {
	db *sql.DB
}

// NewReportRepository creates a new ReportRepository with the given database connection
func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Save inserts or replaces the report for its run.
func (r *ReportRepository) Save(ctx context.Context, report models.TransferReport) error {
	failures, err := encodeJSON(nonNilFailures(report.Failures))
	if err != nil {
		return err
	}
	completedAt := report.CompletedAt
	if completedAt.IsZero() {
		completedAt = time.Now().UTC()
	}

	query := `
		INSERT OR REPLACE INTO transfer_reports (run_id, source, target_provider, processed, total, failures, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query, report.RunID, report.Source, report.TargetProvider, report.Processed, report.Total, failures, completedAt)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// Get retrieves a report by run id.
func (r *ReportRepository) Get(ctx context.Context, runID string) (*models.TransferReport, error) {
	query := `
		SELECT run_id, source, target_provider, processed, total, failures, completed_at
		FROM transfer_reports
		WHERE run_id = ?
	`
	report, err := r.scan(r.db.QueryRowContext(ctx, query, runID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("report not found: %s", runID)
	}
	return report, err
}

// Latest returns the most recently completed report, or nil when none exist.
func (r *ReportRepository) Latest(ctx context.Context) (*models.TransferReport, error) {
	reports, err := r.List(ctx, 1)
	if err != nil || len(reports) == 0 {
		return nil, err
	}
	return reports[0], nil
}

// List returns reports newest first. A non-positive limit returns all of them.
func (r *ReportRepository) List(ctx context.Context, limit int) ([]*models.TransferReport, error) {
	query := `
		SELECT run_id, source, target_provider, processed, total, failures, completed_at
		FROM transfer_reports
		ORDER BY completed_at DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var reports []*models.TransferReport
	for rows.Next() {
		report, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return reports, nil
}

func (r *ReportRepository) scan(row rowScanner) (*models.TransferReport, error) {
	var (
		report   models.TransferReport
		failures string
	)
	err := row.Scan(&report.RunID, &report.Source, &report.TargetProvider, &report.Processed, &report.Total, &failures, &report.CompletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan report: %w", err)
	}
	if err := decodeJSON(failures, &report.Failures); err != nil {
		return nil, err
	}
	return &report, nil
}
