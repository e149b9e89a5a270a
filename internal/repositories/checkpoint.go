package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/listbridge/internal/models"
	"github.com/desertthunder/listbridge/internal/shared"
)

// CheckpointRepository stores the single live transfer checkpoint.
type CheckpointRepository struct {
	db *sql.DB
}

// NewCheckpointRepository creates a new CheckpointRepository with the given database connection
func NewCheckpointRepository(db *sql.DB) *CheckpointRepository {
	return &CheckpointRepository{db: db}
}

// Save overwrites the live checkpoint.
func (r *CheckpointRepository) Save(ctx context.Context, cp models.TransferCheckpoint) error {
	failures, err := encodeJSON(nonNilFailures(cp.Failures))
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrCheckpoint, err)
	}
	savedAt := cp.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO transfer_checkpoints (id, run_id, playlist_id, target_playlist_id, processed, total, failures, saved_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			run_id = excluded.run_id,
			playlist_id = excluded.playlist_id,
			target_playlist_id = excluded.target_playlist_id,
			processed = excluded.processed,
			total = excluded.total,
			failures = excluded.failures,
			saved_at = excluded.saved_at
	`
	_, err = r.db.ExecContext(ctx, query, cp.RunID, cp.PlaylistID, cp.TargetPlaylistID, cp.Processed, cp.Total, failures, savedAt)
	if err != nil {
		return fmt.Errorf("%w: failed to save checkpoint: %w", shared.ErrCheckpoint, err)
	}
	return nil
}

// Load returns the live checkpoint, or nil when there is none.
func (r *CheckpointRepository) Load(ctx context.Context) (*models.TransferCheckpoint, error) {
	query := `
		SELECT run_id, playlist_id, target_playlist_id, processed, total, failures, saved_at
		FROM transfer_checkpoints
		WHERE id = 1
	`
	var (
		cp       models.TransferCheckpoint
		failures string
	)
	err := r.db.QueryRowContext(ctx, query).Scan(&cp.RunID, &cp.PlaylistID, &cp.TargetPlaylistID, &cp.Processed, &cp.Total, &failures, &cp.SavedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load checkpoint: %w", shared.ErrCheckpoint, err)
	}
	if err := decodeJSON(failures, &cp.Failures); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrCheckpoint, err)
	}
	return &cp, nil
}

// Clear removes the live checkpoint. Clearing an empty store is not an error.
func (r *CheckpointRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM transfer_checkpoints WHERE id = 1"); err != nil {
		return fmt.Errorf("%w: failed to clear checkpoint: %w", shared.ErrCheckpoint, err)
	}
	return nil
}

func nonNilFailures(f []models.FailureRecord) []models.FailureRecord {
	if f == nil {
		return []models.FailureRecord{}
	}
	return f
}
