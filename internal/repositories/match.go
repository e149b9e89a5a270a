package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/listbridge/internal/models"
)

// MatchRepository stores accepted source-to-target track mappings.
type MatchRepository struct {
	db *sql.DB
}

// NewMatchRepository creates a new MatchRepository with the given database connection
func NewMatchRepository(db *sql.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// Save records a decision, replacing any earlier one for the same key and target.
func (r *MatchRepository) Save(ctx context.Context, d models.MatchDecision) error {
	if d.TrackKey == "" || d.TargetProvider == "" {
		return fmt.Errorf("match decision requires a track key and target provider")
	}
	target, err := encodeJSON(d.Target)
	if err != nil {
		return err
	}
	decidedAt := d.DecidedAt
	if decidedAt.IsZero() {
		decidedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO match_decisions (target_provider, track_key, source_provider, target_track, score, manual, decided_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(target_provider, track_key) DO UPDATE SET
			source_provider = excluded.source_provider,
			target_track = excluded.target_track,
			score = excluded.score,
			manual = excluded.manual,
			decided_at = excluded.decided_at
	`
	_, err = r.db.ExecContext(ctx, query, d.TargetProvider, d.TrackKey, d.SourceProvider, target, d.Score, d.Manual, decidedAt)
	if err != nil {
		return fmt.Errorf("failed to save match decision: %w", err)
	}
	return nil
}

// Get retrieves the decision for key on targetProvider.
func (r *MatchRepository) Get(ctx context.Context, targetProvider, key string) (*models.MatchDecision, error) {
	query := `
		SELECT target_provider, track_key, source_provider, target_track, score, manual, decided_at
		FROM match_decisions
		WHERE target_provider = ? AND track_key = ?
	`
	d, err := r.scan(r.db.QueryRowContext(ctx, query, targetProvider, key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("match decision not found: %s", key)
	}
	return d, err
}

// List returns every decision for targetProvider ordered by decision time.
func (r *MatchRepository) List(ctx context.Context, targetProvider string) ([]*models.MatchDecision, error) {
	query := `
		SELECT target_provider, track_key, source_provider, target_track, score, manual, decided_at
		FROM match_decisions
		WHERE target_provider = ?
		ORDER BY decided_at ASC, track_key ASC
	`
	rows, err := r.db.QueryContext(ctx, query, targetProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to query match decisions: %w", err)
	}
	defer rows.Close()

	var decisions []*models.MatchDecision
	for rows.Next() {
		d, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		decisions = append(decisions, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return decisions, nil
}

// Book loads every decision for targetProvider into a [models.MatchBook].
func (r *MatchRepository) Book(ctx context.Context, targetProvider string) (models.MatchBook, error) {
	decisions, err := r.List(ctx, targetProvider)
	if err != nil {
		return nil, err
	}
	book := make(models.MatchBook, len(decisions))
	for _, d := range decisions {
		book[d.TrackKey] = d.Target
	}
	return book, nil
}

// Delete forgets a decision so the track is matched again on the next run.
func (r *MatchRepository) Delete(ctx context.Context, targetProvider, key string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM match_decisions WHERE target_provider = ? AND track_key = ?", targetProvider, key)
	if err != nil {
		return fmt.Errorf("failed to delete match decision: %w", err)
	}
	return expectRows(result, fmt.Errorf("match decision not found: %s", key))
}

func (r *MatchRepository) scan(row rowScanner) (*models.MatchDecision, error) {
	var (
		d      models.MatchDecision
		target string
	)
	err := row.Scan(&d.TargetProvider, &d.TrackKey, &d.SourceProvider, &target, &d.Score, &d.Manual, &d.DecidedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan match decision: %w", err)
	}
	if err := decodeJSON(target, &d.Target); err != nil {
		return nil, err
	}
	return &d, nil
}
