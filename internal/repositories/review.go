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

// ReviewRepository stores tracks waiting for a manual match decision.
type ReviewRepository struct {
	db *sql.DB
}

// NewReviewRepository creates a new ReviewRepository with the given database connection
func NewReviewRepository(db *sql.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Enqueue stores a review. An existing review for the same track and target is
// refreshed in place and keeps its id; the stored id is returned.
func (r *ReviewRepository) Enqueue(ctx context.Context, review models.PendingReview) (string, error) {
	if review.TrackKey == "" || review.TargetProvider == "" {
		return "", fmt.Errorf("%w: review requires a track key and target provider", shared.ErrInvalidInput)
	}
	if review.ID == "" {
		review.ID = shared.GenerateID()
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}
	track, err := encodeJSON(review.Track)
	if err != nil {
		return "", err
	}
	candidates, err := encodeJSON(review.Candidates)
	if err != nil {
		return "", err
	}

	query := `
		INSERT INTO pending_reviews (id, target_provider, track_key, track, candidates, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(target_provider, track_key) DO UPDATE SET
			track = excluded.track,
			candidates = excluded.candidates
	`
	if _, err := r.db.ExecContext(ctx, query, review.ID, review.TargetProvider, review.TrackKey, track, candidates, review.CreatedAt); err != nil {
		return "", fmt.Errorf("failed to enqueue review: %w", err)
	}

	var id string
	err = r.db.QueryRowContext(ctx, "SELECT id FROM pending_reviews WHERE target_provider = ? AND track_key = ?",
		review.TargetProvider, review.TrackKey).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to read review id: %w", err)
	}
	return id, nil
}

// Get retrieves a review by id.
func (r *ReviewRepository) Get(ctx context.Context, id string) (*models.PendingReview, error) {
	query := `
		SELECT id, target_provider, track_key, track, candidates, created_at
		FROM pending_reviews
		WHERE id = ?
	`
	review, err := r.scan(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrReviewNotFound, id)
	}
	return review, err
}

// List returns pending reviews oldest first. An empty targetProvider lists every provider.
func (r *ReviewRepository) List(ctx context.Context, targetProvider string) ([]*models.PendingReview, error) {
	query := `
		SELECT id, target_provider, track_key, track, candidates, created_at
		FROM pending_reviews
	`
	args := []any{}
	if targetProvider != "" {
		query += " WHERE target_provider = ?"
		args = append(args, targetProvider)
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*models.PendingReview
	for rows.Next() {
		review, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return reviews, nil
}

// Count returns the number of pending reviews for targetProvider.
func (r *ReviewRepository) Count(ctx context.Context, targetProvider string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM pending_reviews WHERE target_provider = ?", targetProvider).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count reviews: %w", err)
	}
	return n, nil
}

// Delete removes a review once it has been resolved or skipped.
func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM pending_reviews WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	return expectRows(result, fmt.Errorf("%w: %s", shared.ErrReviewNotFound, id))
}

func (r *ReviewRepository) scan(row rowScanner) (*models.PendingReview, error) {
	var (
		review            models.PendingReview
		track, candidates string
	)
	err := row.Scan(&review.ID, &review.TargetProvider, &review.TrackKey, &track, &candidates, &review.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan review: %w", err)
	}
	if err := decodeJSON(track, &review.Track); err != nil {
		return nil, err
	}
	if err := decodeJSON(candidates, &review.Candidates); err != nil {
		return nil, err
	}
	return &review, nil
}
