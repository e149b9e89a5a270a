package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
)

// TokenRepository persists OAuth tokens per provider. It satisfies services.TokenStore.
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new TokenRepository with the given database connection
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// SaveToken stores token for provider. A refresh without a new refresh token keeps the old one.
func (r *TokenRepository) SaveToken(ctx context.Context, provider string, token *oauth2.Token) error {
	if token == nil {
		return fmt.Errorf("nil token for %s", provider)
	}
	var expiry any
	if !token.Expiry.IsZero() {
		expiry = token.Expiry.UTC()
	}

	query := `
		INSERT INTO oauth_tokens (provider, access_token, refresh_token, token_type, expiry, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(provider) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = CASE WHEN excluded.refresh_token = '' THEN oauth_tokens.refresh_token ELSE excluded.refresh_token END,
			token_type = excluded.token_type,
			expiry = excluded.expiry,
			updated_at = CURRENT_TIMESTAMP
	`
	_, err := r.db.ExecContext(ctx, query, provider, token.AccessToken, token.RefreshToken, token.TokenType, expiry)
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// LoadToken returns the stored token, or nil when the provider was never authorized.
func (r *TokenRepository) LoadToken(ctx context.Context, provider string) (*oauth2.Token, error) {
	var (
		token  oauth2.Token
		expiry sql.NullTime
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT access_token, refresh_token, token_type, expiry FROM oauth_tokens WHERE provider = ?", provider,
	).Scan(&token.AccessToken, &token.RefreshToken, &token.TokenType, &expiry)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load token: %w", err)
	}
	if expiry.Valid {
		token.Expiry = expiry.Time
	}
	return &token, nil
}

// DeleteToken forgets the provider's credentials.
func (r *TokenRepository) DeleteToken(ctx context.Context, provider string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM oauth_tokens WHERE provider = ?", provider); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// Providers lists providers with stored tokens.
func (r *TokenRepository) Providers(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT provider FROM oauth_tokens ORDER BY provider")
	if err != nil {
		return nil, fmt.Errorf("failed to query tokens: %w", err)
	}
	defer rows.Close()

	var providers []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan provider: %w", err)
		}
		providers = append(providers, p)
	}
	return providers, rows.Err()
}

// QuotaRepository persists YouTube unit usage per day. It satisfies services.QuotaStore.
type QuotaRepository struct {
	db *sql.DB
}

// NewQuotaRepository creates a new QuotaRepository with the given database connection
func NewQuotaRepository(db *sql.DB) *QuotaRepository {
	return &QuotaRepository{db: db}
}

// AddQuota adds units to day's total.
func (r *QuotaRepository) AddQuota(ctx context.Context, day string, units int) error {
	query := `
		INSERT INTO quota_usage (day, used) VALUES (?, ?)
		ON CONFLICT(day) DO UPDATE SET used = quota_usage.used + excluded.used
	`
	if _, err := r.db.ExecContext(ctx, query, day, units); err != nil {
		return fmt.Errorf("failed to record quota: %w", err)
	}
	return nil
}

// QuotaUsed returns day's total, 0 when nothing was recorded.
func (r *QuotaRepository) QuotaUsed(ctx context.Context, day string) (int, error) {
	var used int
	err := r.db.QueryRowContext(ctx, "SELECT used FROM quota_usage WHERE day = ?", day).Scan(&used)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read quota: %w", err)
	}
	return used, nil
}
