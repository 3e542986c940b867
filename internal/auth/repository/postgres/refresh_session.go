package postgres

import (
	"context"
	"fmt"
)

// Upsert makes token the single refresh token of userID. Concurrent writers
// resolve by last commit wins.
func (r *PostgresRepository) Upsert(ctx context.Context, userID, token string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO refresh_sessions (user_id, token, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id)
		DO UPDATE SET
			token = EXCLUDED.token,
			updated_at = now()
	`, userID, token)
	if err != nil {
		return fmt.Errorf("failed to upsert refresh token: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindExact(ctx context.Context, userID, token string) (bool, error) {
	var found bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM refresh_sessions WHERE user_id = $1 AND token = $2)`,
		userID, token,
	).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("failed to find refresh token: %w", err)
	}
	return found, nil
}

// DeleteByToken removes the session holding token, if any.
func (r *PostgresRepository) DeleteByToken(ctx context.Context, token string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM refresh_sessions WHERE token = $1`, token); err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return nil
}
