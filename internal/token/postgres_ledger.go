package token

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresLedger implements Ledger using pgxpool.
type PostgresLedger struct {
	pool *pgxpool.Pool
}

// NewLedger creates a Ledger backed by the given connection pool.
func NewLedger(pool *pgxpool.Pool) Ledger {
	return &PostgresLedger{pool: pool}
}

// RecordIssuance appends a not-expired, not-revoked row for the token.
func (l *PostgresLedger) RecordIssuance(ctx context.Context, userID uuid.UUID, token string) error {
	query := `
		INSERT INTO issued_tokens (user_id, token, type, expired, revoked)
		VALUES ($1, $2, $3, false, false)`

	if _, err := l.pool.Exec(ctx, query, userID, token, TypeBearer); err != nil {
		return fmt.Errorf("inserting issued token: %w", err)
	}
	return nil
}

// RevokeAll marks every currently valid token for the user as expired and
// revoked.
func (l *PostgresLedger) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	query := `
		UPDATE issued_tokens
		SET expired = true, revoked = true
		WHERE user_id = $1 AND expired = false AND revoked = false`

	if _, err := l.pool.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("revoking tokens: %w", err)
	}
	return nil
}

// FindValidByUser returns the user's not-expired, not-revoked tokens.
func (l *PostgresLedger) FindValidByUser(ctx context.Context, userID uuid.UUID) ([]IssuedToken, error) {
	query := `
		SELECT id, user_id, token, type, expired, revoked, issued_at
		FROM issued_tokens
		WHERE user_id = $1 AND expired = false AND revoked = false
		ORDER BY issued_at ASC`

	rows, err := l.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying issued tokens: %w", err)
	}
	defer rows.Close()

	var tokens []IssuedToken
	for rows.Next() {
		var t IssuedToken
		err := rows.Scan(&t.ID, &t.UserID, &t.Token, &t.Type, &t.Expired, &t.Revoked, &t.IssuedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning issued token row: %w", err)
		}
		tokens = append(tokens, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating issued token rows: %w", err)
	}

	return tokens, nil
}
