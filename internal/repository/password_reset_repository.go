package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PasswordResetRepository manages single-use reset tokens. A new token
// for an email invalidates earlier unused ones, mirroring the
// verification-code policy. Consume returns the owning email so the
// service can rehash the password; it succeeds at most once per token.
type PasswordResetRepository interface {
	Issue(ctx context.Context, email, token string, expiresAt time.Time) error
	Consume(ctx context.Context, token string) (string, bool, error)
}

type passwordResetRepository struct {
	pool *pgxpool.Pool
}

// NewPasswordResetRepository constructs repository.
func NewPasswordResetRepository(pool *pgxpool.Pool) PasswordResetRepository {
	return &passwordResetRepository{pool: pool}
}

func (r *passwordResetRepository) Issue(ctx context.Context, email, token string, expiresAt time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx,
		`DELETE FROM password_reset_tokens WHERE email=$1 AND used=FALSE`, email); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO password_reset_tokens (email, token, expires_at) VALUES ($1,$2,$3)`,
		email, token, expiresAt); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *passwordResetRepository) Consume(ctx context.Context, token string) (string, bool, error) {
	const query = `
        UPDATE password_reset_tokens SET used=TRUE
        WHERE token=$1 AND used=FALSE AND expires_at > NOW()
        RETURNING email`

	var email string
	err := r.pool.QueryRow(ctx, query, token).Scan(&email)
	if err == pgx.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return email, true, nil
}
