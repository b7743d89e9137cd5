package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EmailVerificationRepository manages single-use verification codes.
// Both operations are atomic: Issue replaces all unused rows for the
// email in one transaction, Consume flips the used flag with a
// conditional update whose affected-row count is authoritative.
type EmailVerificationRepository interface {
	Issue(ctx context.Context, email, code string, expiresAt time.Time) error
	Consume(ctx context.Context, email, code string) (bool, error)
}

type emailVerificationRepository struct {
	pool *pgxpool.Pool
}

// NewEmailVerificationRepository constructs repository.
func NewEmailVerificationRepository(pool *pgxpool.Pool) EmailVerificationRepository {
	return &emailVerificationRepository{pool: pool}
}

func (r *emailVerificationRepository) Issue(ctx context.Context, email, code string, expiresAt time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx,
		`DELETE FROM email_verifications WHERE email=$1 AND used=FALSE`, email); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO email_verifications (email, code, expires_at) VALUES ($1,$2,$3)`,
		email, code, expiresAt); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *emailVerificationRepository) Consume(ctx context.Context, email, code string) (bool, error) {
	const query = `
        UPDATE email_verifications SET used=TRUE
        WHERE email=$1 AND code=$2 AND used=FALSE AND expires_at > NOW()`

	cmd, err := r.pool.Exec(ctx, query, email, code)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}
