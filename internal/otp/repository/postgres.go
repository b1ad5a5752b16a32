package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"keai-wms/backend/internal/otp/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an OTP challenge repository that uses the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the challenge. The challenge must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, c *domain.Challenge) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO otp_challenges (id, account_id, code_hash, issued_at, expires_at, attempt_count, consumed)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.AccountID, c.CodeHash, c.IssuedAt, c.ExpiresAt, c.AttemptCount, c.Consumed)
	return err
}

// LatestByAccount returns the most-recently-issued unconsumed challenge for
// the account, or nil if none exists.
func (r *PostgresRepository) LatestByAccount(ctx context.Context, accountID string) (*domain.Challenge, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, account_id, code_hash, issued_at, expires_at, attempt_count, consumed
		 FROM otp_challenges
		 WHERE account_id = $1 AND NOT consumed
		 ORDER BY issued_at DESC
		 LIMIT 1`, accountID)
	var c domain.Challenge
	err := row.Scan(&c.ID, &c.AccountID, &c.CodeHash, &c.IssuedAt, &c.ExpiresAt, &c.AttemptCount, &c.Consumed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// IncrementAttempts adds one failed verification attempt to the challenge.
func (r *PostgresRepository) IncrementAttempts(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE otp_challenges SET attempt_count = attempt_count + 1 WHERE id = $1`, id)
	return err
}

// MarkConsumed marks the challenge consumed. The NOT consumed guard makes
// the write a compare-and-set, so of two concurrent verifications exactly
// one observes the flip.
func (r *PostgresRepository) MarkConsumed(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE otp_challenges SET consumed = TRUE WHERE id = $1 AND NOT consumed`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteExpired removes the account's challenges whose expiry is at or
// before cutoff.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, accountID string, cutoff time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM otp_challenges WHERE account_id = $1 AND expires_at <= $2`, accountID, cutoff)
	return err
}
