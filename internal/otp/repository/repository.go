package repository

import (
	"context"
	"time"

	"keai-wms/backend/internal/otp/domain"
)

// Repository defines persistence for OTP challenges. Verification always
// targets the most-recently-issued active challenge for an account; older
// unconsumed rows become unreachable and are garbage-collected on the next
// issuance.
type Repository interface {
	Create(ctx context.Context, c *domain.Challenge) error
	// LatestByAccount returns the most-recently-issued unconsumed challenge
	// for the account, or nil if none exists. Expiry is the caller's check.
	LatestByAccount(ctx context.Context, accountID string) (*domain.Challenge, error)
	IncrementAttempts(ctx context.Context, id string) error
	// MarkConsumed flips the challenge to consumed if and only if it is not
	// already consumed. Returns false when another verification won the race.
	MarkConsumed(ctx context.Context, id string) (bool, error)
	// DeleteExpired removes challenges whose expiry is at or before cutoff.
	DeleteExpired(ctx context.Context, accountID string, cutoff time.Time) error
}

// DefaultTTL is the default OTP challenge expiry.
const DefaultTTL = 300 * time.Second
