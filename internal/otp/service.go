// Package otp issues and verifies one-time-password challenges: short-lived
// 6-digit codes, bcrypt-hashed at rest, attempt-capped and single-use.
package otp

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"keai-wms/backend/internal/devotp"
	"keai-wms/backend/internal/mail"
	"keai-wms/backend/internal/otp/domain"
	"keai-wms/backend/internal/otp/repository"
	"keai-wms/backend/internal/security"
)

// MaxAttempts is the number of wrong codes a single challenge tolerates.
// The cap check runs before the code comparison, so an exhausted challenge
// can never verify even with the correct code.
const MaxAttempts = 3

// Result is the outcome of a verification attempt. Only the enum leaves the
// package; callers never see challenge internals.
type Result int

const (
	// ResultSuccess means the code matched an active challenge, which is now consumed.
	ResultSuccess Result = iota
	// ResultExpired means no active challenge exists (none issued, expired,
	// or already consumed). The login must be restarted.
	ResultExpired
	// ResultInvalid means the code did not match; retry is allowed up to the cap.
	ResultInvalid
	// ResultAttemptsExceeded means the challenge is exhausted. Hard stop; the
	// login must be restarted.
	ResultAttemptsExceeded
)

func (r Result) String() string {
	switch r {
	case ResultSuccess:
		return "success"
	case ResultExpired:
		return "expired"
	case ResultInvalid:
		return "invalid"
	case ResultAttemptsExceeded:
		return "attempts_exceeded"
	default:
		return "unknown"
	}
}

// Service issues, delivers, and verifies OTP challenges for accounts.
type Service struct {
	repo        repository.Repository
	hasher      *security.Hasher
	sender      mail.Sender
	devStore    devotp.Store // nil outside dev OTP mode
	ttl         time.Duration
	maxAttempts int
	nowF        func() time.Time
}

// NewService returns an OTP Service. sender may not be nil; devStore may be
// nil (production). Non-positive ttl falls back to repository.DefaultTTL.
func NewService(repo repository.Repository, hasher *security.Hasher, sender mail.Sender, devStore devotp.Store, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = repository.DefaultTTL
	}
	return &Service{
		repo:        repo,
		hasher:      hasher,
		sender:      sender,
		devStore:    devStore,
		ttl:         ttl,
		maxAttempts: MaxAttempts,
		nowF:        time.Now,
	}
}

// Issue creates a challenge for the account and hands the plaintext code to
// the delivery collaborator. Returns the challenge ID. The code itself is
// never persisted or logged; delivery runs fire-and-forget and a failed send
// does not roll back the issuance. Expired challenges for the account are
// garbage-collected here.
func (s *Service) Issue(ctx context.Context, accountID, email string) (string, error) {
	now := s.nowF().UTC()
	if err := s.repo.DeleteExpired(ctx, accountID, now); err != nil {
		log.Printf("otp: expired-challenge GC for account %s: %v", accountID, err)
	}

	code, err := GenerateCode()
	if err != nil {
		return "", err
	}
	hash, err := s.hasher.Hash([]byte(code))
	if err != nil {
		return "", err
	}
	c := &domain.Challenge{
		ID:        uuid.New().String(),
		AccountID: accountID,
		CodeHash:  hash,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return "", err
	}

	if s.devStore != nil {
		s.devStore.Put(ctx, c.ID, code, c.ExpiresAt)
	}
	go func() {
		if err := s.sender.SendCode(context.Background(), email, code); err != nil {
			log.Printf("otp: delivery to %s failed: %v", email, err)
		}
	}()
	return c.ID, nil
}

// Verify checks the submitted code against the account's latest active
// challenge. Checks run in a fixed order regardless of the submitted code:
// no active record, then expiry, then the attempt cap, and only then the
// code comparison. A consumed challenge never verifies again. The rejection
// that reaches the cap reports ResultAttemptsExceeded, not ResultInvalid.
func (s *Service) Verify(ctx context.Context, accountID, submitted string) (Result, error) {
	now := s.nowF().UTC()
	c, err := s.repo.LatestByAccount(ctx, accountID)
	if err != nil {
		return ResultExpired, err
	}
	if c == nil || c.Consumed {
		return ResultExpired, nil
	}
	if now.After(c.ExpiresAt) {
		return ResultExpired, nil
	}
	if c.AttemptCount >= s.maxAttempts {
		return ResultAttemptsExceeded, nil
	}
	if err := s.hasher.Compare(c.CodeHash, []byte(submitted)); err != nil {
		if err := s.repo.IncrementAttempts(ctx, c.ID); err != nil {
			return ResultInvalid, err
		}
		if c.AttemptCount+1 >= s.maxAttempts {
			return ResultAttemptsExceeded, nil
		}
		return ResultInvalid, nil
	}
	consumed, err := s.repo.MarkConsumed(ctx, c.ID)
	if err != nil {
		// Refuse success on partial state; the challenge stays verifiable.
		return ResultExpired, err
	}
	if !consumed {
		// A concurrent verification consumed the challenge first.
		return ResultExpired, nil
	}
	return ResultSuccess, nil
}
