// Package account owns operator accounts and is the only writer of stored
// credential hashes. Create, update, and reset always hash with the current
// scheme at the fixed work factor; the legacy scheme is verify-only.
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"keai-wms/backend/internal/account/domain"
	"keai-wms/backend/internal/account/repository"
	"keai-wms/backend/internal/audit"
	auditdomain "keai-wms/backend/internal/audit/domain"
	"keai-wms/backend/internal/identity"
	"keai-wms/backend/internal/security"
)

var (
	// ErrEmailAlreadyRegistered is returned when creating an account with an
	// email that already has one.
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	// ErrAccountNotFound is returned by update and reset for unknown accounts.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInvalidInput wraps validation failures so callers can map them to a
	// client error instead of a storage failure.
	ErrInvalidInput = errors.New("invalid input")
)

// Service creates and mutates operator accounts.
type Service struct {
	repo   repository.Repository
	hasher *security.Hasher
	audit  audit.Logger
}

// NewService returns an account Service. audit may be nil.
func NewService(repo repository.Repository, hasher *security.Hasher, auditLogger audit.Logger) *Service {
	return &Service{repo: repo, hasher: hasher, audit: auditLogger}
}

// Create registers a new account. The email is normalized before storage and
// the password is hashed with the current scheme. Returns the new account ID.
func (s *Service) Create(ctx context.Context, email, name, contactNumber string, roleID int, password string) (string, error) {
	email = identity.Normalize(email)
	if err := identity.ValidateEmail(email); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if password == "" {
		return "", fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return "", ErrEmailAlreadyRegistered
	}
	hash, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()
	a := &domain.Account{
		ID:            uuid.New().String(),
		Email:         email,
		Name:          strings.TrimSpace(name),
		ContactNumber: strings.TrimSpace(contactNumber),
		RoleID:        roleID,
		PasswordHash:  hash,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := a.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return "", err
	}
	if s.audit != nil {
		s.audit.LogEvent(ctx, a.ID, auditdomain.KindAccountCreated, "")
	}
	return a.ID, nil
}

// Update rewrites the account's profile and credential. The email is
// normalized and the password re-hashed with the current scheme.
func (s *Service) Update(ctx context.Context, id, email, name, contactNumber string, roleID int, password string) error {
	email = identity.Normalize(email)
	if err := identity.ValidateEmail(email); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if password == "" {
		return fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if a == nil {
		return ErrAccountNotFound
	}
	if email != a.Email {
		existing, err := s.repo.GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrEmailAlreadyRegistered
		}
	}
	hash, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return err
	}
	a.Email = email
	a.Name = strings.TrimSpace(name)
	a.ContactNumber = strings.TrimSpace(contactNumber)
	a.RoleID = roleID
	a.PasswordHash = hash
	a.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, a); err != nil {
		return err
	}
	if s.audit != nil {
		s.audit.LogEvent(ctx, a.ID, auditdomain.KindAccountUpdated, "")
	}
	return nil
}

// ResetPassword replaces the account's credential with a current-scheme hash
// of password.
func (s *Service) ResetPassword(ctx context.Context, id, password string) error {
	if password == "" {
		return fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if a == nil {
		return ErrAccountNotFound
	}
	hash, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePasswordHash(ctx, id, hash); err != nil {
		return err
	}
	if s.audit != nil {
		s.audit.LogEvent(ctx, id, auditdomain.KindPasswordReset, "")
	}
	return nil
}
