package repository

import (
	"context"

	"keai-wms/backend/internal/account/domain"
)

// Repository defines persistence for operator accounts. Lookups return
// (nil, nil) when no row matches; errors are reserved for storage failures.
type Repository interface {
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	Create(ctx context.Context, a *domain.Account) error
	Update(ctx context.Context, a *domain.Account) error
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	// Count returns the total number of accounts. Used by the first-run
	// administrator bootstrap.
	Count(ctx context.Context) (int, error)
}
