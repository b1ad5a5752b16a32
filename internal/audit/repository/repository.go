package repository

import (
	"context"

	"keai-wms/backend/internal/audit/domain"
)

// Repository defines persistence for audit events.
type Repository interface {
	Create(ctx context.Context, e *domain.Event) error
	// ListByAccount returns events for the account, newest first, paginated.
	ListByAccount(ctx context.Context, accountID string, limit, offset int32) ([]*domain.Event, error)
}
