package repository

import (
	"context"

	"github.com/google/uuid"

	"monetization-backend/internal/domains/withdrawal/model"
)

// UpdateFunc mutates the locked row; an error aborts with no write
type UpdateFunc func(w *model.WithdrawalRequest) error

type Repository interface {
	Create(ctx context.Context, w *model.WithdrawalRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.WithdrawalRequest, error)
	Update(ctx context.Context, id uuid.UUID, fn UpdateFunc) (*model.WithdrawalRequest, error)
	ListByUser(ctx context.Context, userID string) ([]*model.WithdrawalRequest, error)
	ListByStatus(ctx context.Context, status model.Status) ([]*model.WithdrawalRequest, error)
}
