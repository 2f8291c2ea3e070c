package repository

import (
	"context"

	"monetization-backend/internal/domains/ambassador/model"
)

// UpdateFunc mutates the locked document; an error aborts with no write
type UpdateFunc func(app *model.Application) error

type Repository interface {
	FindByUserID(ctx context.Context, userID string) (*model.Application, error)
	// Update is an atomic read-modify-write of one document. A missing document
	// starts from model.NewApplication and is only created if fn succeeds.
	Update(ctx context.Context, userID string, fn UpdateFunc) (*model.Application, error)
	ListByStatus(ctx context.Context, status model.Status) ([]*model.Application, error)
	// ListWithLedger returns every document that has ledger history
	ListWithLedger(ctx context.Context) ([]*model.Application, error)
}
