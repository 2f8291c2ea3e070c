package repository

import (
	"context"

	"monetization-backend/internal/domains/subscription/model"
)

// UpdateFunc mutates the locked record; returning an error aborts without writing
type UpdateFunc func(sub *model.Subscription) error

type Repository interface {
	// Create returns model.ErrSubscriptionExists when a record with the same ID exists
	Create(ctx context.Context, sub *model.Subscription) error
	FindByID(ctx context.Context, id string) (*model.Subscription, error)
	// Update is an atomic read-modify-write of one record (compare-and-swap happens inside fn)
	Update(ctx context.Context, id string, fn UpdateFunc) (*model.Subscription, error)

	ListByStatus(ctx context.Context, status model.Status) ([]*model.Subscription, error)
	ListByCommissionStatus(ctx context.Context, statuses ...model.CommissionStatus) ([]*model.Subscription, error)

	HasApprovedSubscription(ctx context.Context, userID string) (bool, error)
	CountApprovedByPromoCode(ctx context.Context, code string) (int, error)
}
