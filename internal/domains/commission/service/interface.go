package service

import (
	"context"

	"monetization-backend/internal/domains/commission/model"
	promomodel "monetization-backend/internal/domains/promocode/model"
	"monetization-backend/internal/shared"
)

type PromoResolver interface {
	ResolveOwner(ctx context.Context, code string) (*promomodel.PromoCode, error)
}

// ReconcileEnqueuer hands a failed credit to the worker
type ReconcileEnqueuer interface {
	EnqueueReconcile(ctx context.Context, reason string) error
}

type ServiceInterface interface {
	// OnSubscriptionApproved computes the pending commission; dangling codes abort silently
	OnSubscriptionApproved(ctx context.Context, subscriptionID string) error

	// Admin
	Deduct(ctx context.Context, actor shared.Actor, subscriptionID string) (*model.DeductResult, error)
	DeductBatch(ctx context.Context, actor shared.Actor, subscriptionIDs []string) ([]model.DeductResult, error)
	Release(ctx context.Context, actor shared.Actor, subscriptionID string) (*model.ReleaseResult, error)
	GrossPlatformEarnings(ctx context.Context, actor shared.Actor) (*model.GrossEarnings, error)

	// Reconcile credits released commissions missing from the owner's history
	Reconcile(ctx context.Context) (*model.ReconcileReport, error)
}
