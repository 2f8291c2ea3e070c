package service

import (
	"context"

	promomodel "monetization-backend/internal/domains/promocode/model"
	"monetization-backend/internal/domains/subscription/model"
	"monetization-backend/internal/shared"
)

// ApprovalHook is notified after a subscription becomes approved (commission computation)
type ApprovalHook interface {
	OnSubscriptionApproved(ctx context.Context, subscriptionID string) error
}

// PromoRegistry is the part of the promo-code registry subscriptions use
type PromoRegistry interface {
	ResolveOwner(ctx context.Context, code string) (*promomodel.PromoCode, error)
	InvalidateUsage(ctx context.Context, code string)
}

type ServiceInterface interface {
	Submit(ctx context.Context, actor shared.Actor, req *model.SubmitSubscriptionRequest) (*model.Subscription, error)
	GetMine(ctx context.Context, actor shared.Actor) (*model.Subscription, error)

	// Admin
	Approve(ctx context.Context, actor shared.Actor, id string) (*model.ApproveResult, error)
	Reject(ctx context.Context, actor shared.Actor, id string) (*model.Subscription, error)
	GrantManual(ctx context.Context, actor shared.Actor, req *model.GrantManualRequest) (*model.Subscription, error)
	ListPending(ctx context.Context, actor shared.Actor) ([]*model.Subscription, error)
}
