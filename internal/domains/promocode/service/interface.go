package service

import (
	"context"

	"monetization-backend/internal/domains/promocode/model"
	"monetization-backend/internal/shared"
)

// SubscriptionStats is the read side of subscriptions the registry needs.
// Implemented by the subscription repository.
type SubscriptionStats interface {
	HasApprovedSubscription(ctx context.Context, userID string) (bool, error)
	CountApprovedByPromoCode(ctx context.Context, code string) (int, error)
}

type ServiceInterface interface {
	// Admin
	Create(ctx context.Context, actor shared.Actor, req *model.CreatePromoCodeRequest) (*model.PromoCode, error)
	Delete(ctx context.Context, actor shared.Actor, code string) error
	List(ctx context.Context, actor shared.Actor) ([]model.PromoCodeResponse, error)

	// Pipeline: random code, no eligibility check
	Issue(ctx context.Context, ownerUserID, ownerEmail, ownerName string) (*model.PromoCode, error)

	ResolveOwner(ctx context.Context, code string) (*model.PromoCode, error)
	UsageCount(ctx context.Context, code string) (int, error)
	InvalidateUsage(ctx context.Context, code string)
	GetByOwner(ctx context.Context, ownerUserID string) ([]*model.PromoCode, error)

	// RecountAll refreshes the cached usage of every code, returns how many were refreshed
	RecountAll(ctx context.Context) (int, error)
}
