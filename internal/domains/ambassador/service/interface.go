package service

import (
	"context"

	"monetization-backend/internal/domains/ambassador/model"
	promomodel "monetization-backend/internal/domains/promocode/model"
	"monetization-backend/internal/shared"
)

// PromoIssuer is the part of the promo-code registry the pipeline uses
type PromoIssuer interface {
	Issue(ctx context.Context, ownerUserID, ownerEmail, ownerName string) (*promomodel.PromoCode, error)
	GetByOwner(ctx context.Context, ownerUserID string) ([]*promomodel.PromoCode, error)
	UsageCount(ctx context.Context, code string) (int, error)
	Delete(ctx context.Context, actor shared.Actor, code string) error
}

type ServiceInterface interface {
	// Ambassador
	SubmitPayment(ctx context.Context, actor shared.Actor, req *model.SubmitPaymentRequest) (*model.Application, error)
	SubmitSocialHandle(ctx context.Context, actor shared.Actor, req *model.SubmitSocialRequest) (*model.SocialSubmitResult, error)
	SubmitIdentity(ctx context.Context, actor shared.Actor, req *model.SubmitIdentityRequest) (*model.Application, error)
	Get(ctx context.Context, actor shared.Actor, userID string) (*model.Application, error)
	Dashboard(ctx context.Context, actor shared.Actor) (*model.Dashboard, error)
	PromoCode(ctx context.Context, actor shared.Actor) (*model.PromoCodeView, error)

	// Admin
	ApprovePayment(ctx context.Context, actor shared.Actor, userID string) (*model.Application, error)
	ApproveSocialPlatform(ctx context.Context, actor shared.Actor, userID, platform string) (*model.Application, error)
	RejectSocialPlatform(ctx context.Context, actor shared.Actor, userID, platform string) (*model.Application, error)
	ApproveSocial(ctx context.Context, actor shared.Actor, userID string) (*model.Application, error)
	ApproveIdentity(ctx context.Context, actor shared.Actor, userID string) (*model.Application, error)
	Activate(ctx context.Context, actor shared.Actor, userID string, termsAccepted bool) (*model.ActivationResult, error)
	ListPending(ctx context.Context, actor shared.Actor) ([]*model.Application, error)
}
