package repository

import (
	"context"

	"monetization-backend/internal/domains/promocode/model"
)

// Repository persists promo codes. Codes are compared after NormalizeCode.
type Repository interface {
	// Create returns model.ErrDuplicateCode when the normalized code exists
	Create(ctx context.Context, promo *model.PromoCode) error
	FindByCode(ctx context.Context, code string) (*model.PromoCode, error)
	FindByOwner(ctx context.Context, ownerUserID string) ([]*model.PromoCode, error)
	List(ctx context.Context) ([]*model.PromoCode, error)
	Delete(ctx context.Context, code string) error
	// UpdateUsageCount overwrites the cached counter column
	UpdateUsageCount(ctx context.Context, code string, count int) error
}
