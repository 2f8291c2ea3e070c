package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"monetization-backend/internal/domains/promocode/model"
	"monetization-backend/internal/domains/promocode/repository"
	"monetization-backend/internal/infrastructure/realtime"
	"monetization-backend/internal/shared"
	"monetization-backend/internal/shared/apperror"
	"monetization-backend/pkg/cache"
	"monetization-backend/pkg/logger"
)

const usageCacheKeyPrefix = "promocode:usage:"

func usageCacheKey(code string) string {
	return usageCacheKeyPrefix + model.NormalizeCode(code)
}

type Config struct {
	MaxIssueAttempts int
	UsageCacheTTL    time.Duration
}

type PromoCodeService struct {
	repo      repository.Repository
	subs      SubscriptionStats
	cache     cache.Cache
	publisher realtime.Publisher
	generate  CodeGenerator
	cfg       Config
}

func NewPromoCodeService(
	repo repository.Repository,
	subs SubscriptionStats,
	c cache.Cache,
	publisher realtime.Publisher,
	generate CodeGenerator,
	cfg Config,
) *PromoCodeService {
	if cfg.MaxIssueAttempts <= 0 {
		cfg.MaxIssueAttempts = 5
	}
	if cfg.UsageCacheTTL <= 0 {
		cfg.UsageCacheTTL = time.Hour
	}
	return &PromoCodeService{
		repo:      repo,
		subs:      subs,
		cache:     c,
		publisher: publisher,
		generate:  generate,
		cfg:       cfg,
	}
}

var _ ServiceInterface = (*PromoCodeService)(nil)

func (s *PromoCodeService) Create(ctx context.Context, actor shared.Actor, req *model.CreatePromoCodeRequest) (*model.PromoCode, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	// Chuẩn hóa trước khi validate: " amin20 " và "AMIN20" là cùng một mã
	req.Code = model.NormalizeCode(req.Code)
	if err := req.Validate(); err != nil {
		return nil, apperror.FromValidation(err)
	}

	// 1. Duplicate check trước, unique index vẫn là chốt chặn cuối
	if _, err := s.repo.FindByCode(ctx, req.Code); err == nil {
		return nil, model.ErrDuplicateCode
	} else if !errors.Is(err, model.ErrPromoNotFound) {
		return nil, err
	}

	// 2. Chủ mã phải từng là khách hàng đã được duyệt
	eligible, err := s.subs.HasApprovedSubscription(ctx, req.OwnerUserID)
	if err != nil {
		return nil, fmt.Errorf("check owner eligibility: %w", err)
	}
	if !eligible {
		return nil, model.ErrOwnerNotEligible
	}

	promo := model.NewPromoCode(req.Code, req.OwnerUserID, req.OwnerEmail, req.OwnerName)
	if err := s.repo.Create(ctx, promo); err != nil {
		return nil, err
	}

	logger.Info("Promo code created", map[string]interface{}{
		"code":  promo.Code,
		"owner": promo.OwnerUserID,
		"by":    actor.UserID,
	})
	s.publish(ctx, promo, realtime.OpUpsert)
	return promo, nil
}

func (s *PromoCodeService) Issue(ctx context.Context, ownerUserID, ownerEmail, ownerName string) (*model.PromoCode, error) {
	for attempt := 1; attempt <= s.cfg.MaxIssueAttempts; attempt++ {
		code, err := s.generate()
		if err != nil {
			return nil, fmt.Errorf("generate promo code: %w", err)
		}

		promo := model.NewPromoCode(code, ownerUserID, ownerEmail, ownerName)
		err = s.repo.Create(ctx, promo)
		if err == nil {
			logger.Info("Promo code issued", map[string]interface{}{
				"code":    promo.Code,
				"owner":   ownerUserID,
				"attempt": attempt,
			})
			s.publish(ctx, promo, realtime.OpUpsert)
			return promo, nil
		}
		if !errors.Is(err, model.ErrDuplicateCode) {
			return nil, err
		}
		logger.Debug(fmt.Sprintf("promo code collision on %s, attempt %d", promo.Code, attempt))
	}
	return nil, model.ErrIssueExhausted
}

func (s *PromoCodeService) ResolveOwner(ctx context.Context, code string) (*model.PromoCode, error) {
	if model.NormalizeCode(code) == "" {
		return nil, model.ErrPromoNotFound
	}
	return s.repo.FindByCode(ctx, code)
}

// UsageCount đếm trực tiếp từ subscriptions; kết quả chỉ được ghi lại vào cache
func (s *PromoCodeService) UsageCount(ctx context.Context, code string) (int, error) {
	count, err := s.subs.CountApprovedByPromoCode(ctx, code)
	if err != nil {
		return 0, fmt.Errorf("count promo usage: %w", err)
	}
	s.writeBack(ctx, code, count)
	return count, nil
}

func (s *PromoCodeService) writeBack(ctx context.Context, code string, count int) {
	if err := s.cache.Set(ctx, usageCacheKey(code), count, s.cfg.UsageCacheTTL); err != nil {
		logger.Error("Failed to cache promo usage", err)
	}
	if err := s.repo.UpdateUsageCount(ctx, code, count); err != nil {
		logger.Error("Failed to store promo usage", err)
	}
}

func (s *PromoCodeService) InvalidateUsage(ctx context.Context, code string) {
	if code == "" {
		return
	}
	if err := s.cache.Delete(ctx, usageCacheKey(code)); err != nil {
		logger.Error("Failed to invalidate promo usage", err)
	}
}

func (s *PromoCodeService) Delete(ctx context.Context, actor shared.Actor, code string) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}

	promo, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, code); err != nil {
		return err
	}
	s.InvalidateUsage(ctx, code)

	logger.Info("Promo code deleted", map[string]interface{}{"code": promo.Code, "by": actor.UserID})
	s.publish(ctx, promo, realtime.OpDelete)
	return nil
}

// List trả về usage từ cache (hiển thị), fallback về cột usage_count
func (s *PromoCodeService) List(ctx context.Context, actor shared.Actor) ([]model.PromoCodeResponse, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}

	promos, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]model.PromoCodeResponse, 0, len(promos))
	for _, p := range promos {
		usage := p.UsageCount
		var cached int
		if found, err := s.cache.Get(ctx, usageCacheKey(p.Code), &cached); err == nil && found {
			usage = cached
		}
		out = append(out, model.ToResponse(p, usage))
	}
	return out, nil
}

func (s *PromoCodeService) GetByOwner(ctx context.Context, ownerUserID string) ([]*model.PromoCode, error) {
	return s.repo.FindByOwner(ctx, ownerUserID)
}

func (s *PromoCodeService) RecountAll(ctx context.Context) (int, error) {
	promos, err := s.repo.List(ctx)
	if err != nil {
		return 0, err
	}

	refreshed := 0
	for _, p := range promos {
		if ctx.Err() != nil {
			return refreshed, ctx.Err()
		}
		if _, err := s.UsageCount(ctx, p.Code); err != nil {
			logger.Error("Recount failed for "+p.Code, err)
			continue
		}
		refreshed++
	}
	return refreshed, nil
}

func (s *PromoCodeService) publish(ctx context.Context, promo *model.PromoCode, op string) {
	change := realtime.NewChange(realtime.CollectionPromoCodes, promo.Code, promo.OwnerUserID, op, promo)
	if err := s.publisher.Publish(ctx, change); err != nil {
		logger.Error("Failed to publish promo code change", err)
	}
}
