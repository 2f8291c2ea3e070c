package service

import (
	"context"
	"errors"
	"strings"
	"time"

	promomodel "monetization-backend/internal/domains/promocode/model"
	"monetization-backend/internal/domains/subscription/model"
	"monetization-backend/internal/domains/subscription/repository"
	"monetization-backend/internal/infrastructure/realtime"
	"monetization-backend/internal/shared"
	"monetization-backend/internal/shared/apperror"
	"monetization-backend/pkg/logger"
)

type SubscriptionService struct {
	repo      repository.Repository
	promos    PromoRegistry
	hook      ApprovalHook
	publisher realtime.Publisher
	now       func() time.Time
}

func NewSubscriptionService(
	repo repository.Repository,
	promos PromoRegistry,
	hook ApprovalHook,
	publisher realtime.Publisher,
) *SubscriptionService {
	return &SubscriptionService{
		repo:      repo,
		promos:    promos,
		hook:      hook,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

var _ ServiceInterface = (*SubscriptionService)(nil)

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Submit tạo (hoặc nộp lại sau khi bị từ chối) gói đăng ký của chính actor
func (s *SubscriptionService) Submit(ctx context.Context, actor shared.Actor, req *model.SubmitSubscriptionRequest) (*model.Subscription, error) {
	if err := actor.RequireUser(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, apperror.FromValidation(err)
	}
	if !model.ParseAmount(req.Amount).IsPositive() {
		return nil, model.ErrInvalidAmount
	}

	var promoCode *string
	if code := promomodel.NormalizeCode(req.PromoCode); code != "" {
		promo, err := s.promos.ResolveOwner(ctx, code)
		if err != nil {
			if errors.Is(err, promomodel.ErrPromoNotFound) {
				return nil, model.ErrInvalidPromoCode
			}
			return nil, err
		}
		if promo.OwnerUserID == actor.UserID {
			return nil, model.ErrSelfReferral
		}
		promoCode = &code
	}

	now := s.now()
	sub := &model.Subscription{
		ID:         actor.UserID,
		UserEmail:  actor.Email,
		UserName:   strings.TrimSpace(req.UserName),
		SchoolName: optional(req.SchoolName),
		ClassName:  optional(req.ClassName),
		Amount:     strings.TrimSpace(req.Amount),
		Status:     model.StatusPending,
		PromoCode:  promoCode,
		Commission: model.NoCommission(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	fresh := *sub
	err := s.repo.Create(ctx, sub)
	if errors.Is(err, model.ErrSubscriptionExists) {
		// Chỉ cho nộp lại khi bản cũ đã bị từ chối
		sub, err = s.repo.Update(ctx, actor.UserID, func(existing *model.Subscription) error {
			if existing.Status != model.StatusRejected {
				return model.ErrSubscriptionExists
			}
			createdAt := existing.CreatedAt
			*existing = fresh
			existing.CreatedAt = createdAt
			return nil
		})
	}
	if err != nil {
		return nil, err
	}

	logger.Info("Subscription submitted", map[string]interface{}{
		"user_id":    sub.ID,
		"promo_code": sub.PromoCodeValue(),
	})
	s.publish(ctx, sub)
	return sub, nil
}

func (s *SubscriptionService) GetMine(ctx context.Context, actor shared.Actor) (*model.Subscription, error) {
	if err := actor.RequireUser(); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, actor.UserID)
}

// Approve: CAS pending→approved. Hook errors are logged and never undo the approval.
func (s *SubscriptionService) Approve(ctx context.Context, actor shared.Actor, id string) (*model.ApproveResult, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}

	sub, err := s.repo.Update(ctx, id, func(sub *model.Subscription) error {
		return sub.Approve(s.now())
	})
	if errors.Is(err, model.ErrAlreadyApproved) {
		current, findErr := s.repo.FindByID(ctx, id)
		if findErr != nil {
			return nil, findErr
		}
		return &model.ApproveResult{Subscription: current, AlreadyApproved: true}, nil
	}
	if err != nil {
		return nil, err
	}

	logger.Info("Subscription approved", map[string]interface{}{"id": id, "by": actor.UserID})
	s.publish(ctx, sub)

	if code := sub.PromoCodeValue(); code != "" {
		s.promos.InvalidateUsage(ctx, code)
		if err := s.hook.OnSubscriptionApproved(ctx, id); err != nil {
			logger.Error("Commission hook failed for subscription "+id, err)
		}
		// Đọc lại để trả về trạng thái commission mới nhất
		if latest, err := s.repo.FindByID(ctx, id); err == nil {
			sub = latest
		}
	}

	return &model.ApproveResult{Subscription: sub}, nil
}

func (s *SubscriptionService) Reject(ctx context.Context, actor shared.Actor, id string) (*model.Subscription, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}

	sub, err := s.repo.Update(ctx, id, func(sub *model.Subscription) error {
		return sub.Reject(s.now())
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Subscription rejected", map[string]interface{}{"id": id, "by": actor.UserID})
	s.publish(ctx, sub)
	return sub, nil
}

// GrantManual: gói do admin cấp, không có promo code nên không phát sinh hoa hồng
func (s *SubscriptionService) GrantManual(ctx context.Context, actor shared.Actor, req *model.GrantManualRequest) (*model.Subscription, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, apperror.FromValidation(err)
	}

	now := s.now()
	manual := &model.Subscription{
		ID:         req.UserID,
		UserEmail:  req.UserEmail,
		UserName:   req.UserName,
		Amount:     req.Amount,
		Status:     model.StatusApproved,
		IsManual:   true,
		Commission: model.NoCommission(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := s.repo.Create(ctx, manual)
	if errors.Is(err, model.ErrSubscriptionExists) {
		manual, err = s.repo.Update(ctx, req.UserID, func(existing *model.Subscription) error {
			if existing.Status == model.StatusApproved {
				return model.ErrAlreadyApproved
			}
			existing.Status = model.StatusApproved
			existing.IsManual = true
			existing.PromoCode = nil
			existing.UpdatedAt = now
			if req.Amount != "" {
				existing.Amount = req.Amount
			}
			return nil
		})
	}
	if err != nil {
		return nil, err
	}

	logger.Info("Manual subscription granted", map[string]interface{}{"user_id": req.UserID, "by": actor.UserID})
	s.publish(ctx, manual)
	return manual, nil
}

func (s *SubscriptionService) ListPending(ctx context.Context, actor shared.Actor) ([]*model.Subscription, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	return s.repo.ListByStatus(ctx, model.StatusPending)
}

func (s *SubscriptionService) publish(ctx context.Context, sub *model.Subscription) {
	change := realtime.NewChange(realtime.CollectionSubscriptions, sub.ID, sub.ID, realtime.OpUpsert, sub)
	if err := s.publisher.Publish(ctx, change); err != nil {
		logger.Error("Failed to publish subscription change", err)
	}
}
