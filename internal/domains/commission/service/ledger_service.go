package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	ambmodel "monetization-backend/internal/domains/ambassador/model"
	ambrepo "monetization-backend/internal/domains/ambassador/repository"
	"monetization-backend/internal/domains/commission/model"
	promomodel "monetization-backend/internal/domains/promocode/model"
	submodel "monetization-backend/internal/domains/subscription/model"
	subrepo "monetization-backend/internal/domains/subscription/repository"
	"monetization-backend/internal/infrastructure/metrics"
	"monetization-backend/internal/infrastructure/realtime"
	"monetization-backend/internal/shared"
	"monetization-backend/internal/shared/apperror"
	"monetization-backend/pkg/logger"
)

type Config struct {
	CommissionRatePercent int64
}

type LedgerService struct {
	subs      subrepo.Repository
	apps      ambrepo.Repository
	promos    PromoResolver
	enqueuer  ReconcileEnqueuer
	publisher realtime.Publisher
	cfg       Config
	now       func() time.Time
}

func NewLedgerService(
	subs subrepo.Repository,
	apps ambrepo.Repository,
	promos PromoResolver,
	enqueuer ReconcileEnqueuer,
	publisher realtime.Publisher,
	cfg Config,
) *LedgerService {
	if cfg.CommissionRatePercent <= 0 {
		cfg.CommissionRatePercent = 10
	}
	return &LedgerService{
		subs:      subs,
		apps:      apps,
		promos:    promos,
		enqueuer:  enqueuer,
		publisher: publisher,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

var _ ServiceInterface = (*LedgerService)(nil)

// -------------------------------------------------------------------
// PENDING
// -------------------------------------------------------------------

func (s *LedgerService) OnSubscriptionApproved(ctx context.Context, subscriptionID string) error {
	sub, err := s.subs.FindByID(ctx, subscriptionID)
	if err != nil {
		return err
	}
	code := sub.PromoCodeValue()
	if sub.Status != submodel.StatusApproved || code == "" || !sub.Commission.IsNone() {
		return nil
	}

	promo, err := s.promos.ResolveOwner(ctx, code)
	if err != nil {
		if errors.Is(err, promomodel.ErrPromoNotFound) {
			logger.Warn("Promo code no longer exists, commission skipped", map[string]interface{}{
				"subscription_id": subscriptionID,
				"promo_code":      code,
			})
			return nil
		}
		return fmt.Errorf("resolve promo owner: %w", err)
	}

	amount := submodel.CommissionFor(sub.ParsedAmount(), s.cfg.CommissionRatePercent)
	if !amount.IsPositive() {
		logger.Info("Commission is zero, skipped", map[string]interface{}{
			"subscription_id": subscriptionID,
			"amount":          sub.Amount,
		})
		return nil
	}

	updated, err := s.subs.Update(ctx, subscriptionID, func(sub *submodel.Subscription) error {
		return sub.AttachCommission(amount, promo.OwnerUserID, promo.OwnerName, s.now())
	})
	if errors.Is(err, submodel.ErrCommissionExists) {
		return nil
	}
	if err != nil {
		return err
	}

	logger.Info("Commission pending", map[string]interface{}{
		"subscription_id": subscriptionID,
		"owner":           promo.OwnerUserID,
		"amount":          amount.String(),
	})
	s.publishSubscription(ctx, updated)
	return nil
}

// -------------------------------------------------------------------
// DEDUCT
// -------------------------------------------------------------------

func (s *LedgerService) Deduct(ctx context.Context, actor shared.Actor, subscriptionID string) (*model.DeductResult, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	return s.deduct(ctx, subscriptionID)
}

func (s *LedgerService) deduct(ctx context.Context, subscriptionID string) (*model.DeductResult, error) {
	updated, err := s.subs.Update(ctx, subscriptionID, func(sub *submodel.Subscription) error {
		next, err := sub.Commission.Deduct(s.now())
		if err != nil {
			return err
		}
		sub.Commission = next
		sub.UpdatedAt = s.now()
		return nil
	})
	if errors.Is(err, submodel.ErrAlreadyDeducted) {
		return &model.DeductResult{SubscriptionID: subscriptionID, AlreadyDeducted: true}, nil
	}
	if err != nil {
		return nil, err
	}

	s.publishSubscription(ctx, updated)
	return &model.DeductResult{SubscriptionID: subscriptionID, Deducted: true}, nil
}

// DeductBatch never aborts halfway; each id gets its own result
func (s *LedgerService) DeductBatch(ctx context.Context, actor shared.Actor, subscriptionIDs []string) ([]model.DeductResult, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}

	results := make([]model.DeductResult, 0, len(subscriptionIDs))
	for _, id := range subscriptionIDs {
		res, err := s.deduct(ctx, id)
		if err != nil {
			res = &model.DeductResult{SubscriptionID: id, Error: err.Error()}
			var appErr *apperror.AppError
			if errors.As(err, &appErr) {
				res.ErrorCode = appErr.Code
			}
		}
		results = append(results, *res)
	}

	logger.Info("Commission batch deducted", map[string]interface{}{"count": len(subscriptionIDs), "by": actor.UserID})
	return results, nil
}

// -------------------------------------------------------------------
// RELEASE
// -------------------------------------------------------------------

// Release: CAS on the commission status first, then the idempotent credit on
// the owner's document. A failed credit is left to reconciliation, never retried inline.
func (s *LedgerService) Release(ctx context.Context, actor shared.Actor, subscriptionID string) (*model.ReleaseResult, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}

	var previous submodel.CommissionStatus
	sub, err := s.subs.Update(ctx, subscriptionID, func(sub *submodel.Subscription) error {
		if sub.PromoOwnerUserID == nil {
			return submodel.ErrNoCommission
		}
		previous = sub.Commission.Status
		next, err := sub.Commission.Release(s.now())
		if err != nil {
			return err
		}
		sub.Commission = next
		sub.UpdatedAt = s.now()
		return nil
	})
	if errors.Is(err, submodel.ErrAlreadyReleased) {
		return &model.ReleaseResult{SubscriptionID: subscriptionID, AlreadyReleased: true}, nil
	}
	if err != nil {
		return nil, err
	}

	if previous == submodel.CommissionPending {
		logger.Warn("Commission released without deduct checkpoint", map[string]interface{}{
			"subscription_id": subscriptionID,
			"by":              actor.UserID,
		})
	}
	metrics.CommissionsReleased.Inc()
	s.publishSubscription(ctx, sub)

	result := &model.ReleaseResult{
		SubscriptionID: subscriptionID,
		Released:       true,
		Amount:         sub.Commission.Amount,
		OwnerUserID:    *sub.PromoOwnerUserID,
		Commission:     &sub.Commission,
	}

	if _, err := s.credit(ctx, sub); err != nil {
		metrics.CommissionCreditFailures.Inc()
		logger.Error("Commission credit failed, scheduling reconciliation for "+subscriptionID, err)
		if enqErr := s.enqueuer.EnqueueReconcile(ctx, "credit failed: "+subscriptionID); enqErr != nil {
			logger.Error("Failed to enqueue reconciliation", enqErr)
		}
		result.CreditPending = true
		return result, nil
	}

	logger.Info("Commission released", map[string]interface{}{
		"subscription_id": subscriptionID,
		"owner":           result.OwnerUserID,
		"amount":          result.Amount.String(),
		"by":              actor.UserID,
	})
	return result, nil
}

func creditFor(sub *submodel.Subscription) ambmodel.Credit {
	name := sub.UserName
	if name == "" {
		name = sub.UserEmail
	}
	return ambmodel.Credit{
		SubscriptionID: sub.ID,
		FromName:       name,
		FromEmail:      sub.UserEmail,
		Commission:     sub.Commission.Amount,
		PaymentAmount:  sub.ParsedAmount(),
	}
}

// credit books the commission on the owner's document. credited=false with a nil
// error means the history already had this subscription.
func (s *LedgerService) credit(ctx context.Context, sub *submodel.Subscription) (credited bool, err error) {
	credit := creditFor(sub)
	app, err := s.apps.Update(ctx, *sub.PromoOwnerUserID, func(app *ambmodel.Application) error {
		return app.CreditCommission(credit, s.now())
	})
	if errors.Is(err, ambmodel.ErrAlreadyCredited) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	change := realtime.NewChange(realtime.CollectionMonetization, app.UserID, app.UserID, realtime.OpUpsert, app)
	if err := s.publisher.Publish(ctx, change); err != nil {
		logger.Error("Failed to publish application change", err)
	}
	return true, nil
}

// -------------------------------------------------------------------
// READ MODEL
// -------------------------------------------------------------------

// GrossPlatformEarnings = sum(approved non-manual amounts) − sum(deducted|released commissions)
func (s *LedgerService) GrossPlatformEarnings(ctx context.Context, actor shared.Actor) (*model.GrossEarnings, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}

	approved, err := s.subs.ListByStatus(ctx, submodel.StatusApproved)
	if err != nil {
		return nil, err
	}

	out := &model.GrossEarnings{GrossRevenue: decimal.Zero, CommissionCost: decimal.Zero}
	for _, sub := range approved {
		out.ApprovedCount++
		if sub.IsManual {
			out.ManualExcluded++
		} else {
			out.GrossRevenue = out.GrossRevenue.Add(sub.ParsedAmount())
		}
		if sub.Commission.CountsAgainstGross() {
			out.CommissionCount++
			out.CommissionCost = out.CommissionCost.Add(sub.Commission.Amount)
		}
	}
	out.NetEarnings = out.GrossRevenue.Sub(out.CommissionCost)
	return out, nil
}

// -------------------------------------------------------------------
// RECONCILIATION
// -------------------------------------------------------------------

func (s *LedgerService) Reconcile(ctx context.Context) (*model.ReconcileReport, error) {
	released, err := s.subs.ListByCommissionStatus(ctx, submodel.CommissionReleased)
	if err != nil {
		return nil, err
	}

	report := &model.ReconcileReport{}
	for _, sub := range released {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		report.Scanned++
		if sub.PromoOwnerUserID == nil {
			report.Skipped++
			continue
		}

		// Đọc trước để không phải lock document khi đã credit
		app, err := s.apps.FindByUserID(ctx, *sub.PromoOwnerUserID)
		if err == nil && app.HasCredit(sub.ID) {
			report.Skipped++
			continue
		}
		if err != nil && !errors.Is(err, ambmodel.ErrApplicationNotFound) {
			report.Failed++
			logger.Error("Reconcile read failed for "+sub.ID, err)
			continue
		}

		credited, err := s.credit(ctx, sub)
		if err != nil {
			report.Failed++
			logger.Error("Reconcile credit failed for "+sub.ID, err)
			continue
		}
		if !credited {
			report.Skipped++
			continue
		}
		report.Credited++
		metrics.ReconciledCredits.Inc()
		logger.Info("Reconciled missing commission credit", map[string]interface{}{
			"subscription_id": sub.ID,
			"owner":           *sub.PromoOwnerUserID,
			"amount":          sub.Commission.Amount.String(),
		})
	}
	return report, nil
}

func (s *LedgerService) publishSubscription(ctx context.Context, sub *submodel.Subscription) {
	change := realtime.NewChange(realtime.CollectionSubscriptions, sub.ID, sub.ID, realtime.OpUpsert, sub)
	if err := s.publisher.Publish(ctx, change); err != nil {
		logger.Error("Failed to publish subscription change", err)
	}
}
