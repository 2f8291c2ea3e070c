package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	ambmodel "monetization-backend/internal/domains/ambassador/model"
	ambrepo "monetization-backend/internal/domains/ambassador/repository"
	"monetization-backend/internal/domains/withdrawal/model"
	"monetization-backend/internal/domains/withdrawal/repository"
	"monetization-backend/internal/infrastructure/metrics"
	"monetization-backend/internal/infrastructure/realtime"
	"monetization-backend/internal/shared"
	"monetization-backend/internal/shared/apperror"
	"monetization-backend/pkg/logger"
)

type Config struct {
	MinWithdrawal  decimal.Decimal
	TaxPerThousand int64
}

type WithdrawalService struct {
	repo      repository.Repository
	apps      ambrepo.Repository
	enqueuer  ReconcileEnqueuer
	publisher realtime.Publisher
	cfg       Config
	now       func() time.Time
}

func NewWithdrawalService(
	repo repository.Repository,
	apps ambrepo.Repository,
	enqueuer ReconcileEnqueuer,
	publisher realtime.Publisher,
	cfg Config,
) *WithdrawalService {
	if !cfg.MinWithdrawal.IsPositive() {
		cfg.MinWithdrawal = decimal.NewFromInt(10000)
	}
	if cfg.TaxPerThousand <= 0 {
		cfg.TaxPerThousand = 20
	}
	return &WithdrawalService{
		repo:      repo,
		apps:      apps,
		enqueuer:  enqueuer,
		publisher: publisher,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

var _ ServiceInterface = (*WithdrawalService)(nil)

// RequestWithdrawal: validation và pre-check số dư trước mọi write, sau đó
// ReserveWithdrawal kiểm tra lại trên document đã lock rồi mới tạo row.
func (s *WithdrawalService) RequestWithdrawal(ctx context.Context, actor shared.Actor, req *model.RequestWithdrawalRequest) (*model.WithdrawalRequest, error) {
	if err := actor.RequireUser(); err != nil {
		return nil, err
	}
	if req.Amount.LessThan(s.cfg.MinWithdrawal) {
		metrics.WithdrawalsRequested.WithLabelValues("invalid").Inc()
		return nil, model.ErrInvalidAmount.WithDetails(map[string]interface{}{
			"minimum": s.cfg.MinWithdrawal.String(),
		})
	}
	if strings.TrimSpace(req.Phone) == "" {
		metrics.WithdrawalsRequested.WithLabelValues("invalid").Inc()
		return nil, model.ErrInvalidPhone
	}
	if err := req.Validate(); err != nil {
		metrics.WithdrawalsRequested.WithLabelValues("invalid").Inc()
		return nil, apperror.FromValidation(err)
	}

	tax := model.TaxFor(req.Amount, s.cfg.TaxPerThousand)
	total := req.Amount.Add(tax)

	available := decimal.Zero
	app, err := s.apps.FindByUserID(ctx, actor.UserID)
	switch {
	case err == nil:
		available = app.Withdrawable()
	case !errors.Is(err, ambmodel.ErrApplicationNotFound):
		return nil, err
	}
	if total.GreaterThan(available) {
		metrics.WithdrawalsRequested.WithLabelValues("insufficient").Inc()
		return nil, ambmodel.ErrInsufficientFunds.WithDetails(map[string]interface{}{
			"requested": total.String(),
			"available": available.String(),
		})
	}

	now := s.now()
	w := model.NewWithdrawal(uuid.New(), actor.UserID, req.Phone, req.Amount, tax, now)
	reservation := ambmodel.Reservation{
		WithdrawalID: w.ID.String(),
		Amount:       w.Amount,
		Tax:          w.Tax,
		Phone:        w.Phone,
	}

	app, err = s.apps.Update(ctx, actor.UserID, func(app *ambmodel.Application) error {
		return app.ReserveWithdrawal(reservation, now)
	})
	if err != nil {
		if apperror.IsKind(err, apperror.KindInsufficientFunds) {
			metrics.WithdrawalsRequested.WithLabelValues("insufficient").Inc()
		}
		return nil, err
	}
	s.publishApplication(ctx, app)

	if err := s.repo.Create(ctx, w); err != nil {
		// Số dư đã bị trừ; reconciliation sẽ tạo lại row từ history
		logger.Error("Withdrawal row insert failed after reservation "+w.ID.String(), err)
		if enqErr := s.enqueuer.EnqueueReconcile(ctx, "withdrawal row missing: "+w.ID.String()); enqErr != nil {
			logger.Error("Failed to enqueue reconciliation", enqErr)
		}
	} else {
		s.publishWithdrawal(ctx, w)
	}

	metrics.WithdrawalsRequested.WithLabelValues("accepted").Inc()
	logger.Info("Withdrawal requested", map[string]interface{}{
		"withdrawal_id": w.ID.String(),
		"user_id":       actor.UserID,
		"amount":        w.Amount.String(),
		"tax":           w.Tax.String(),
	})
	return w, nil
}

func (s *WithdrawalService) ListMine(ctx context.Context, actor shared.Actor) ([]*model.WithdrawalRequest, error) {
	if err := actor.RequireUser(); err != nil {
		return nil, err
	}
	return s.repo.ListByUser(ctx, actor.UserID)
}

// MarkPaid never touches totalWithdrawn; the history entry only changes status
func (s *WithdrawalService) MarkPaid(ctx context.Context, actor shared.Actor, withdrawalID string) (*model.WithdrawalRequest, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	id, err := uuid.Parse(withdrawalID)
	if err != nil {
		return nil, model.ErrWithdrawalNotFound
	}

	w, err := s.repo.Update(ctx, id, func(w *model.WithdrawalRequest) error {
		return w.MarkPaid(s.now())
	})
	if err != nil {
		return nil, err
	}

	app, err := s.apps.Update(ctx, w.UserID, func(app *ambmodel.Application) error {
		if !app.MarkWithdrawalPaid(w.ID.String()) {
			return ambmodel.ErrWithdrawalEntryGone
		}
		return nil
	})
	if err != nil {
		logger.Warn("Withdrawal paid but history entry not updated", map[string]interface{}{
			"withdrawal_id": w.ID.String(),
			"user_id":       w.UserID,
			"error":         err.Error(),
		})
	} else {
		s.publishApplication(ctx, app)
	}

	logger.Info("Withdrawal marked paid", map[string]interface{}{"withdrawal_id": w.ID.String(), "by": actor.UserID})
	s.publishWithdrawal(ctx, w)
	return w, nil
}

func (s *WithdrawalService) ListPending(ctx context.Context, actor shared.Actor) ([]*model.WithdrawalRequest, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	return s.repo.ListByStatus(ctx, model.StatusPending)
}

func (s *WithdrawalService) RestoreMissing(ctx context.Context) (int, error) {
	apps, err := s.apps.ListWithLedger(ctx)
	if err != nil {
		return 0, err
	}

	restored := 0
	for _, app := range apps {
		for _, h := range app.History {
			if h.Type != ambmodel.HistoryWithdrawal || h.WithdrawalID == "" {
				continue
			}
			id, err := uuid.Parse(h.WithdrawalID)
			if err != nil {
				continue
			}
			_, err = s.repo.FindByID(ctx, id)
			if err == nil {
				continue
			}
			if !errors.Is(err, model.ErrWithdrawalNotFound) {
				return restored, err
			}

			w := model.NewWithdrawal(id, app.UserID, h.Phone, h.Amount, h.Tax, h.Timestamp)
			if h.Status == string(model.StatusPaid) {
				w.Status = model.StatusPaid
			}
			if err := s.repo.Create(ctx, w); err != nil && !errors.Is(err, model.ErrWithdrawalExists) {
				return restored, err
			}
			restored++
			logger.Info("Restored missing withdrawal row", map[string]interface{}{
				"withdrawal_id": h.WithdrawalID,
				"user_id":       app.UserID,
			})
		}
	}
	return restored, nil
}

func (s *WithdrawalService) publishWithdrawal(ctx context.Context, w *model.WithdrawalRequest) {
	change := realtime.NewChange(realtime.CollectionWithdrawals, w.ID.String(), w.UserID, realtime.OpUpsert, w)
	if err := s.publisher.Publish(ctx, change); err != nil {
		logger.Error("Failed to publish withdrawal change", err)
	}
}

func (s *WithdrawalService) publishApplication(ctx context.Context, app *ambmodel.Application) {
	change := realtime.NewChange(realtime.CollectionMonetization, app.UserID, app.UserID, realtime.OpUpsert, app)
	if err := s.publisher.Publish(ctx, change); err != nil {
		logger.Error("Failed to publish application change", err)
	}
}
