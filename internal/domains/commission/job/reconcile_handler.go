package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"monetization-backend/internal/domains/commission/service"
)

// ReconcilePayload: Reason chỉ để log, task chạy lại toàn bộ sổ cái
type ReconcilePayload struct {
	Reason string `json:"reason"`
}

// WithdrawalRestorer recreates withdrawal rows whose history entry was booked
// but whose row insert failed
type WithdrawalRestorer interface {
	RestoreMissing(ctx context.Context) (int, error)
}

// ReconcileHandler repairs the ledger after partial failures. Both steps are
// idempotent so asynq may retry the task.
type ReconcileHandler struct {
	ledger      service.ServiceInterface
	withdrawals WithdrawalRestorer
}

func NewReconcileHandler(ledger service.ServiceInterface, withdrawals WithdrawalRestorer) *ReconcileHandler {
	return &ReconcileHandler{ledger: ledger, withdrawals: withdrawals}
}

func (h *ReconcileHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload ReconcilePayload
	if len(task.Payload()) > 0 {
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			log.Error().Err(err).Msg("Failed to unmarshal reconcile payload")
			return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
		}
	}

	log.Info().Str("reason", payload.Reason).Msg("Ledger reconciliation started")

	report, err := h.ledger.Reconcile(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Ledger reconciliation failed")
		return fmt.Errorf("reconcile commissions: %w", err)
	}

	restored := 0
	if h.withdrawals != nil {
		restored, err = h.withdrawals.RestoreMissing(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Withdrawal restore failed")
			return fmt.Errorf("restore withdrawals: %w", err)
		}
	}

	log.Info().
		Int("scanned", report.Scanned).
		Int("credited", report.Credited).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Int("withdrawals_restored", restored).
		Msg("Ledger reconciliation finished")

	if report.Failed > 0 {
		return fmt.Errorf("reconcile: %d credits still failing", report.Failed)
	}
	return nil
}
