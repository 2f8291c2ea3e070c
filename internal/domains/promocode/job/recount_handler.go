package job

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"monetization-backend/internal/domains/promocode/service"
)

// RecountHandler làm mới usage cache của tất cả mã giới thiệu
type RecountHandler struct {
	promos service.ServiceInterface
}

func NewRecountHandler(promos service.ServiceInterface) *RecountHandler {
	return &RecountHandler{promos: promos}
}

func (h *RecountHandler) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	start := time.Now()

	refreshed, err := h.promos.RecountAll(ctx)
	if err != nil {
		log.Error().Err(err).Int("refreshed", refreshed).Msg("Promo code recount failed")
		return fmt.Errorf("recount promo codes: %w", err)
	}

	log.Info().
		Int("refreshed", refreshed).
		Dur("took", time.Since(start)).
		Msg("Promo code usage recounted")
	return nil
}
