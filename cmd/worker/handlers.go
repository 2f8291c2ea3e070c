package main

import (
	"github.com/hibiken/asynq"

	commissionJob "monetization-backend/internal/domains/commission/job"
	promoJob "monetization-backend/internal/domains/promocode/job"
	"monetization-backend/internal/shared"
	"monetization-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	reconcile *commissionJob.ReconcileHandler
	recount   *promoJob.RecountHandler
}

func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		reconcile: commissionJob.NewReconcileHandler(c.LedgerService, c.WithdrawalService),
		recount:   promoJob.NewRecountHandler(c.PromoCodeService),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeLedgerReconcile, h.reconcile.ProcessTask)
	mux.HandleFunc(shared.TypePromoCodeRecount, h.recount.ProcessTask)
}
