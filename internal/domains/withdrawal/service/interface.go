package service

import (
	"context"

	"monetization-backend/internal/domains/withdrawal/model"
	"monetization-backend/internal/shared"
)

// ReconcileEnqueuer hands a half-written withdrawal to the worker
type ReconcileEnqueuer interface {
	EnqueueReconcile(ctx context.Context, reason string) error
}

type ServiceInterface interface {
	RequestWithdrawal(ctx context.Context, actor shared.Actor, req *model.RequestWithdrawalRequest) (*model.WithdrawalRequest, error)
	ListMine(ctx context.Context, actor shared.Actor) ([]*model.WithdrawalRequest, error)

	// Admin
	MarkPaid(ctx context.Context, actor shared.Actor, withdrawalID string) (*model.WithdrawalRequest, error)
	ListPending(ctx context.Context, actor shared.Actor) ([]*model.WithdrawalRequest, error)
	ExportPayoutSheet(ctx context.Context, actor shared.Actor) ([]byte, error)

	// RestoreMissing recreates rows for withdrawals booked in history but never inserted
	RestoreMissing(ctx context.Context) (int, error)
}
