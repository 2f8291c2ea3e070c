package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"monetization-backend/internal/shared"
	"monetization-backend/pkg/logger"
)

// Enqueuer đẩy task reconcile vào asynq khi một bước ghi sổ bị lỗi giữa chừng
type Enqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

// EnqueueReconcile dedups within a minute; reconcile is idempotent so retries are allowed
func (e *Enqueuer) EnqueueReconcile(ctx context.Context, reason string) error {
	payload, err := json.Marshal(map[string]string{"reason": reason})
	if err != nil {
		return fmt.Errorf("marshal reconcile payload: %w", err)
	}

	task := asynq.NewTask(shared.TypeLedgerReconcile, payload)
	info, err := e.client.EnqueueContext(ctx, task,
		asynq.Queue(shared.QueueLedger),
		asynq.MaxRetry(5),
		asynq.Timeout(5*time.Minute),
		asynq.Unique(time.Minute),
	)
	if errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("enqueue reconcile: %w", err)
	}

	logger.Info("Reconcile task enqueued", map[string]interface{}{"task_id": info.ID, "reason": reason})
	return nil
}

// NopEnqueuer is used with the memory store, where no worker shares the data
type NopEnqueuer struct{}

func (NopEnqueuer) EnqueueReconcile(_ context.Context, reason string) error {
	logger.Warn("Reconcile requested but no queue configured", map[string]interface{}{"reason": reason})
	return nil
}
