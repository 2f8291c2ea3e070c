package queue

import (
	"time"

	"github.com/hibiken/asynq"

	"monetization-backend/internal/config"
	"monetization-backend/internal/shared"
	"monetization-backend/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
	cfg       config.WorkerConfig
}

func NewScheduler(redis asynq.RedisClientOpt, cfg config.WorkerConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		redis,
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		cfg:       cfg,
	}
}

func (s *Scheduler) RegisterJobs() error {
	if err := s.registerLedgerReconcileJob(); err != nil {
		return err
	}
	if err := s.registerPromoCodeRecountJob(); err != nil {
		return err
	}
	return nil
}

// ================================================
// JOB 1: Ledger reconcile (mặc định mỗi 30 phút)
// ================================================
// Credits released commissions missing from the owner's history and
// restores withdrawal rows; both steps are idempotent.
func (s *Scheduler) registerLedgerReconcileJob() error {
	task := asynq.NewTask(shared.TypeLedgerReconcile, []byte(`{"reason":"scheduled"}`))

	_, err := s.scheduler.Register(
		s.cfg.ReconcileCron,
		task,
		asynq.Queue(shared.QueueLedger),
		asynq.MaxRetry(2),
		asynq.Timeout(10*time.Minute),
		asynq.Unique(5*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register LedgerReconcile job", err)
		return err
	}

	logger.Info("✓ Registered LedgerReconcile", map[string]interface{}{"cron": s.cfg.ReconcileCron})
	return nil
}

// ================================================
// JOB 2: Promo code usage recount (mặc định mỗi giờ)
// ================================================
func (s *Scheduler) registerPromoCodeRecountJob() error {
	task := asynq.NewTask(shared.TypePromoCodeRecount, nil)

	_, err := s.scheduler.Register(
		s.cfg.UsageRecountCron,
		task,
		asynq.Queue(shared.QueueDefault),
		asynq.MaxRetry(1),
		asynq.Timeout(5*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register PromoCodeRecount job", err)
		return err
	}

	logger.Info("✓ Registered PromoCodeRecount", map[string]interface{}{"cron": s.cfg.UsageRecountCron})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
