package main

import (
	"context"
	"errors"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"monetization-backend/internal/shared"
	"monetization-backend/pkg/container"
)

type asynqServer struct {
	*asynq.Server
}

// ledger queue được ưu tiên gấp đôi default (reconcile > recount)
func setupAsynqServer(c *container.Container, handlers *HandlerRegistry) *asynqServer {
	mux := asynq.NewServeMux()
	handlers.RegisterHandlers(mux)

	srv := asynq.NewServer(
		c.RedisClientOpt(),
		asynq.Config{
			Queues: map[string]int{
				shared.QueueLedger:  10,
				shared.QueueDefault: 5,
			},
			Concurrency:  c.Config.Worker.Concurrency,
			ErrorHandler: asynq.ErrorHandlerFunc(logTaskFailure),
		},
	)

	go func() {
		log.Info().Int("concurrency", c.Config.Worker.Concurrency).Msg("[Worker] Starting task server")
		if err := srv.Run(mux); err != nil {
			log.Fatal().Err(err).Msg("[Worker] Task server failed")
		}
	}()

	return &asynqServer{Server: srv}
}

// logTaskFailure: lần retry cuối hoặc SkipRetry log ở mức error, còn lại warn
func logTaskFailure(ctx context.Context, task *asynq.Task, err error) {
	retried, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)
	taskID, _ := asynq.GetTaskID(ctx)

	event := log.Warn()
	if retried >= maxRetry || errors.Is(err, asynq.SkipRetry) {
		event = log.Error()
	}
	event.
		Err(err).
		Str("task_id", taskID).
		Str("type", task.Type()).
		Int("retried", retried).
		Int("max_retry", maxRetry).
		Msg("[Worker] Task failed")
}

// Shutdown waits for in-flight tasks (asynq ShutdownTimeout, default 8s)
func (s *asynqServer) Shutdown() {
	log.Info().Msg("[Worker] Shutting down task server...")
	s.Server.Shutdown()
	log.Info().Msg("[Worker] ✓ Task server stopped")
}
