package main

import (
	"github.com/rs/zerolog/log"

	"monetization-backend/internal/infrastructure/queue"
	"monetization-backend/pkg/container"
)

type asynqScheduler struct {
	*queue.Scheduler
}

// setupScheduler registers the reconcile and recount cron jobs
func setupScheduler(c *container.Container) *asynqScheduler {
	scheduler := queue.NewScheduler(c.RedisClientOpt(), c.Config.Worker)

	if err := scheduler.RegisterJobs(); err != nil {
		log.Fatal().Err(err).Msg("[Scheduler] Failed to register jobs")
	}

	go func() {
		log.Info().Msg("[Scheduler] Starting...")
		if err := scheduler.Start(); err != nil {
			log.Fatal().Err(err).Msg("[Scheduler] Failed")
		}
	}()

	return &asynqScheduler{Scheduler: scheduler}
}

func (s *asynqScheduler) Shutdown() {
	s.Scheduler.Shutdown()
	log.Info().Msg("[Scheduler] ✓ Stopped")
}
