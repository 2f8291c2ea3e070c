package main

import (
	"github.com/rs/zerolog/log"

	"monetization-backend/internal/config"
)

// logWorkerConfig in các thông số worker khi khởi động
func logWorkerConfig(cfg *config.Config) {
	log.Info().
		Str("redis", cfg.Redis.Host).
		Str("store", cfg.App.StoreDriver).
		Int("concurrency", cfg.Worker.Concurrency).
		Str("reconcile_cron", cfg.Worker.ReconcileCron).
		Str("recount_cron", cfg.Worker.UsageRecountCron).
		Str("health_port", cfg.Worker.HealthCheckPort).
		Msg("[Config] Worker settings")
}
