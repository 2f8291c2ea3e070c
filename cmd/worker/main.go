// cmd/worker/main.go
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"monetization-backend/pkg/container"
	"monetization-backend/pkg/logger"
)

func main() {
	envFileErr := godotenv.Load()

	c, err := container.NewContainer()
	if err != nil {
		log.Fatal().Err(err).Msg("[Container] Failed to initialize")
	}
	defer c.Cleanup()

	logger.Init(c.Config.App.Environment)
	if envFileErr != nil {
		log.Warn().Msg("No .env file found, using system environment variables")
	}
	// memory store không chia sẻ state với API process
	if c.AsynqClient == nil {
		log.Fatal().Msg("[Worker] STORE_DRIVER=memory has no shared state; run the worker against postgres")
	}
	logWorkerConfig(c.Config)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checker := &HealthChecker{c: c}
	if err := checker.checkAll(ctx); err != nil {
		log.Fatal().Err(err).Msg("[Startup] Health check failed")
	}

	handlers := initializeHandlers(c)
	srv := setupAsynqServer(c, handlers)
	scheduler := setupScheduler(c)
	health := startHealthServer(c.Config.Worker.HealthCheckPort, checker)

	<-ctx.Done()

	log.Info().Msg("[Shutdown] Gracefully stopping...")
	scheduler.Shutdown()
	srv.Shutdown()
	health.stop()
	log.Info().Msg("[Shutdown] ✓ Stopped")
}
