package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"monetization-backend/pkg/container"
)

const shutdownGrace = 10 * time.Second

// Serve builds the container, runs the HTTP server and blocks until SIGINT/SIGTERM.
func Serve() error {
	appContainer, err := container.NewContainer()
	if err != nil {
		return fmt.Errorf("initialize container: %w", err)
	}
	defer appContainer.Cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// hub + Redis relay sống theo ctx, dừng cùng lúc với signal
	appContainer.StartRealtime(ctx)

	port := appContainer.Config.App.Port
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           SetupRouter(appContainer),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("store", appContainer.Config.App.StoreDriver).
			Msg("🚀 Monetization API listening (/health, /metrics, /ws)")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("listen on %s: %w", srv.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("🛑 Shutting down API server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	log.Info().Msg("✅ API server exited gracefully")
	return nil
}
