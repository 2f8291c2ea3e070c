// cmd/worker/startup.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"monetization-backend/pkg/container"
)

const checkTimeout = 5 * time.Second

// HealthChecker kiểm tra Redis (asynq) và Postgres (ledger)
type HealthChecker struct {
	c *container.Container
}

type namedCheck struct {
	name string
	fn   func(ctx context.Context) error
}

func (h *HealthChecker) checks() []namedCheck {
	return []namedCheck{
		{"redis", h.checkRedis},
		{"database", h.checkDatabase},
	}
}

// checkAll dừng ở check đầu tiên fail
func (h *HealthChecker) checkAll(ctx context.Context) error {
	for _, check := range h.checks() {
		checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := check.fn(checkCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("%s: %w", check.name, err)
		}
		log.Info().Str("check", check.name).Msg("[Startup] ✓ OK")
	}
	return nil
}

// checkRedis: asynq cần Redis, cache fallback in-process không đủ cho worker
func (h *HealthChecker) checkRedis(ctx context.Context) error {
	if h.c.Redis == nil {
		return errors.New("redis is not connected")
	}
	return h.c.Redis.Ping(ctx)
}

func (h *HealthChecker) checkDatabase(ctx context.Context) error {
	if h.c.DB == nil {
		return errors.New("database is not connected")
	}
	return h.c.DB.HealthCheck(ctx)
}

type healthServer struct {
	srv *http.Server
}

// startHealthServer: /health (liveness), /ready (chạy lại checks), /metrics (reconcile counters)
func startHealthServer(port string, checker *HealthChecker) *healthServer {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "UP", "service": "monetization-worker"})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := checker.checkAll(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "NOT_READY", "error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "READY"})
	})
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: ":" + port, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("[Health] Listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("[Health] Server failed")
		}
	}()
	return &healthServer{srv: srv}
}

func (h *healthServer) stop() {
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()
	if err := h.srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("[Health] Forced shutdown")
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
