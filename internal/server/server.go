// Package server wires the simulation driver, the WebSocket snapshot
// hub, and the HTTP router together into one process, and owns the
// background goroutines that run the simulation loop and push periodic
// updates to connected clients.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/onnwee/nbody-core/internal/api"
	"github.com/onnwee/nbody-core/internal/api/handlers"
	"github.com/onnwee/nbody-core/internal/cache"
	"github.com/onnwee/nbody-core/internal/circuitbreaker"
	"github.com/onnwee/nbody-core/internal/config"
	"github.com/onnwee/nbody-core/internal/httpx"
	"github.com/onnwee/nbody-core/internal/logger"
	"github.com/onnwee/nbody-core/internal/middleware"
	"github.com/onnwee/nbody-core/internal/scheduler"
	"github.com/onnwee/nbody-core/internal/simulation"
)

// Server owns the long-running pieces of the process: the simulation
// loop, the WebSocket hub, and the HTTP listener.
type Server struct {
	cfg *config.Config
	sim *simulation.Simulation

	hub       *handlers.Hub
	snapshots *handlers.SnapshotCache
	health    *handlers.HealthHandler

	httpServer *http.Server
	webhookCB  *circuitbreaker.CircuitBreaker

	statsInterval string
	nextStatsAt   time.Time
	lastStatsAt   time.Time
	statsStep     uint64
}

// New constructs a Server around sim, ready for Run.
func New(cfg *config.Config, sim *simulation.Simulation) *Server {
	snapshotCache, err := cache.NewLRU(32, 1, 2*cfg.SnapshotInterval)
	if err != nil {
		// Ristretto only fails this constructor on invalid config, which
		// the fixed arguments above never produce.
		panic(fmt.Sprintf("failed to construct snapshot cache: %v", err))
	}

	s := &Server{
		cfg:           cfg,
		sim:           sim,
		hub:           handlers.NewHub(),
		snapshots:     handlers.NewSnapshotCache(snapshotCache, 2*cfg.SnapshotInterval),
		statsInterval: cfg.StatsInterval,
	}
	s.health = handlers.NewHealthHandler(&statusAdapter{sim: sim})

	var limiter *middleware.RateLimiter
	if cfg.EnableRateLimit {
		limiter = middleware.NewRateLimiter(cfg.RateLimitGlobal, cfg.RateLimitGlobalBurst, cfg.RateLimitPerIP, cfg.RateLimitPerIPBurst)
	}

	router := api.Router(cfg, s.health, handlers.NewSnapshotHandler(s.snapshots), handlers.NewWebSocketHandler(s.hub), limiter)
	s.httpServer = &http.Server{
		Addr:         ":8080",
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	if cfg.WebhookURL != "" {
		s.webhookCB = circuitbreaker.New(circuitbreaker.Config{Name: "webhook"})
	}

	return s
}

// Run starts the HTTP listener, the WebSocket hub, and the simulation
// loop, blocking until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	go s.hub.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		logger.WithComponent("server").Info("listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	client := &http.Client{Timeout: 5 * time.Second}

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return s.httpServer.Shutdown(shutdownCtx)

		case err := <-errCh:
			return err

		case <-ticker.C:
			if err := s.sim.Step(ctx, s.cfg.DT); err != nil {
				return err
			}
			s.health.SetReady(true)
			s.publishSnapshot(ctx, client)
			s.maybeLogRunStats()
		}
	}
}

// maybeLogRunStats logs aggregate run stats (steps/sec, particle count) at
// the cadence s.statsInterval describes, as resolved by scheduler's
// @every-style expression parser. It is only ever called from Run's single
// tick branch, so it never races the simulation's own state.
func (s *Server) maybeLogRunStats() {
	now := time.Now()
	if s.nextStatsAt.IsZero() {
		s.lastStatsAt = now
		s.statsStep = s.sim.StepCount
		s.nextStatsAt = s.scheduleNextStats(now)
		return
	}
	if now.Before(s.nextStatsAt) {
		return
	}

	step := s.sim.StepCount
	elapsed := now.Sub(s.lastStatsAt).Seconds()
	var stepsPerSec float64
	if elapsed > 0 {
		stepsPerSec = float64(step-s.statsStep) / elapsed
	}

	logger.WithComponent("stats").Info("run stats",
		"run_id", s.sim.RunID,
		"step", step,
		"particles", len(s.sim.Particles),
		"steps_per_sec", stepsPerSec,
	)

	s.statsStep = step
	s.lastStatsAt = now
	s.nextStatsAt = s.scheduleNextStats(now)
}

func (s *Server) scheduleNextStats(now time.Time) time.Time {
	next, err := scheduler.ParseCronExpression(s.statsInterval, now)
	if err != nil {
		logger.WithComponent("stats").Error("invalid stats interval expression, falling back to a 24h interval", "expr", s.statsInterval, "error", err)
		return now.Add(24 * time.Hour)
	}
	return next
}

func (s *Server) publishSnapshot(ctx context.Context, client *http.Client) {
	payload, err := handlers.EncodeSnapshot(s.sim.StepCount, s.sim.Particles)
	if err != nil {
		logger.WithComponent("server").Error("failed to encode snapshot", "error", err)
		return
	}

	s.snapshots.Publish(payload)
	s.hub.Broadcast(payload)

	if s.webhookCB == nil {
		return
	}
	if err := s.webhookCB.Call(func() error {
		return httpx.PushSnapshot(ctx, client, payload, nil)
	}); err != nil {
		logger.WithComponent("server").Warn("webhook push skipped or failed", "error", err)
	}
}

// statusAdapter exposes *simulation.Simulation through the method-based
// handlers.StatusReporter interface; Simulation's own fields (StepCount,
// RunID) can't double as methods of the same name.
type statusAdapter struct {
	sim *simulation.Simulation
}

func (a *statusAdapter) RunID() string        { return a.sim.RunID.String() }
func (a *statusAdapter) StepCount() uint64    { return a.sim.StepCount }
func (a *statusAdapter) ParticleCount() int   { return len(a.sim.Particles) }
func (a *statusAdapter) IntegratorKind() string {
	return a.sim.Integrator.Kind.String()
}
