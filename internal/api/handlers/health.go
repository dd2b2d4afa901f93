package handlers

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

// StatusReporter exposes the running simulation's vital counters without
// coupling the handler package to internal/simulation directly.
type StatusReporter interface {
	RunID() string
	StepCount() uint64
	ParticleCount() int
	IntegratorKind() string
}

// HealthHandler serves /healthz and /status.
type HealthHandler struct {
	reporter  StatusReporter
	startedAt time.Time
	ready     atomic.Bool
}

// NewHealthHandler constructs a handler reporting on reporter.
func NewHealthHandler(reporter StatusReporter) *HealthHandler {
	h := &HealthHandler{reporter: reporter, startedAt: time.Now()}
	return h
}

// SetReady flips the readiness flag /healthz reports; the server calls
// this once the simulation has completed its first tick.
func (h *HealthHandler) SetReady(ready bool) {
	h.ready.Store(ready)
}

// HealthStatus is the payload /healthz serves.
type HealthStatus struct {
	Ready  bool   `json:"ready"`
	Uptime string `json:"uptime"`
}

// ServeHealthz writes a liveness/readiness probe response.
func (h *HealthHandler) ServeHealthz(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Ready:  h.ready.Load(),
		Uptime: time.Since(h.startedAt).String(),
	}
	w.Header().Set("Content-Type", "application/json")
	if !status.Ready {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(status)
}

// SimulationStatus is the payload /status serves: a snapshot of the
// driver's vital counters, not the particle data itself.
type SimulationStatus struct {
	RunID      string `json:"run_id"`
	Step       uint64 `json:"step"`
	Particles  int    `json:"particles"`
	Integrator string `json:"integrator"`
	Uptime     string `json:"uptime"`
}

// ServeStatus writes the current simulation status.
func (h *HealthHandler) ServeStatus(w http.ResponseWriter, r *http.Request) {
	status := SimulationStatus{
		RunID:      h.reporter.RunID(),
		Step:       h.reporter.StepCount(),
		Particles:  h.reporter.ParticleCount(),
		Integrator: h.reporter.IntegratorKind(),
		Uptime:     time.Since(h.startedAt).String(),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}
