package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/onnwee/nbody-core/internal/apierr"
	"github.com/onnwee/nbody-core/internal/cache"
	"github.com/onnwee/nbody-core/internal/metrics"
	"github.com/onnwee/nbody-core/internal/particle"
)

// snapshotCacheKey is the sole key the snapshot cache ever stores: there is
// one simulation per process, so there is one current snapshot.
const snapshotCacheKey = "latest"

// ParticleView is the wire representation of a particle in a snapshot:
// just what a renderer needs to draw a frame, not the integrator's
// internal scratch fields.
type ParticleView struct {
	ID     int     `json:"id"`
	Mass   float64 `json:"mass"`
	Radius float64 `json:"radius"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	VX     float64 `json:"vx"`
	VY     float64 `json:"vy"`
}

// Snapshot is the full payload broadcast to WebSocket clients and served
// by the REST fallback endpoint.
type Snapshot struct {
	Step      uint64         `json:"step"`
	Particles []ParticleView `json:"particles"`
}

// EncodeSnapshot converts live particles into a serialized Snapshot.
func EncodeSnapshot(step uint64, particles []*particle.Particle) ([]byte, error) {
	views := make([]ParticleView, len(particles))
	for i, p := range particles {
		views[i] = ParticleView{
			ID:     p.ID,
			Mass:   p.Mass,
			Radius: p.Radius,
			X:      p.Position.X,
			Y:      p.Position.Y,
			VX:     p.Velocity.X,
			VY:     p.Velocity.Y,
		}
	}
	return json.Marshal(Snapshot{Step: step, Particles: views})
}

// SnapshotCache publishes the latest serialized snapshot so concurrent WS
// clients and REST pollers share one JSON encoding per tick instead of
// re-marshalling particle state per request.
type SnapshotCache struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewSnapshotCache wraps c, publishing snapshots with the given TTL (the
// cache entry is expected to be refreshed well before it, on every tick).
func NewSnapshotCache(c cache.Cache, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{cache: c, ttl: ttl}
}

// Publish stores the latest snapshot payload, overwriting any prior one.
func (s *SnapshotCache) Publish(payload []byte) {
	s.cache.Set(snapshotCacheKey, payload, s.ttl)
}

// Latest returns the most recently published snapshot payload, if any.
func (s *SnapshotCache) Latest() ([]byte, bool) {
	payload, ok := s.cache.Get(snapshotCacheKey)
	if ok {
		metrics.SnapshotCacheHits.Inc()
	} else {
		metrics.SnapshotCacheMisses.Inc()
	}
	return payload, ok
}

// SnapshotHandler serves the REST fallback for clients that cannot hold a
// WebSocket connection open: GET /snapshot returns the same payload the
// hub is currently broadcasting.
type SnapshotHandler struct {
	snapshots *SnapshotCache
}

// NewSnapshotHandler constructs a handler reading from snapshots.
func NewSnapshotHandler(snapshots *SnapshotCache) *SnapshotHandler {
	return &SnapshotHandler{snapshots: snapshots}
}

// ServeSnapshot writes the latest cached snapshot, or a 503 if the
// simulation has not published one yet.
func (h *SnapshotHandler) ServeSnapshot(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.snapshots.Latest()
	if !ok {
		apierr.WriteErrorWithContext(w, r, apierr.SimSnapshotUnavailable())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(payload)
}
