package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Step driver metrics
	StepsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sim_steps_total",
			Help: "Total number of simulation ticks completed",
		},
		[]string{"integrator"},
	)

	StepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sim_step_duration_seconds",
			Help:    "Duration of a full simulation tick (migrate+COM+integrate+collide+recentre)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"integrator"},
	)

	ForceWalkDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sim_force_walk_duration_seconds",
			Help:    "Duration of a single Barnes-Hut force-and-jerk walk",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	CollisionPhaseDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sim_collision_phase_duration_seconds",
			Help:    "Duration of the collision detection and merge phase",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	ParticlesActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sim_particles_active",
			Help: "Current number of particles in the simulation",
		},
	)

	ParticlesEscaped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sim_particles_escaped_total",
			Help: "Total number of particles evicted from the root bounds during tree migration",
		},
	)

	ParticlesMerged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sim_particles_merged_total",
			Help: "Total number of particles absorbed by collision merges",
		},
	)

	TreeDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sim_tree_depth",
			Help: "Maximum depth of the quadtree after the most recent rebuild",
		},
	)

	// Circuit breaker metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"component"},
	)

	CircuitBreakerTrips = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_trips_total",
			Help: "Total number of circuit breaker trips",
		},
		[]string{"component"},
	)

	// Snapshot cache metrics
	SnapshotCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "snapshot_cache_hits_total",
			Help: "Total number of snapshot cache hits",
		},
	)

	SnapshotCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "snapshot_cache_misses_total",
			Help: "Total number of snapshot cache misses",
		},
	)

	// API request metrics
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"endpoint", "method", "status"},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"endpoint", "method", "status"},
	)

	// WebSocket metrics
	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections_active",
			Help: "Number of active WebSocket connections",
		},
	)

	WebSocketMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket snapshot messages sent to clients",
		},
	)
)
