// Package simulation implements the per-tick step driver: migrate and
// recoarsen the quadtree, recompute centre-of-mass summaries, advance the
// chosen integrator, resolve collisions, and recentre the system on its
// barycentre. It is the seam between the core numeric packages
// (quadtree, physics, integrate, collision) and everything ambient
// (metrics, tracing, logging) that observes them.
package simulation

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/onnwee/nbody-core/internal/collision"
	"github.com/onnwee/nbody-core/internal/geom"
	"github.com/onnwee/nbody-core/internal/integrate"
	"github.com/onnwee/nbody-core/internal/logger"
	"github.com/onnwee/nbody-core/internal/metrics"
	"github.com/onnwee/nbody-core/internal/particle"
	"github.com/onnwee/nbody-core/internal/quadtree"
	"github.com/onnwee/nbody-core/internal/tracing"
	"github.com/onnwee/nbody-core/internal/vector2"
)

// Simulation owns the particle collection, the quadtree indexing it, and
// the integrator configuration driving it forward one tick at a time.
// It is not safe for concurrent calls to Step; the internal worker pools
// parallelise within a step, not across steps.
type Simulation struct {
	RunID uuid.UUID

	Bounds     geom.Bounds
	Tree       *quadtree.Tree
	Particles  []*particle.Particle
	Integrator integrate.Config

	StepCount uint64

	scratchEvicted []*particle.Particle
}

// New constructs a Simulation over a square region centred on the origin
// with the given half-width, running the named integrator.
func New(boundsHalfWidth float64, integratorKind integrate.Kind, theta float64, workers int) *Simulation {
	bounds := geom.New(-boundsHalfWidth, -boundsHalfWidth, 2*boundsHalfWidth, 2*boundsHalfWidth)
	return &Simulation{
		RunID:  uuid.New(),
		Bounds: bounds,
		Tree:   quadtree.New(bounds),
		Integrator: integrate.Config{
			Kind:    integratorKind,
			Theta:   theta,
			Workers: workers,
		},
	}
}

// Seed inserts particles into the simulation's tree and particle
// collection. Any particle whose position falls outside Bounds is
// dropped and counted as escaped rather than silently ignored.
func (s *Simulation) Seed(particles []*particle.Particle) {
	for _, p := range particles {
		if s.Tree.Insert(p) {
			s.Particles = append(s.Particles, p)
		} else {
			metrics.ParticlesEscaped.Inc()
		}
	}
	s.Tree.CalculateCOM()
	metrics.ParticlesActive.Set(float64(len(s.Particles)))
}

// Step runs one full driver tick: migrate-and-recoarsen the tree,
// recompute centre-of-mass summaries, advance the integrator by dt,
// resolve collisions, purge merged particles from the tree, and recentre
// the system on its barycentre. The only error it can return is a
// *simerr.ConfigurationError from an unrecognised integrator tag, which
// is fatal — the caller must stop calling Step, not retry the same one.
func (s *Simulation) Step(ctx context.Context, dt float64) error {
	start := time.Now()
	kindTag := s.Integrator.Kind.String()

	ctx, span := tracing.StartSpan(ctx, "simulation.step")
	defer span.End()

	s.migrate(ctx)
	s.Tree.CalculateCOM()

	walkStart := time.Now()
	if err := s.Integrator.Dispatch(s.Particles, s.Tree, dt); err != nil {
		logger.WithComponent("simulation").Error("integrator dispatch failed", "run_id", s.RunID, "error", err)
		return err
	}
	metrics.ForceWalkDuration.Observe(time.Since(walkStart).Seconds())

	s.resolveCollisions(ctx, dt)
	s.recentre()

	s.StepCount++
	metrics.StepsTotal.WithLabelValues(kindTag).Inc()
	metrics.StepDuration.WithLabelValues(kindTag).Observe(time.Since(start).Seconds())
	metrics.ParticlesActive.Set(float64(len(s.Particles)))

	s.logStats(start)
	return nil
}

func (s *Simulation) migrate(ctx context.Context) {
	_, span := tracing.StartSpan(ctx, "simulation.migrate")
	defer span.End()

	s.scratchEvicted = s.scratchEvicted[:0]
	s.Tree.UpdateParticles(&s.scratchEvicted)

	if len(s.scratchEvicted) == 0 {
		return
	}

	escaped := 0
	for _, p := range s.scratchEvicted {
		if !s.Tree.Insert(p) {
			p.MarkForDeletion = true
			escaped++
		}
	}
	if escaped > 0 {
		metrics.ParticlesEscaped.Add(float64(escaped))
		s.Particles = collision.Compact(s.Particles)
	}
}

func (s *Simulation) resolveCollisions(ctx context.Context, dt float64) {
	_, span := tracing.StartSpan(ctx, "simulation.collide")
	defer span.End()

	collideStart := time.Now()
	collision.CheckCollisions(s.Particles, s.Tree, dt, s.Integrator.Workers)
	before := len(s.Particles)
	s.Particles = collision.Compact(s.Particles)
	merged := before - len(s.Particles)

	s.Tree.PurgeMerged()
	metrics.CollisionPhaseDuration.Observe(time.Since(collideStart).Seconds())
	if merged > 0 {
		metrics.ParticlesMerged.Add(float64(merged))
	}
}

// recentre subtracts the barycentre of the surviving particles from every
// position, keeping the system centred for visualisation and bounds
// stability. It skips the subtraction entirely if total mass is zero,
// since dividing by it would be a divide-by-zero.
func (s *Simulation) recentre() {
	var totalMass float64
	com := vector2.Zero
	for _, p := range s.Particles {
		com = com.Add(p.Position.Scale(p.Mass))
		totalMass += p.Mass
	}
	if totalMass == 0 {
		return
	}
	com = com.Div(totalMass)

	drift := com.Norm()
	for _, p := range s.Particles {
		p.Position = p.Position.Sub(com)
	}
	if drift > 0.1*s.Bounds.Width {
		logger.WithComponent("simulation").Info("large barycentre drift recentred",
			"run_id", s.RunID, "drift", drift)
	}
}

func (s *Simulation) logStats(start time.Time) {
	l := logger.WithComponent("simulation")
	l.Debug("tick complete",
		"run_id", s.RunID,
		"step", s.StepCount,
		"particles", humanize.Comma(int64(len(s.Particles))),
		"elapsed", time.Since(start),
	)
}
