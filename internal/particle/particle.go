// Package particle defines the kinematic state carried by every body in
// the simulation, from the central mass down to the lightest test
// particle.
package particle

import "github.com/onnwee/nbody-core/internal/vector2"

// Particle is the unit the quadtree, force kernel, integrators and
// collision resolver all operate on. Acceleration and Jerk hold the
// values produced by the most recent force evaluation; PredPosition and
// PredVelocity are scratch slots used only by the Hermite integrator and
// are undefined outside a Hermite step.
type Particle struct {
	ID     int
	Mass   float64
	Radius float64

	Position     vector2.Vector2
	Velocity     vector2.Vector2
	Acceleration vector2.Vector2
	Jerk         vector2.Vector2

	PredPosition vector2.Vector2
	PredVelocity vector2.Vector2

	// IsPrimary is a cosmetic label propagated by callers (e.g. to mark a
	// planet vs. a test particle); the core never reads it.
	IsPrimary bool

	// MarkForDeletion is set by the collision resolver on a merged-away
	// particle, or by the step driver on one that has escaped the root
	// bounds entirely. It is transient state consumed by the driver's
	// compaction pass and otherwise meaningless.
	MarkForDeletion bool
}

// New constructs a particle at rest at the origin with the given identity,
// mass and radius.
func New(id int, mass, radius float64) *Particle {
	return &Particle{ID: id, Mass: mass, Radius: radius}
}

// ZeroAcceleration resets the accumulators the force kernel writes into.
// Jerk is left untouched; callers that also need jerk zeroed use
// ZeroAccelerationAndJerk.
func (p *Particle) ZeroAcceleration() {
	p.Acceleration = vector2.Zero
}

// ZeroAccelerationAndJerk resets both force-kernel accumulators ahead of a
// Hermite force-and-jerk evaluation.
func (p *Particle) ZeroAccelerationAndJerk() {
	p.Acceleration = vector2.Zero
	p.Jerk = vector2.Zero
}

// Copy returns a value copy of p, suitable for scratch evaluation (e.g.
// the RK2 midpoint evaluation) without disturbing the live particle.
func (p *Particle) Copy() Particle {
	return *p
}
