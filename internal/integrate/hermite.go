package integrate

import (
	"github.com/onnwee/nbody-core/internal/particle"
	"github.com/onnwee/nbody-core/internal/physics"
	"github.com/onnwee/nbody-core/internal/quadtree"
	"github.com/onnwee/nbody-core/internal/vector2"
)

type vectorPair struct {
	a, j vector2.Vector2
}

// primeHermite runs an ordinary force-and-jerk evaluation so the first
// HermiteStep call has an (a0, j0) to predict from.
func primeHermite(particles []*particle.Particle, tree *quadtree.Tree, theta float64, workers int) {
	physics.GetAccelerationAndJerk(particles, tree, theta, workers)
}

// HermiteStep performs one 4th-order Hermite predictor-corrector step.
// It requires particle.Acceleration/Jerk to already hold the previous
// step's evaluation (see primeHermite for the first call). Cost: one
// force-and-jerk walk per step after the first.
func HermiteStep(particles []*particle.Particle, tree *quadtree.Tree, dt, theta float64, workers int) {
	forEach(particles, workers, func(p *particle.Particle) {
		p.PredPosition = p.Position.
			Add(p.Velocity.Scale(dt)).
			Add(p.Acceleration.Scale(0.5 * dt * dt)).
			Add(p.Jerk.Scale(dt * dt * dt / 6.0))

		p.PredVelocity = p.Velocity.
			Add(p.Acceleration.Scale(dt)).
			Add(p.Jerk.Scale(0.5 * dt * dt))
	})

	oldAcc := make([]vectorPair, len(particles))
	forEach(particles, workers, func(p *particle.Particle) {
		p.Position, p.PredPosition = p.PredPosition, p.Position
		p.Velocity, p.PredVelocity = p.PredVelocity, p.Velocity
	})
	for i, p := range particles {
		oldAcc[i] = vectorPair{a: p.Acceleration, j: p.Jerk}
	}

	physics.GetAccelerationAndJerk(particles, tree, theta, workers)

	for i, p := range particles {
		a0, j0 := oldAcc[i].a, oldAcc[i].j
		a1, j1 := p.Acceleration, p.Jerk

		p.Position, p.PredPosition = p.PredPosition, p.Position
		p.Velocity, p.PredVelocity = p.PredVelocity, p.Velocity

		vOld := p.Velocity

		p.Velocity = vOld.
			Add(a0.Add(a1).Scale(0.5 * dt)).
			Add(j0.Sub(j1).Scale(dt * dt / 12.0))

		p.Position = p.Position.
			Add(vOld.Add(p.Velocity).Scale(0.5 * dt)).
			Add(a0.Sub(a1).Scale(dt * dt / 12.0))

		p.Acceleration = a1
		p.Jerk = j1
	}
}
