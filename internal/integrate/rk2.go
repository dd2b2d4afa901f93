package integrate

import (
	"github.com/onnwee/nbody-core/internal/particle"
	"github.com/onnwee/nbody-core/internal/physics"
	"github.com/onnwee/nbody-core/internal/quadtree"
)

// RK2Step performs one 2nd-order Runge-Kutta (midpoint) integration step.
// The midpoint acceleration is evaluated on a scratch copy of each
// particle against the tree's current COM data — the tree itself is not
// rebuilt for the midpoint evaluation. Cost: 2 force walks.
func RK2Step(particles []*particle.Particle, tree *quadtree.Tree, dt, theta float64, workers int) {
	physics.GetAcceleration(particles, tree, theta, workers)

	forEach(particles, workers, func(p *particle.Particle) {
		mid := p.Copy()
		mid.Position = p.Position.Add(p.Velocity.Scale(dt)).Add(p.Acceleration.Scale(0.5 * dt * dt))

		mid.ZeroAcceleration()
		physics.BarnesHutForce(&mid, tree, theta)

		p.Velocity = p.Velocity.Add(p.Acceleration.Add(mid.Acceleration).Scale(0.5 * dt))
		p.Position = mid.Position
		p.Acceleration = mid.Acceleration
	})
}
