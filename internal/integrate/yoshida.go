package integrate

import (
	"math"
	"sync"

	"github.com/onnwee/nbody-core/internal/particle"
	"github.com/onnwee/nbody-core/internal/physics"
	"github.com/onnwee/nbody-core/internal/quadtree"
)

var (
	yoshidaW0 = -math.Pow(2.0, 1.0/3.0) / (2.0 - math.Pow(2.0, 1.0/3.0))
	yoshidaW1 = 1.0 / (2.0 - math.Pow(2.0, 1.0/3.0))

	yoshidaC1 = yoshidaW1 / 2.0
	yoshidaC2 = (yoshidaW0 + yoshidaW1) / 2.0
	yoshidaC3 = yoshidaC2
	yoshidaC4 = yoshidaC1

	yoshidaD1 = yoshidaW1
	yoshidaD2 = yoshidaW0
	yoshidaD3 = yoshidaW1
)

func forEach(particles []*particle.Particle, workers int, fn func(p *particle.Particle)) {
	n := len(particles)
	if n == 0 {
		return
	}
	workers = physics.Workers(workers)
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		for _, p := range particles {
			fn(p)
		}
		return
	}

	jobs := make(chan *particle.Particle, n)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				fn(p)
			}
		}()
	}
	for _, p := range particles {
		jobs <- p
	}
	close(jobs)
	wg.Wait()
}

// drift advances position by the current velocity, scaled by dt.
func drift(particles []*particle.Particle, dt float64, workers int) {
	forEach(particles, workers, func(p *particle.Particle) {
		p.Position = p.Position.Add(p.Velocity.Scale(dt))
	})
}

// kick advances velocity by the current acceleration, scaled by dt.
func kick(particles []*particle.Particle, dt float64, workers int) {
	forEach(particles, workers, func(p *particle.Particle) {
		p.Velocity = p.Velocity.Add(p.Acceleration.Scale(dt))
	})
}

// YoshidaStep performs one 4th-order Yoshida symplectic integration step,
// alternating drift/force/kick across three stages plus a final drift.
// Cost: 3 force walks.
func YoshidaStep(particles []*particle.Particle, tree *quadtree.Tree, dt, theta float64, workers int) {
	drift(particles, yoshidaC1*dt, workers)
	physics.GetAcceleration(particles, tree, theta, workers)
	kick(particles, yoshidaD1*dt, workers)

	drift(particles, yoshidaC2*dt, workers)
	physics.GetAcceleration(particles, tree, theta, workers)
	kick(particles, yoshidaD2*dt, workers)

	drift(particles, yoshidaC3*dt, workers)
	physics.GetAcceleration(particles, tree, theta, workers)
	kick(particles, yoshidaD3*dt, workers)

	drift(particles, yoshidaC4*dt, workers)
}
