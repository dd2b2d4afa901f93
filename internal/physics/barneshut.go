// Package physics implements the pairwise gravity/jerk kernel and the
// Barnes-Hut tree walk that consumes the quadtree's monopole summaries.
//
// GetAcceleration and GetAccelerationAndJerk are data-parallel: they
// partition the particle slice across a worker pool rather than spawning
// one goroutine per particle, mirroring the job-channel/WaitGroup pattern
// used for pairwise force calculation in an N-body worker pool.
package physics

import (
	"math"
	"runtime"
	"sync"

	"github.com/onnwee/nbody-core/internal/particle"
	"github.com/onnwee/nbody-core/internal/quadtree"
	"github.com/onnwee/nbody-core/internal/simconst"
	"github.com/onnwee/nbody-core/internal/vector2"
)

// Workers returns n clamped to at least 1, used wherever a caller-supplied
// worker count of 0 should fall back to GOMAXPROCS.
func Workers(n int) int {
	if n <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}

// forEachParticle partitions particles across workers goroutines fed from
// a shared job channel, blocking until every index has been visited.
func forEachParticle(particles []*particle.Particle, workers int, fn func(i int)) {
	n := len(particles)
	if n == 0 {
		return
	}
	workers = Workers(workers)
	if workers > n {
		workers = n
	}

	jobs := make(chan int, n)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				fn(i)
			}
		}()
	}
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}

// GetAcceleration zeroes each particle's acceleration accumulator and
// runs the Barnes-Hut walk once per particle against tree.
func GetAcceleration(particles []*particle.Particle, tree *quadtree.Tree, theta float64, workers int) {
	forEachParticle(particles, workers, func(i int) {
		p := particles[i]
		p.ZeroAcceleration()
		BarnesHutForce(p, tree, theta)
	})
}

// GetAccelerationAndJerk zeroes each particle's acceleration and jerk
// accumulators and runs the Barnes-Hut force-and-jerk walk once per
// particle against tree.
func GetAccelerationAndJerk(particles []*particle.Particle, tree *quadtree.Tree, theta float64, workers int) {
	forEachParticle(particles, workers, func(i int) {
		p := particles[i]
		p.ZeroAccelerationAndJerk()
		BarnesHutForceAndJerk(p, tree, theta)
	})
}

// pairForce returns the acceleration p1 feels due to p2, softened by the
// per-particle floor 2*p1.Radius to prevent a singularity at r=0.
func pairForce(p1, p2 *particle.Particle) vector2.Vector2 {
	diff := p1.Position.Sub(p2.Position)
	dist := math.Max(diff.Norm(), 2*p1.Radius)
	invR3 := 1.0 / (dist * dist * dist)
	return diff.Scale(-simconst.G * p2.Mass * invR3)
}

// pairForceAndJerk returns the acceleration and jerk contribution p2 makes
// to p1, softened by the sum of their radii.
func pairForceAndJerk(p1, p2 *particle.Particle) (acc, jerk vector2.Vector2) {
	r := p1.Position.Sub(p2.Position)
	v := p1.Velocity.Sub(p2.Velocity)
	rs := math.Max(r.Norm(), p1.Radius+p2.Radius)
	invR3 := 1.0 / (rs * rs * rs)
	accScale := -simconst.G * p2.Mass * invR3

	acc = r.Scale(accScale)
	jerk = v.Scale(accScale).Sub(r.Scale(3 * accScale * r.Dot(v) / (rs * rs)))
	return acc, jerk
}

// BarnesHutForce accumulates the gravitational acceleration on p from
// tree, opening cells when s < d*theta*node.ThetaScale and recursing or
// summing pairwise otherwise.
func BarnesHutForce(p *particle.Particle, tree *quadtree.Tree, theta float64) {
	if tree.TotalMass == 0 {
		return
	}

	diff := p.Position.Sub(tree.CenterOfMass)
	dist := math.Max(diff.Norm(), 2*p.Radius)
	s := tree.Bounds.Width

	if s < dist*theta*tree.ThetaScale {
		invR3 := 1.0 / (dist * dist * dist)
		p.Acceleration = p.Acceleration.Add(diff.Scale(-simconst.G * tree.TotalMass * invR3))
		return
	}

	if tree.Divided {
		for _, child := range tree.Children {
			BarnesHutForce(p, child, theta)
		}
		return
	}

	for _, q := range tree.Particles {
		if p.ID != q.ID {
			p.Acceleration = p.Acceleration.Add(pairForce(p, q))
		}
	}
}

// BarnesHutForceAndJerk is BarnesHutForce's 4th-order counterpart: it
// additionally accumulates jerk. The opened-cell jerk term deliberately
// ignores the cell's bulk velocity (the tree carries no COM-velocity
// summary) and is only correct up to the (diff·velocity) correction —
// the dominant error source of the Hermite integrator at long range.
func BarnesHutForceAndJerk(p *particle.Particle, tree *quadtree.Tree, theta float64) {
	if tree.TotalMass == 0 {
		return
	}

	diff := p.Position.Sub(tree.CenterOfMass)
	dist := math.Max(diff.Norm(), 2*p.Radius)
	s := tree.Bounds.Width

	if s < dist*theta*tree.ThetaScale {
		invR3 := 1.0 / (dist * dist * dist)
		accMag := -simconst.G * tree.TotalMass * invR3
		a := diff.Scale(accMag)
		p.Acceleration = p.Acceleration.Add(a)

		aMag := a.Norm()
		dist2 := dist * dist
		p.Jerk = p.Jerk.Sub(diff.Scale(3 * aMag * diff.Dot(p.Velocity) / dist2))
		return
	}

	if tree.Divided {
		for _, child := range tree.Children {
			BarnesHutForceAndJerk(p, child, theta)
		}
		return
	}

	for _, q := range tree.Particles {
		if p.ID != q.ID {
			acc, jerk := pairForceAndJerk(p, q)
			p.Acceleration = p.Acceleration.Add(acc)
			p.Jerk = p.Jerk.Add(jerk)
		}
	}
}
