// Package collision implements the continuous-collision prediction and
// perfectly-inelastic merge pipeline that runs once per tick after the
// integrator step, querying the same quadtree the force kernel uses.
package collision

import (
	"math"
	"sync"

	"github.com/onnwee/nbody-core/internal/geom"
	"github.com/onnwee/nbody-core/internal/particle"
	"github.com/onnwee/nbody-core/internal/physics"
	"github.com/onnwee/nbody-core/internal/quadtree"
	"github.com/onnwee/nbody-core/internal/simconst"
	"github.com/onnwee/nbody-core/internal/vector2"
)

// Prediction is predictCollision's result.
type Prediction struct {
	WillCollide   bool
	CollisionTime float64
	MinDistance   float64
}

// searchRadius returns the velocity-aware half-width of p's neighbour query
// region for a step of size dt.
func searchRadius(p *particle.Particle, dt float64) float64 {
	return 2*p.Radius + p.Velocity.Norm()*dt
}

// CheckCollisions runs one data-parallel collision-resolution phase over
// particles, querying tree for neighbours and merging colliding pairs in
// place. After it returns, every particle with MarkForDeletion set has
// already had its mass and velocity absorbed into its surviving partner;
// the caller is responsible for compacting the slice.
func CheckCollisions(particles []*particle.Particle, tree *quadtree.Tree, dt float64, workers int) {
	n := len(particles)
	if n == 0 {
		return
	}
	workers = physics.Workers(workers)
	if workers > n {
		workers = n
	}

	jobs := make(chan int, n)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var scratch []*particle.Particle
			for i := range jobs {
				p := particles[i]
				if p.MarkForDeletion {
					continue
				}
				resolveOne(p, tree, dt, &scratch)
			}
		}()
	}
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}

// resolveOne queries tree for p's neighbours within its velocity-aware
// search radius and merges p with the first one predictCollision reports
// a collision against. Only the lower-id particle in a pair resolves the
// merge (neighbours with an id <= p's are skipped), so two workers racing
// on the same pair never double-merge it.
func resolveOne(p *particle.Particle, tree *quadtree.Tree, dt float64, scratch *[]*particle.Particle) {
	r := searchRadius(p, dt)
	region := geom.New(p.Position.X-r, p.Position.Y-r, 2*r, 2*r)

	*scratch = (*scratch)[:0]
	tree.Query(region, scratch)

	for _, q := range *scratch {
		if q.ID <= p.ID || q.MarkForDeletion || q == p {
			continue
		}
		pred := predictCollision(p, q, dt)
		if pred.WillCollide {
			merge(p, q)
			return
		}
	}
}

// merge performs the perfectly inelastic absorption of q into p: p gains
// q's momentum and mass, its radius grows to conserve volume, and q is
// marked for deletion, to be removed by the caller's next compaction pass.
func merge(p, q *particle.Particle) {
	m := p.Mass + q.Mass
	p.Velocity = q.Velocity.Scale(q.Mass).Add(p.Velocity.Scale(p.Mass)).Div(m)
	p.Radius = math.Pow(m/p.Mass, 1.0/3.0) * p.Radius
	p.Mass = m
	q.MarkForDeletion = true
}

// predictCollision samples the quadratic relative trajectory between p and
// q under constant (two-body, softened) relative acceleration over [0, dt],
// then refines around the coarse minimum to locate the first contact time.
func predictCollision(p, q *particle.Particle, dt float64) Prediction {
	r0 := p.Position.Sub(q.Position)
	v0 := p.Velocity.Sub(q.Velocity)
	R := p.Radius + q.Radius

	if r0.Norm() < 1.1*R {
		return Prediction{WillCollide: true, CollisionTime: 0, MinDistance: r0.Norm()}
	}

	rs := math.Max(r0.Norm(), R)
	accScale := -simconst.G * (p.Mass + q.Mass) / (rs * rs * rs)
	aRel := r0.Scale(accScale)

	trajectory := func(t float64) vector2.Vector2 {
		return r0.Add(v0.Scale(t)).Add(aRel.Scale(0.5 * t * t))
	}

	minDist := math.Inf(1)
	minT := 0.0
	collisionTime := -1.0
	haveCollisionTime := false

	sample := func(t float64) {
		d := trajectory(t).Norm()
		if d < minDist {
			minDist = d
			minT = t
		}
		if !haveCollisionTime && d < R {
			collisionTime = t
			haveCollisionTime = true
		}
	}

	for k := 0; k < 11; k++ {
		t := dt * float64(k) / 10.0
		sample(t)
	}

	for k := -2; k <= 2; k++ {
		t := minT + float64(k)*(dt/20.0)
		if t < 0 {
			t = 0
		}
		if t > dt {
			t = dt
		}
		sample(t)
	}

	if haveCollisionTime {
		return Prediction{WillCollide: true, CollisionTime: collisionTime, MinDistance: minDist}
	}
	return Prediction{WillCollide: minDist < R, CollisionTime: minT, MinDistance: minDist}
}

// Compact removes every particle marked for deletion, returning a slice
// that reuses particles' backing array. Order of survivors is preserved.
func Compact(particles []*particle.Particle) []*particle.Particle {
	kept := particles[:0]
	for _, p := range particles {
		if !p.MarkForDeletion {
			kept = append(kept, p)
		}
	}
	return kept
}
