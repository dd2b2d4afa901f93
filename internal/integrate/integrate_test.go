package integrate

import (
	"math"
	"testing"

	"github.com/onnwee/nbody-core/internal/geom"
	"github.com/onnwee/nbody-core/internal/particle"
	"github.com/onnwee/nbody-core/internal/quadtree"
	"github.com/onnwee/nbody-core/internal/vector2"
)

// circularOrbitSystem returns a near-massless test particle at (1,0) with
// v=(0,1) orbiting a central mass of 1 at the origin — a unit circle
// under G=1. The central body's mass dwarfs the test particle's, so the
// reaction on it is negligible over the integration windows used here.
func circularOrbitSystem() []*particle.Particle {
	central := particle.New(0, 1.0, 1e-6)
	orbiter := particle.New(1, 1e-9, 1e-6)
	orbiter.Position = vector2.Vector2{X: 1, Y: 0}
	orbiter.Velocity = vector2.Vector2{X: 0, Y: 1}
	return []*particle.Particle{central, orbiter}
}

// orbitDT spreads 1000 steps over exactly one period (2π) of the unit
// circular orbit, so the orbiter ends where it started.
const orbitDT = 2 * math.Pi / 1000

func freshTree(particles []*particle.Particle) *quadtree.Tree {
	tree := quadtree.New(geom.New(-250, -250, 500, 500))
	for _, p := range particles {
		tree.Insert(p)
	}
	tree.CalculateCOM()
	return tree
}

func runSteps(t *testing.T, kind Kind, particles []*particle.Particle, dt float64, steps int) {
	cfg := &Config{Kind: kind, Theta: 1e-9, Workers: 1}
	for i := 0; i < steps; i++ {
		tree := freshTree(particles)
		if err := cfg.Dispatch(particles, tree, dt); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
}

func TestCircularOrbitHermite(t *testing.T) {
	particles := circularOrbitSystem()
	runSteps(t, Hermite, particles, orbitDT, 1000)

	final := particles[1].Position
	if d := final.Distance(vector2.Vector2{X: 1, Y: 0}); d > 1e-2 {
		t.Errorf("Hermite: final position %+v too far from start, distance=%v", final, d)
	}
}

func TestCircularOrbitYoshida(t *testing.T) {
	particles := circularOrbitSystem()
	runSteps(t, Yoshida, particles, orbitDT, 1000)

	final := particles[1].Position
	if d := final.Distance(vector2.Vector2{X: 1, Y: 0}); d > 1e-2 {
		t.Errorf("Yoshida: final position %+v too far from start, distance=%v", final, d)
	}
}

func TestCircularOrbitRK2(t *testing.T) {
	particles := circularOrbitSystem()
	runSteps(t, RK2, particles, orbitDT, 1000)

	final := particles[1].Position
	if d := final.Distance(vector2.Vector2{X: 1, Y: 0}); d > 2e-1 {
		t.Errorf("RK2: final position %+v too far from start, distance=%v", final, d)
	}
}

func TestYoshidaTimeReversible(t *testing.T) {
	particles := circularOrbitSystem()
	start := particles[1].Position
	startV := particles[1].Velocity

	runSteps(t, Yoshida, particles, 0.01, 50)
	runSteps(t, Yoshida, particles, -0.01, 50)

	if d := particles[1].Position.Distance(start); d > 1e-3 {
		t.Errorf("expected reversed trajectory to return near start, position delta=%v", d)
	}
	if dv := particles[1].Velocity.Distance(startV); dv > 1e-3 {
		t.Errorf("expected reversed trajectory to return near start velocity, delta=%v", dv)
	}
}

func twoBodyEnergy(particles []*particle.Particle) float64 {
	central, orbiter := particles[0], particles[1]
	kinetic := 0.5 * orbiter.Mass * orbiter.Velocity.Dot(orbiter.Velocity)
	r := central.Position.Distance(orbiter.Position)
	potential := -central.Mass * orbiter.Mass / r
	return kinetic + potential
}

func TestYoshidaEnergyDriftBounded(t *testing.T) {
	particles := circularOrbitSystem()
	e0 := twoBodyEnergy(particles)

	cfg := &Config{Kind: Yoshida, Theta: 1e-9, Workers: 1}
	dt := 0.01
	steps := 2000 // about three orbital periods (t = 20, period 2π) at this dt
	maxDrift := 0.0
	for i := 0; i < steps; i++ {
		tree := freshTree(particles)
		if err := cfg.Dispatch(particles, tree, dt); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		e := twoBodyEnergy(particles)
		drift := math.Abs((e - e0) / e0)
		if drift > maxDrift {
			maxDrift = drift
		}
	}

	if maxDrift > 0.05 {
		t.Errorf("Yoshida energy drift too large: %v", maxDrift)
	}
}

func TestDispatchUnknownIntegrator(t *testing.T) {
	particles := circularOrbitSystem()
	tree := freshTree(particles)
	cfg := &Config{Kind: Kind(99), Theta: 0.05, Workers: 1}

	err := cfg.Dispatch(particles, tree, 0.01)
	if err == nil {
		t.Fatal("expected an error for an unrecognised integrator kind")
	}
}

func TestHermiteRequiresPriming(t *testing.T) {
	particles := circularOrbitSystem()
	tree := freshTree(particles)
	cfg := &Config{Kind: Hermite, Theta: 1e-9, Workers: 1}

	if err := cfg.Dispatch(particles, tree, 0.01); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.primed {
		t.Error("expected first Hermite dispatch to prime acceleration/jerk")
	}
}
