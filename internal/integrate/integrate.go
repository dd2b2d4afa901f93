// Package integrate implements the three time integrators the simulation
// driver can select between: 2nd-order Runge-Kutta midpoint, 4th-order
// Yoshida symplectic, and 4th-order Hermite predictor-corrector. All three
// consume the same quadtree and particle collection through
// internal/physics's Barnes-Hut walk.
package integrate

import (
	"fmt"

	"github.com/onnwee/nbody-core/internal/particle"
	"github.com/onnwee/nbody-core/internal/quadtree"
	"github.com/onnwee/nbody-core/internal/simerr"
)

// Kind selects which integrator a Config dispatches to. It is a plain
// struct field threaded through the driver rather than a process-wide
// global, so concurrent simulations never share integrator state.
type Kind int

const (
	RK2 Kind = iota
	Yoshida
	Hermite
)

func (k Kind) String() string {
	switch k {
	case RK2:
		return "RK2"
	case Yoshida:
		return "YOSHIDA"
	case Hermite:
		return "HERMITE"
	default:
		return "UNKNOWN"
	}
}

// Config is the simulation-wide integrator configuration threaded through
// the driver explicitly, rather than read from a global.
type Config struct {
	Kind    Kind
	Theta   float64
	Workers int

	// primed tracks whether Hermite's predictor has a prior force
	// evaluation to predict from; the first Hermite step must prime
	// acceleration and jerk with an ordinary evaluation first.
	primed bool
}

// Dispatch runs one timestep of dt using whichever integrator cfg.Kind
// names, returning a *simerr.ConfigurationError if the tag is not one of
// the known variants. This is the only error Dispatch ever returns, and
// it is fatal: the caller should terminate the step rather than retry it.
func (cfg *Config) Dispatch(particles []*particle.Particle, tree *quadtree.Tree, dt float64) error {
	switch cfg.Kind {
	case RK2:
		RK2Step(particles, tree, dt, cfg.Theta, cfg.Workers)
		return nil
	case Yoshida:
		YoshidaStep(particles, tree, dt, cfg.Theta, cfg.Workers)
		return nil
	case Hermite:
		if !cfg.primed {
			primeHermite(particles, tree, cfg.Theta, cfg.Workers)
			cfg.primed = true
		}
		HermiteStep(particles, tree, dt, cfg.Theta, cfg.Workers)
		return nil
	default:
		return simerr.NewUnknownIntegrator(fmt.Sprintf("%d", int(cfg.Kind)))
	}
}
