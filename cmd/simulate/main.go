package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	yaml "go.yaml.in/yaml/v2"

	"github.com/onnwee/nbody-core/internal/config"
	"github.com/onnwee/nbody-core/internal/errorreporting"
	"github.com/onnwee/nbody-core/internal/integrate"
	"github.com/onnwee/nbody-core/internal/logger"
	"github.com/onnwee/nbody-core/internal/particle"
	"github.com/onnwee/nbody-core/internal/server"
	"github.com/onnwee/nbody-core/internal/simulation"
	"github.com/onnwee/nbody-core/internal/tracing"
	"github.com/onnwee/nbody-core/internal/vector2"
)

// scenario carries only numeric run parameters read from an optional
// scenario.yaml; it never describes initial conditions, which stay the
// job of seedParticles (or an external collaborator feeding Seed).
type scenario struct {
	Integrator      string  `yaml:"integrator"`
	Theta           float64 `yaml:"theta"`
	DT              float64 `yaml:"dt"`
	BoundsHalfWidth float64 `yaml:"bounds_half_width"`
	ParticleCount   int     `yaml:"particle_count"`
	CentralMass     float64 `yaml:"central_mass"`
}

func main() {
	scenarioPath := flag.String("scenario", "", "path to a scenario.yaml overriding env-derived run parameters")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "no .env file found, falling back to system env")
	}

	cfg := config.Load()
	logger.Init(cfg.LogLevel)
	log := logger.WithComponent("main")

	if err := errorreporting.Init(cfg.SentryEnvironment); err != nil {
		log.Error("failed to initialize error reporting", "error", err)
	}

	shutdownTracing, err := tracing.Init("nbody-core")
	if err != nil {
		log.Error("failed to initialize tracing", "error", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(ctx)
	}()

	sc := loadScenario(*scenarioPath, cfg)
	cfg.DT = sc.DT // scenario.yaml's dt, if any, overrides the env-derived default

	kind, err := parseIntegratorKind(sc.Integrator)
	if err != nil {
		log.Error("unrecognized integrator kind", "kind", sc.Integrator, "error", err)
		errorreporting.CaptureError(err)
		os.Exit(1)
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = 4
	}

	sim := simulation.New(sc.BoundsHalfWidth, kind, sc.Theta, workers)
	sim.Seed(seedParticles(sc))

	log.Info("simulation seeded",
		"run_id", sim.RunID,
		"particles", len(sim.Particles),
		"integrator", kind.String(),
		"theta", sc.Theta,
		"bounds_half_width", sc.BoundsHalfWidth,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, sim)
	if err := srv.Run(ctx); err != nil {
		log.Error("server exited with error", "error", err)
		errorreporting.CaptureError(err)
		os.Exit(1)
	}

	log.Info("shutdown complete", "run_id", sim.RunID, "steps", sim.StepCount)
}

func loadScenario(path string, cfg *config.Config) scenario {
	sc := scenario{
		Integrator:      cfg.IntegratorKind,
		Theta:           cfg.Theta,
		DT:              cfg.DT,
		BoundsHalfWidth: cfg.BoundsHalfWidth,
		ParticleCount:   2000,
		CentralMass:     1e6,
	}
	if path == "" {
		return sc
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		logger.WithComponent("main").Warn("failed to read scenario file, using env-derived defaults", "path", path, "error", err)
		return sc
	}
	if err := yaml.Unmarshal(raw, &sc); err != nil {
		logger.WithComponent("main").Warn("failed to parse scenario file, using env-derived defaults", "path", path, "error", err)
		return scenario{
			Integrator:      cfg.IntegratorKind,
			Theta:           cfg.Theta,
			DT:              cfg.DT,
			BoundsHalfWidth: cfg.BoundsHalfWidth,
			ParticleCount:   2000,
			CentralMass:     1e6,
		}
	}
	return sc
}

func parseIntegratorKind(name string) (integrate.Kind, error) {
	switch name {
	case "RK2":
		return integrate.RK2, nil
	case "YOSHIDA":
		return integrate.Yoshida, nil
	case "HERMITE":
		return integrate.Hermite, nil
	default:
		return integrate.Yoshida, fmt.Errorf("unrecognized integrator kind %q", name)
	}
}

// seedParticles places a central mass at the origin and scatters the
// remaining bodies on randomized circular orbits around it. Generating
// realistic initial conditions (galaxy profiles, Plummer spheres, and so
// on) is left to an external collaborator; this is just enough to get a
// stable, non-degenerate system off the ground for local runs and demos.
func seedParticles(sc scenario) []*particle.Particle {
	rng := rand.New(rand.NewSource(1))

	particles := make([]*particle.Particle, 0, sc.ParticleCount+1)

	central := particle.New(0, sc.CentralMass, 1.0)
	particles = append(particles, central)

	minRadius := sc.BoundsHalfWidth * 0.05
	maxRadius := sc.BoundsHalfWidth * 0.9

	for i := 1; i <= sc.ParticleCount; i++ {
		r := minRadius + rng.Float64()*(maxRadius-minRadius)
		theta := rng.Float64() * 2 * math.Pi

		pos := vector2.Vector2{X: r * math.Cos(theta), Y: r * math.Sin(theta)}
		speed := math.Sqrt(sc.CentralMass / r)
		vel := vector2.Vector2{X: -speed * math.Sin(theta), Y: speed * math.Cos(theta)}

		p := particle.New(i, 1.0+rng.Float64(), 0.1)
		p.Position = pos
		p.Velocity = vel
		particles = append(particles, p)
	}

	return particles
}
