// Package simconst holds the numeric constants shared across the
// simulation core: the force kernel, the integrators, and the tree.
package simconst

const (
	// G is the gravitational constant used throughout the force kernel.
	G = 1.0

	// MassRef is the reference mass used to scale a quadtree node's
	// opening angle by how much mass it carries.
	MassRef = 0.1

	// ThetaAlpha is the exponent applied to (MassRef / totalMass) when
	// deriving a node's ThetaScale.
	ThetaAlpha = 0.5

	// DefaultTheta is the Barnes-Hut opening angle the driver passes to
	// every force walk.
	DefaultTheta = 0.05

	// MaxCapacity is the maximum number of particles a leaf holds before
	// it subdivides, unless it is already at MaxDepth.
	MaxCapacity = 50

	// MaxDepth is the deepest a quadtree node may subdivide; at this
	// depth the capacity cap is waived rather than subdividing forever.
	MaxDepth = 15
)
