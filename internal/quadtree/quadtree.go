// Package quadtree implements the recursive spatial index that carries
// Barnes-Hut multipole summaries for the force kernel in internal/physics.
//
// A Tree node either holds up to simconst.MaxCapacity particles directly
// (a leaf) or has exactly four children tiling its bounds (divided). The
// tree holds non-owning references to particles: the particle collection
// itself is owned by the simulation driver, which is also the only thing
// that mutates the particle slice held outside of insertion/eviction.
package quadtree

import (
	"math"

	"github.com/onnwee/nbody-core/internal/geom"
	"github.com/onnwee/nbody-core/internal/particle"
	"github.com/onnwee/nbody-core/internal/simconst"
	"github.com/onnwee/nbody-core/internal/vector2"
)

// Tree is a single quadtree node. Children are stored in NW, NE, SW, SE
// order; Particles is non-empty only on a leaf.
type Tree struct {
	Bounds  geom.Bounds
	Depth   int
	Divided bool

	Particles []*particle.Particle
	Children  [4]*Tree

	TotalMass    float64
	CenterOfMass vector2.Vector2
	ThetaScale   float64

	Parent *Tree
}

// New constructs the root of a quadtree over bounds, at depth 1.
func New(bounds geom.Bounds) *Tree {
	return &Tree{Bounds: bounds, Depth: 1}
}

func newChild(bounds geom.Bounds, depth int, parent *Tree) *Tree {
	return &Tree{Bounds: bounds, Depth: depth, Parent: parent}
}

// Insert adds p to the tree, returning false without modifying the tree if
// p's position falls outside t's bounds. Callers that need to know about an
// escaped particle check the returned bool; Insert itself never errors.
func (t *Tree) Insert(p *particle.Particle) bool {
	if !t.Bounds.Contains(p.Position) {
		return false
	}

	if (!t.Divided && len(t.Particles) < simconst.MaxCapacity) || t.Depth == simconst.MaxDepth {
		t.Particles = append(t.Particles, p)
		return true
	}

	if !t.Divided {
		t.subdivide()
	}

	for _, child := range t.Children {
		if child.Insert(p) {
			return true
		}
	}
	return false
}

// subdivide splits bounds into four equal quadrants, creates four leaf
// children, and redistributes this node's current particles into
// whichever child accepts each one. A particle that no child accepts
// (degenerate equality on a split boundary) stays in this node's list.
func (t *Tree) subdivide() {
	quads := t.Bounds.Quadrants()
	for i, q := range quads {
		t.Children[i] = newChild(q, t.Depth+1, t)
	}
	t.Divided = true

	kept := t.Particles[:0]
	for _, p := range t.Particles {
		inserted := false
		for _, child := range t.Children {
			if child.Insert(p) {
				inserted = true
				break
			}
		}
		if !inserted {
			kept = append(kept, p)
		}
	}
	t.Particles = kept
}

// Query appends to out every particle within the tree whose position lies
// inside region.
func (t *Tree) Query(region geom.Bounds, out *[]*particle.Particle) {
	if !t.Bounds.Intersects(region) {
		return
	}
	if t.Divided {
		for _, child := range t.Children {
			child.Query(region, out)
		}
		return
	}
	for _, p := range t.Particles {
		if region.Contains(p.Position) {
			*out = append(*out, p)
		}
	}
}

// merge collapses four leaf children back into this node. It is only
// valid when t is divided and every child is itself a leaf.
func (t *Tree) merge() bool {
	if !t.Divided {
		return false
	}
	for _, child := range t.Children {
		if child.Divided {
			return false
		}
	}
	for _, child := range t.Children {
		t.Particles = append(t.Particles, child.Particles...)
	}
	t.Children = [4]*Tree{}
	t.Divided = false
	return true
}

// mergeIfNeeded collapses t's children back into t when every child is a
// leaf and their combined particle count falls under MaxCapacity.
func (t *Tree) mergeIfNeeded() {
	if !t.Divided {
		return
	}
	total := 0
	for _, child := range t.Children {
		if child.Divided {
			return
		}
		total += len(child.Particles)
	}
	if total < simconst.MaxCapacity {
		t.merge()
	}
}

// UpdateParticles migrates particles that have drifted outside their
// leaf's bounds into out, and coarsens the tree where children have
// shrunk below capacity. The caller is responsible for reinserting the
// evicted particles from the root — UpdateParticles only removes them
// from their current (now-wrong) leaf.
func (t *Tree) UpdateParticles(out *[]*particle.Particle) {
	if t.Divided {
		for _, child := range t.Children {
			child.UpdateParticles(out)
		}
		t.mergeIfNeeded()
		return
	}

	kept := t.Particles[:0]
	for _, p := range t.Particles {
		if t.Bounds.Contains(p.Position) {
			kept = append(kept, p)
		} else {
			*out = append(*out, p)
		}
	}
	t.Particles = kept
}

// PurgeMerged removes every particle with MarkForDeletion set from the
// tree and coarsens any node whose children have shrunk below capacity.
// It runs once per tick after collision resolution — without it, a
// particle absorbed by a merge would linger as a stale leaf entry,
// contributing its old mass to the next CalculateCOM and force walk.
func (t *Tree) PurgeMerged() {
	if t.Divided {
		for _, child := range t.Children {
			child.PurgeMerged()
		}
		t.mergeIfNeeded()
		return
	}

	kept := t.Particles[:0]
	for _, p := range t.Particles {
		if !p.MarkForDeletion {
			kept = append(kept, p)
		}
	}
	t.Particles = kept
}

// CalculateCOM performs a post-order rollup of total mass and centre of
// mass, and derives ThetaScale from the resulting TotalMass. Nodes with
// zero mass are left with ThetaScale undefined; the force walk in
// internal/physics must skip them rather than consult it.
func (t *Tree) CalculateCOM() {
	t.CenterOfMass = vector2.Zero
	t.TotalMass = 0

	if t.Divided {
		for _, child := range t.Children {
			child.CalculateCOM()
			newMass := t.TotalMass + child.TotalMass
			if newMass > 0 {
				t.CenterOfMass = t.CenterOfMass.Scale(t.TotalMass).
					Add(child.CenterOfMass.Scale(child.TotalMass)).
					Div(newMass)
			}
			t.TotalMass = newMass
		}
	} else {
		for _, p := range t.Particles {
			newMass := t.TotalMass + p.Mass
			t.CenterOfMass = t.CenterOfMass.Scale(t.TotalMass).
				Add(p.Position.Scale(p.Mass)).
				Div(newMass)
			t.TotalMass = newMass
		}
	}

	if t.TotalMass > 0 {
		t.ThetaScale = math.Pow(simconst.MassRef/t.TotalMass, simconst.ThetaAlpha)
	}
}
