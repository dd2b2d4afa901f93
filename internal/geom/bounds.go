// Package geom implements the axis-aligned rectangle used to bound
// quadtree nodes and collision/neighbour query regions.
package geom

import "github.com/onnwee/nbody-core/internal/vector2"

// Bounds is an axis-aligned rectangle anchored at (Xmin, Ymin) with the
// given Width and Height. Contains is half-open: the right and top edges
// belong to the neighbouring region, not this one.
type Bounds struct {
	Xmin, Ymin, Width, Height float64
}

// New constructs a Bounds from its anchor and extent.
func New(xmin, ymin, width, height float64) Bounds {
	return Bounds{Xmin: xmin, Ymin: ymin, Width: width, Height: height}
}

// Left, Right, Bottom, Top are the rectangle's edges.
func (b Bounds) Left() float64   { return b.Xmin }
func (b Bounds) Right() float64  { return b.Xmin + b.Width }
func (b Bounds) Bottom() float64 { return b.Ymin }
func (b Bounds) Top() float64    { return b.Ymin + b.Height }

// Contains reports whether p lies within b, half-open on the right and top
// edges: p.X in [Xmin, Xmin+Width), p.Y in [Ymin, Ymin+Height).
func (b Bounds) Contains(p vector2.Vector2) bool {
	return p.X >= b.Xmin && p.X < b.Xmin+b.Width &&
		p.Y >= b.Ymin && p.Y < b.Ymin+b.Height
}

// Intersects reports whether b and other overlap, including edge-touching.
func (b Bounds) Intersects(other Bounds) bool {
	return !(b.Left() > other.Right() || b.Right() < other.Left() ||
		b.Top() < other.Bottom() || b.Bottom() > other.Top())
}

// Quadrants splits b into four equal quadrants in NW, NE, SW, SE order.
func (b Bounds) Quadrants() [4]Bounds {
	halfW := b.Width / 2
	halfH := b.Height / 2
	return [4]Bounds{
		New(b.Xmin, b.Ymin+halfH, halfW, halfH), // NW
		New(b.Xmin+halfW, b.Ymin+halfH, halfW, halfH), // NE
		New(b.Xmin, b.Ymin, halfW, halfH),             // SW
		New(b.Xmin+halfW, b.Ymin, halfW, halfH),       // SE
	}
}
