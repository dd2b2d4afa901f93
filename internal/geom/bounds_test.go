package geom

import (
	"testing"

	"github.com/onnwee/nbody-core/internal/vector2"
)

func TestContainsHalfOpen(t *testing.T) {
	b := New(0, 0, 10, 10)

	if !b.Contains(vector2.Vector2{X: 0, Y: 0}) {
		t.Error("expected (0,0) to be contained")
	}
	if b.Contains(vector2.Vector2{X: 10, Y: 0}) {
		t.Error("right edge must not be contained")
	}
	if b.Contains(vector2.Vector2{X: 0, Y: 10}) {
		t.Error("top edge must not be contained")
	}
	if b.Contains(vector2.Vector2{X: 9.999, Y: 9.999}) == false {
		t.Error("expected point just inside top-right to be contained")
	}
}

func TestIntersects(t *testing.T) {
	a := New(0, 0, 10, 10)
	b := New(10, 10, 10, 10) // touches at corner
	if !a.Intersects(b) {
		t.Error("edge-touching rectangles should intersect")
	}

	c := New(20, 20, 5, 5)
	if a.Intersects(c) {
		t.Error("disjoint rectangles should not intersect")
	}
}

func TestQuadrantsTile(t *testing.T) {
	b := New(0, 0, 10, 10)
	qs := b.Quadrants()

	var area float64
	for _, q := range qs {
		area += q.Width * q.Height
	}
	if area != b.Width*b.Height {
		t.Errorf("quadrants should tile parent area exactly, got %v want %v", area, b.Width*b.Height)
	}

	// NW is top-left, SE is bottom-right under a y-up convention.
	nw, se := qs[0], qs[3]
	if nw.Xmin != 0 || nw.Ymin != 5 {
		t.Errorf("NW quadrant anchor wrong: %+v", nw)
	}
	if se.Xmin != 5 || se.Ymin != 0 {
		t.Errorf("SE quadrant anchor wrong: %+v", se)
	}
}
