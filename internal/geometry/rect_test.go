package geometry

import "testing"

func TestNewRectOrdersCoordinates(t *testing.T) {
	r := NewRect(10, 20, 0, 5)
	if r.MinX != 0 || r.MinY != 5 || r.MaxX != 10 || r.MaxY != 20 {
		t.Fatalf("unexpected rect: %+v", r)
	}
	if r.Width() != 10 || r.Height() != 15 {
		t.Fatalf("unexpected dimensions: w=%f h=%f", r.Width(), r.Height())
	}
}

func TestIntersects(t *testing.T) {
	a := NewRect(0, 0, 10, 10)
	tests := []struct {
		name string
		b    Rect
		want bool
	}{
		{"overlapping", NewRect(5, 5, 15, 15), true},
		{"touching edge", NewRect(10, 0, 20, 10), true},
		{"disjoint", NewRect(11, 11, 20, 20), false},
		{"contained", NewRect(2, 2, 8, 8), true},
	}
	for _, tt := range tests {
		if got := a.Intersects(tt.b); got != tt.want {
			t.Fatalf("%s: Intersects = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestContainsPoint(t *testing.T) {
	r := NewRect(0, 0, 10, 10)
	if !r.ContainsPoint(5, 5) {
		t.Fatalf("interior point not contained")
	}
	if !r.ContainsPoint(0, 10) {
		t.Fatalf("edge point not contained")
	}
	if r.ContainsPoint(-0.1, 5) {
		t.Fatalf("exterior point reported contained")
	}
}

func TestGap(t *testing.T) {
	a := NewRect(0, 0, 10, 10)

	// Touching edge-to-edge: zero gap on both axes.
	b := NewRect(10, 0, 20, 10)
	dx, dy := a.Gap(b)
	if dx != 0 || dy != 0 {
		t.Fatalf("touching rects gap = (%f, %f), want (0, 0)", dx, dy)
	}

	c := NewRect(15, 12, 25, 20)
	dx, dy = a.Gap(c)
	if dx != 5 || dy != 2 {
		t.Fatalf("gap = (%f, %f), want (5, 2)", dx, dy)
	}
}

func TestExpand(t *testing.T) {
	r := NewRect(0, 0, 10, 20)
	e := r.Expand(0.1)
	if e.MinX != -1 || e.MaxX != 11 || e.MinY != -2 || e.MaxY != 22 {
		t.Fatalf("unexpected expanded rect: %+v", e)
	}
	if r.Expand(0) != r {
		t.Fatalf("zero margin should be a no-op")
	}
}
