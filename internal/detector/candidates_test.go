package detector

import (
	"math"
	"testing"

	"github.com/MeKo-Tech/framescan/internal/entities"
	"github.com/MeKo-Tech/framescan/internal/geometry"
)

func newTestFinder() *CandidateFinder {
	return NewCandidateFinder(100, 0.5, 1.0)
}

func closedBox(x1, y1, x2, y2 float64) entities.Polyline {
	return entities.Polyline{
		Points: []geometry.Point{{X: x1, Y: y1}, {X: x2, Y: y1}, {X: x2, Y: y2}, {X: x1, Y: y2}},
		Closed: true,
	}
}

func TestFindRectanglesClosedPolyline(t *testing.T) {
	col := &entities.Collection{Entities: []entities.Entity{closedBox(0, 0, 420, 297)}}

	rects := newTestFinder().FindRectangles(col)
	if len(rects) != 1 {
		t.Fatalf("expected 1 rectangle, got %d", len(rects))
	}
	want := geometry.NewRect(0, 0, 420, 297)
	if rects[0] != want {
		t.Errorf("rectangle = %+v, want %+v", rects[0], want)
	}
}

func TestFindRectanglesIgnoresOpenPolyline(t *testing.T) {
	open := closedBox(0, 0, 420, 297)
	open.Closed = false
	col := &entities.Collection{Entities: []entities.Entity{open}}

	if rects := newTestFinder().FindRectangles(col); len(rects) != 0 {
		t.Fatalf("expected no rectangles from open polyline, got %d", len(rects))
	}
}

func TestFindRectanglesRejectsNonRectangularPolygon(t *testing.T) {
	// L-shape: three distinct x clusters.
	poly := entities.Polyline{
		Points: []geometry.Point{
			{X: 0, Y: 0}, {X: 400, Y: 0}, {X: 400, Y: 150},
			{X: 200, Y: 150}, {X: 200, Y: 300}, {X: 0, Y: 300},
		},
		Closed: true,
	}
	col := &entities.Collection{Entities: []entities.Entity{poly}}

	if rects := newTestFinder().FindRectangles(col); len(rects) != 0 {
		t.Fatalf("expected L-shape to be rejected, got %d rectangles", len(rects))
	}
}

func TestFindRectanglesRejectsTooSmall(t *testing.T) {
	col := &entities.Collection{Entities: []entities.Entity{closedBox(0, 0, 50, 50)}}

	if rects := newTestFinder().FindRectangles(col); len(rects) != 0 {
		t.Fatalf("expected sub-minimum box to be rejected, got %d rectangles", len(rects))
	}
}

func TestFindRectanglesToleratesVertexJitter(t *testing.T) {
	poly := entities.Polyline{
		Points: []geometry.Point{
			{X: 0.1, Y: 0}, {X: 420, Y: 0.2}, {X: 419.8, Y: 297}, {X: 0, Y: 296.9},
		},
		Closed: true,
	}
	col := &entities.Collection{Entities: []entities.Entity{poly}}

	rects := newTestFinder().FindRectangles(col)
	if len(rects) != 1 {
		t.Fatalf("expected jittered box to be accepted, got %d rectangles", len(rects))
	}
	if math.Abs(rects[0].Width()-419.85) > 0.5 || math.Abs(rects[0].Height()-296.85) > 0.5 {
		t.Errorf("unexpected rectangle %+v", rects[0])
	}
}

func TestFindRectanglesSortedByAreaDescending(t *testing.T) {
	col := &entities.Collection{Entities: []entities.Entity{
		closedBox(1000, 1000, 1210, 1297),
		closedBox(0, 0, 841, 594),
		closedBox(2000, 2000, 2420, 2297),
	}}

	rects := newTestFinder().FindRectangles(col)
	if len(rects) != 3 {
		t.Fatalf("expected 3 rectangles, got %d", len(rects))
	}
	for i := 1; i < len(rects); i++ {
		if rects[i].Area() > rects[i-1].Area() {
			t.Fatalf("rectangles not sorted by area: %v before %v", rects[i-1], rects[i])
		}
	}
}

func lineSeg(x1, y1, x2, y2 float64) entities.Line {
	return entities.Line{Start: geometry.Point{X: x1, Y: y1}, End: geometry.Point{X: x2, Y: y2}}
}

func TestRebuildFromLinesSimpleBox(t *testing.T) {
	col := &entities.Collection{Entities: []entities.Entity{
		lineSeg(0, 0, 420, 0),
		lineSeg(0, 297, 420, 297),
		lineSeg(0, 0, 0, 297),
		lineSeg(420, 0, 420, 297),
	}}

	rects := newTestFinder().FindRectangles(col)
	if len(rects) != 1 {
		t.Fatalf("expected 1 rebuilt rectangle, got %d", len(rects))
	}
	r := rects[0]
	if math.Abs(r.Width()-420) > 0.1 || math.Abs(r.Height()-297) > 0.1 {
		t.Errorf("rebuilt rectangle = %+v", r)
	}
}

func TestRebuildFromLinesFragmentedEdges(t *testing.T) {
	// Bottom edge drawn as two touching segments, top edge reversed.
	col := &entities.Collection{Entities: []entities.Entity{
		lineSeg(0, 0, 250, 0),
		lineSeg(250, 0, 420, 0),
		lineSeg(420, 297, 0, 297),
		lineSeg(0, 297, 0, 0),
		lineSeg(420, 0, 420, 297),
	}}

	rects := newTestFinder().FindRectangles(col)
	if len(rects) != 1 {
		t.Fatalf("expected fragmented edges to merge into 1 rectangle, got %d", len(rects))
	}
}

func TestRebuildFromLinesRejectsGappedEdge(t *testing.T) {
	// Bottom edge has a 50-unit hole, so its coverage is not continuous.
	col := &entities.Collection{Entities: []entities.Entity{
		lineSeg(0, 0, 180, 0),
		lineSeg(230, 0, 420, 0),
		lineSeg(0, 297, 420, 297),
		lineSeg(0, 0, 0, 297),
		lineSeg(420, 0, 420, 297),
	}}

	if rects := newTestFinder().FindRectangles(col); len(rects) != 0 {
		t.Fatalf("expected gapped edge to be rejected, got %d rectangles", len(rects))
	}
}

func TestRebuildFromLinesIgnoresDiagonals(t *testing.T) {
	col := &entities.Collection{Entities: []entities.Entity{
		lineSeg(0, 0, 420, 0),
		lineSeg(0, 297, 420, 297),
		lineSeg(0, 0, 0, 297),
		lineSeg(420, 0, 420, 297),
		lineSeg(0, 0, 420, 297),
	}}

	rects := newTestFinder().FindRectangles(col)
	if len(rects) != 1 {
		t.Fatalf("expected diagonal to be ignored, got %d rectangles", len(rects))
	}
}

func TestPolylinePreferredOverLines(t *testing.T) {
	// When a closed polyline qualifies, loose lines are not consulted.
	col := &entities.Collection{Entities: []entities.Entity{
		closedBox(0, 0, 420, 297),
		lineSeg(1000, 1000, 1420, 1000),
		lineSeg(1000, 1297, 1420, 1297),
		lineSeg(1000, 1000, 1000, 1297),
		lineSeg(1420, 1000, 1420, 1297),
	}}

	rects := newTestFinder().FindRectangles(col)
	if len(rects) != 1 {
		t.Fatalf("expected only the polyline rectangle, got %d", len(rects))
	}
	if rects[0].MinX != 0 {
		t.Errorf("unexpected rectangle %+v", rects[0])
	}
}
