package detector

import (
	"math"
	"sort"

	"github.com/MeKo-Tech/framescan/internal/entities"
	"github.com/MeKo-Tech/framescan/internal/geometry"
)

// CandidateFinder extracts axis-aligned rectangle candidates from an entity
// stream. Closed polylines are preferred; when none qualify, rectangles are
// reconstructed from loose line segments so that frames drawn as disconnected
// fragments are still found.
type CandidateFinder struct {
	minDim   float64
	coordTol float64
	sinTol   float64
}

// NewCandidateFinder creates a finder with the given minimum frame dimension,
// coordinate clustering tolerance and orthogonality tolerance in degrees.
func NewCandidateFinder(minDim, coordTol, orthogonalityTolDeg float64) *CandidateFinder {
	return &CandidateFinder{
		minDim:   minDim,
		coordTol: coordTol,
		sinTol:   math.Sin(orthogonalityTolDeg * math.Pi / 180),
	}
}

// FindRectangles returns candidate rectangles sorted by area descending.
func (f *CandidateFinder) FindRectangles(c *entities.Collection) []geometry.Rect {
	var candidates []geometry.Rect

	for _, p := range c.Polylines() {
		if !p.Closed {
			continue
		}
		r, ok := f.polylineRect(p)
		if ok && f.validSize(r) {
			candidates = append(candidates, r)
		}
	}

	if len(candidates) == 0 {
		candidates = f.rebuildFromLines(c.Lines())
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Area() > candidates[j].Area()
	})
	return candidates
}

// polylineRect accepts a closed polyline only if coordinate clustering yields
// exactly two distinct x values and two distinct y values, i.e. the polyline
// is a true axis-aligned box rather than an arbitrary polygon.
func (f *CandidateFinder) polylineRect(p entities.Polyline) (geometry.Rect, bool) {
	if len(p.Points) < 4 {
		return geometry.Rect{}, false
	}
	xs := make([]float64, len(p.Points))
	ys := make([]float64, len(p.Points))
	for i, pt := range p.Points {
		xs[i] = pt.X
		ys[i] = pt.Y
	}
	cx := f.clusterCoords(xs)
	cy := f.clusterCoords(ys)
	if len(cx) != 2 || len(cy) != 2 {
		return geometry.Rect{}, false
	}
	return geometry.NewRect(cx[0], cy[0], cx[1], cy[1]), true
}

// clusterCoords groups near-equal values within the coordinate tolerance and
// returns one mean per cluster, ascending.
func (f *CandidateFinder) clusterCoords(values []float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var means []float64
	sum, count := sorted[0], 1.0
	last := sorted[0]
	for _, v := range sorted[1:] {
		if v-last <= f.coordTol {
			sum += v
			count++
		} else {
			means = append(means, sum/count)
			sum, count = v, 1
		}
		last = v
	}
	return append(means, sum/count)
}

func (f *CandidateFinder) validSize(r geometry.Rect) bool {
	return r.Width() >= f.minDim && r.Height() >= f.minDim
}

// axisSegment is a horizontal or vertical segment: a constant coordinate plus
// an interval along the free axis.
type axisSegment struct {
	coord float64
	start float64
	end   float64
}

type interval struct {
	start float64
	end   float64
}

// rebuildFromLines reconstructs rectangles from loose line segments: classify
// each segment as horizontal or vertical, cluster parallel segments by their
// constant coordinate, then accept every pair-of-pairs whose four implied
// edges have continuous coverage.
func (f *CandidateFinder) rebuildFromLines(lines []entities.Line) []geometry.Rect {
	var horizontal, vertical []axisSegment

	for _, ln := range lines {
		dx := ln.End.X - ln.Start.X
		dy := ln.End.Y - ln.Start.Y
		length := math.Hypot(dx, dy)
		if length <= 0 {
			continue
		}
		switch {
		case math.Abs(dy) <= f.coordTol || math.Abs(dy)/length <= f.sinTol:
			left, right := math.Min(ln.Start.X, ln.End.X), math.Max(ln.Start.X, ln.End.X)
			horizontal = append(horizontal, axisSegment{coord: (ln.Start.Y + ln.End.Y) / 2, start: left, end: right})
		case math.Abs(dx) <= f.coordTol || math.Abs(dx)/length <= f.sinTol:
			bottom, top := math.Min(ln.Start.Y, ln.End.Y), math.Max(ln.Start.Y, ln.End.Y)
			vertical = append(vertical, axisSegment{coord: (ln.Start.X + ln.End.X) / 2, start: bottom, end: top})
		}
	}

	hClusters := f.clusterSegments(horizontal)
	vClusters := f.clusterSegments(vertical)

	ys := sortedKeys(hClusters)
	xs := sortedKeys(vClusters)

	var rects []geometry.Rect
	seen := make(map[[4]float64]struct{})

	for yi, y1 := range ys {
		for _, y2 := range ys[yi+1:] {
			if y2-y1 < f.minDim {
				continue
			}
			for xi, x1 := range xs {
				for _, x2 := range xs[xi+1:] {
					if x2-x1 < f.minDim {
						continue
					}
					if !f.hasEdge(hClusters[y1], x1, x2) ||
						!f.hasEdge(hClusters[y2], x1, x2) ||
						!f.hasEdge(vClusters[x1], y1, y2) ||
						!f.hasEdge(vClusters[x2], y1, y2) {
						continue
					}
					key := [4]float64{round3(x1), round3(y1), round3(x2), round3(y2)}
					if _, dup := seen[key]; dup {
						continue
					}
					seen[key] = struct{}{}
					rects = append(rects, geometry.Rect{MinX: x1, MinY: y1, MaxX: x2, MaxY: y2})
				}
			}
		}
	}
	return rects
}

// clusterSegments groups parallel segments whose constant coordinate is
// within the tolerance, keeping a running mean per cluster, and merges the
// covered intervals along the free axis.
func (f *CandidateFinder) clusterSegments(segments []axisSegment) map[float64][]interval {
	if len(segments) == 0 {
		return nil
	}
	sort.Slice(segments, func(i, j int) bool { return segments[i].coord < segments[j].coord })

	type cluster struct {
		coord     float64
		count     int
		intervals []interval
	}
	var clusters []*cluster
	for _, s := range segments {
		if len(clusters) == 0 || math.Abs(s.coord-clusters[len(clusters)-1].coord) > f.coordTol {
			clusters = append(clusters, &cluster{coord: s.coord, count: 1, intervals: []interval{{s.start, s.end}}})
			continue
		}
		c := clusters[len(clusters)-1]
		c.intervals = append(c.intervals, interval{s.start, s.end})
		c.coord = (c.coord*float64(c.count) + s.coord) / float64(c.count+1)
		c.count++
	}

	merged := make(map[float64][]interval, len(clusters))
	for _, c := range clusters {
		merged[c.coord] = f.mergeIntervals(c.intervals)
	}
	return merged
}

func (f *CandidateFinder) mergeIntervals(ivs []interval) []interval {
	if len(ivs) == 0 {
		return nil
	}
	sorted := append([]interval(nil), ivs...)
	for i, iv := range sorted {
		if iv.start > iv.end {
			sorted[i] = interval{iv.end, iv.start}
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].start < sorted[j].start })

	out := []interval{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &out[len(out)-1]
		if iv.start <= last.end+f.coordTol {
			if iv.end > last.end {
				last.end = iv.end
			}
		} else {
			out = append(out, iv)
		}
	}
	return out
}

// hasEdge reports whether one merged interval fully covers [start, end]
// within the coordinate tolerance.
func (f *CandidateFinder) hasEdge(ivs []interval, start, end float64) bool {
	for _, iv := range ivs {
		if iv.start <= start+f.coordTol && iv.end >= end-f.coordTol {
			return true
		}
	}
	return false
}

func sortedKeys(m map[float64][]interval) []float64 {
	keys := make([]float64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Float64s(keys)
	return keys
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
