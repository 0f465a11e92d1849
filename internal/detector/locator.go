package detector

import (
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/MeKo-Tech/framescan/internal/config"
	"github.com/MeKo-Tech/framescan/internal/entities"
	"github.com/MeKo-Tech/framescan/internal/frame"
	"github.com/MeKo-Tech/framescan/internal/geometry"
)

// AnchorFirstLocator finds frames by scanning for anchor text first, then
// testing which fitted candidate's anchor ROI contains each hit. When the
// winning candidate is an A4 sheet, its spatial adjacency cluster is pulled
// in as well; A4 slave pages carry no anchor text of their own.
type AnchorFirstLocator struct {
	det       *config.Detection
	gapFactor float64
	finder    *CandidateFinder
	fitter    *PaperFitter
}

// NewAnchorFirstLocator creates a locator from the detection configuration
// and the A4 adjacency gap factor.
func NewAnchorFirstLocator(det *config.Detection, gapFactor float64) *AnchorFirstLocator {
	return &AnchorFirstLocator{
		det:       det,
		gapFactor: gapFactor,
		finder: NewCandidateFinder(
			det.MinFrameDim,
			det.Tolerances.Coord,
			det.Tolerances.OrthogonalityDeg,
		),
		fitter: NewPaperFitter(det.Fit),
	}
}

// LocateFrames runs anchor-first location over one entity collection. The
// returned flags report traversal anomalies (depth-limited block inserts);
// frames that cannot be located are simply absent, never an error.
func (l *AnchorFirstLocator) LocateFrames(col *entities.Collection) ([]*frame.Meta, []string) {
	items, flags := entities.CollectTextItems(col, l.det.Anchor.MaxInsertDepth)

	var primary, secondary []entities.TextItem
	for _, it := range items {
		if matchAnchorText(it.Text, l.det.Anchor.PrimaryText) {
			primary = append(primary, it)
		}
		if matchAnchorText(it.Text, l.det.Anchor.SecondaryText) {
			secondary = append(secondary, it)
		}
	}

	candidates := l.BuildCandidates(col)
	if len(candidates) == 0 {
		return nil, flags
	}

	clusters := clusterLookup(buildA4Clusters(a4Candidates(candidates), l.gapFactor))

	var frames []*frame.Meta
	used := make(map[[4]float64]struct{})

	for i, hit := range primary {
		matches := l.matchingCandidates(hit, secondary, candidates)
		if len(matches) == 0 {
			slog.Warn("anchor hit without matching frame candidate",
				"anchor", i+1, "text", hit.Text, "x", hit.X, "y", hit.Y)
			continue
		}

		selected := matches[0]
		for _, m := range matches[1:] {
			if m.FitError < selected.FitError ||
				(m.FitError == selected.FitError && m.Area() < selected.Area()) {
				selected = m
			}
		}
		appendCandidateFrame(selected, col.Source, &frames, used)

		// A4 slave pages join via spatial adjacency, no anchor required.
		if selected.IsA4() {
			for _, cand := range clusters[selected.key()] {
				appendCandidateFrame(cand, col.Source, &frames, used)
			}
		}
	}
	return frames, flags
}

// BuildCandidates fits every found rectangle against the paper catalog and
// restores its anchor ROI. Candidates whose profile lacks an anchor field are
// dropped. Results are ordered by area descending and capped at the
// configured maximum.
func (l *AnchorFirstLocator) BuildCandidates(col *entities.Collection) []*Candidate {
	var candidates []*Candidate
	for _, bbox := range l.finder.FindRectangles(col) {
		fit, ok := l.fitter.Fit(bbox, l.det.Papers)
		if !ok {
			continue
		}
		profile := l.det.Profile(fit.ProfileID)
		if profile == nil {
			continue
		}
		offsets, ok := profile.Fields[l.det.Anchor.ROIField]
		if !ok || len(offsets) != 4 {
			continue
		}
		roi := RestoreROI(bbox, offsets, fit.SX, fit.SY).Expand(l.det.Tolerances.ROIMarginPercent)
		candidates = append(candidates, &Candidate{
			BBox:           bbox,
			PaperVariantID: fit.PaperID,
			SX:             fit.SX,
			SY:             fit.SY,
			ROIProfileID:   fit.ProfileID,
			AnchorROI:      roi,
			FitError:       fit.FitError,
		})
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Area() > candidates[j].Area() })
	if l.det.MaxCandidates > 0 && len(candidates) > l.det.MaxCandidates {
		candidates = candidates[:l.det.MaxCandidates]
	}
	return candidates
}

func (l *AnchorFirstLocator) matchingCandidates(hit entities.TextItem, secondary []entities.TextItem, candidates []*Candidate) []*Candidate {
	var matches []*Candidate
	for _, cand := range candidates {
		if !textInROI(hit, cand.AnchorROI) {
			continue
		}
		if l.det.Anchor.MatchPolicy == config.MatchDoubleHit && !roiHasText(secondary, cand.AnchorROI) {
			continue
		}
		matches = append(matches, cand)
	}
	return matches
}

// textInROI tests the insertion point first and falls back to the estimated
// extent rectangle; the extent is a heuristic and only used for containment.
func textInROI(it entities.TextItem, roi geometry.Rect) bool {
	return roi.ContainsPoint(it.X, it.Y) || roi.Intersects(it.Extent)
}

func roiHasText(items []entities.TextItem, roi geometry.Rect) bool {
	for _, it := range items {
		if textInROI(it, roi) {
			return true
		}
	}
	return false
}

func appendCandidateFrame(c *Candidate, source string, frames *[]*frame.Meta, used map[[4]float64]struct{}) {
	key := c.key()
	if _, dup := used[key]; dup {
		return
	}
	used[key] = struct{}{}
	*frames = append(*frames, candidateToMeta(c, source))
}

func candidateToMeta(c *Candidate, source string) *frame.Meta {
	return &frame.Meta{
		Runtime: frame.Runtime{
			FrameID:         uuid.NewString(),
			SourceFile:      source,
			OuterBBox:       c.BBox,
			PaperVariantID:  c.PaperVariantID,
			SX:              c.SX,
			SY:              c.SY,
			GeomScaleFactor: (c.SX + c.SY) / 2,
			ROIProfileID:    c.ROIProfileID,
		},
	}
}

func a4Candidates(candidates []*Candidate) []*Candidate {
	var out []*Candidate
	for _, c := range candidates {
		if c.IsA4() {
			out = append(out, c)
		}
	}
	return out
}

// buildA4Clusters groups A4 candidates into connected components of the
// adjacency graph defined by the gap-factor neighbor rule.
func buildA4Clusters(a4 []*Candidate, gapFactor float64) [][]*Candidate {
	if len(a4) == 0 {
		return nil
	}
	n := len(a4)
	adj := make([][]int, n)
	for i := range n {
		for j := i + 1; j < n; j++ {
			if rectsAreNeighbors(a4[i].BBox, a4[j].BBox, gapFactor) {
				adj[i] = append(adj[i], j)
				adj[j] = append(adj[j], i)
			}
		}
	}

	visited := make([]bool, n)
	var clusters [][]*Candidate
	for i := range n {
		if visited[i] {
			continue
		}
		var cluster []*Candidate
		stack := []int{i}
		visited[i] = true
		for len(stack) > 0 {
			node := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			cluster = append(cluster, a4[node])
			for _, next := range adj[node] {
				if !visited[next] {
					visited[next] = true
					stack = append(stack, next)
				}
			}
		}
		clusters = append(clusters, cluster)
	}
	return clusters
}

func clusterLookup(clusters [][]*Candidate) map[[4]float64][]*Candidate {
	lookup := make(map[[4]float64][]*Candidate)
	for _, cluster := range clusters {
		for _, cand := range cluster {
			lookup[cand.key()] = cluster
		}
	}
	return lookup
}

// rectsAreNeighbors applies the adjacency rule shared by the locator and the
// sheet-set grouper: both axis gaps must stay below gapFactor times the
// smallest dimension of either rectangle.
func rectsAreNeighbors(a, b geometry.Rect, gapFactor float64) bool {
	minSize := min(a.Width(), a.Height(), b.Width(), b.Height())
	threshold := gapFactor * minSize
	dx, dy := a.Gap(b)
	return dx < threshold && dy < threshold
}
