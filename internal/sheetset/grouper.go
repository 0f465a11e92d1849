package sheetset

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/MeKo-Tech/framescan/internal/frame"
)

// masterIndexBonus rewards a frame whose own page_info says it is sheet 1.
const masterIndexBonus = 2

// Grouper clusters A4 frames by spatial adjacency and promotes the page with
// the richest title block to master of each cluster.
type Grouper struct {
	gapFactor float64
}

// NewGrouper creates a grouper with the given adjacency gap factor.
func NewGrouper(gapFactor float64) *Grouper {
	return &Grouper{gapFactor: gapFactor}
}

// Group partitions the frames into sheet-sets and the remaining ungrouped
// frames. Frames absorbed into a sheet-set are removed from the returned
// flat list. Fewer than two A4 frames leave the input untouched.
func (g *Grouper) Group(frames []*frame.Meta) ([]*frame.Meta, []*SheetSet) {
	var a4 []*frame.Meta
	for _, f := range frames {
		if isA4Frame(f) {
			a4 = append(a4, f)
		}
	}
	if len(a4) < 2 {
		return frames, nil
	}

	var sets []*SheetSet
	absorbed := make(map[string]struct{})

	for _, cluster := range g.buildClusters(a4) {
		if len(cluster) < 2 {
			continue
		}
		set := g.processCluster(cluster)
		sets = append(sets, set)
		for _, f := range cluster {
			absorbed[f.FrameID()] = struct{}{}
		}
		slog.Debug("a4 cluster grouped",
			"cluster", set.ClusterID, "pages", len(set.Pages), "flags", set.Flags)
	}

	remaining := frames[:0:0]
	for _, f := range frames {
		if _, ok := absorbed[f.FrameID()]; !ok {
			remaining = append(remaining, f)
		}
	}
	return remaining, sets
}

func isA4Frame(f *frame.Meta) bool {
	return strings.Contains(f.Runtime.PaperVariantID, "A4")
}

// buildClusters extracts connected components of the adjacency graph. Two
// frames are neighbors when both axis gaps between their outer boxes stay
// below gapFactor times the smallest dimension of either box.
func (g *Grouper) buildClusters(a4 []*frame.Meta) [][]*frame.Meta {
	n := len(a4)
	adj := make([][]int, n)
	for i := range n {
		for j := i + 1; j < n; j++ {
			if g.framesAreNeighbors(a4[i], a4[j]) {
				adj[i] = append(adj[i], j)
				adj[j] = append(adj[j], i)
			}
		}
	}

	visited := make([]bool, n)
	var clusters [][]*frame.Meta
	for i := range n {
		if visited[i] {
			continue
		}
		var cluster []*frame.Meta
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

func (g *Grouper) framesAreNeighbors(f1, f2 *frame.Meta) bool {
	b1, b2 := f1.Runtime.OuterBBox, f2.Runtime.OuterBBox
	minSize := min(b1.Width(), b1.Height(), b2.Width(), b2.Height())
	threshold := g.gapFactor * minSize
	dx, dy := b1.Gap(b2)
	return dx < threshold && dy < threshold
}

func (g *Grouper) processCluster(cluster []*frame.Meta) *SheetSet {
	master := identifyMaster(cluster)

	pageTotal := master.Titleblock.PageTotal
	if pageTotal == 0 {
		pageTotal = len(cluster)
	}

	pages := make([]PageInfo, 0, len(cluster))
	for _, f := range cluster {
		isMaster := f.FrameID() == master.FrameID()
		index := f.Titleblock.PageIndex
		if index == 0 && isMaster {
			index = 1
		}
		page := PageInfo{
			PageIndex:     index,
			OuterBBox:     f.Runtime.OuterBBox,
			HasTitleblock: isMaster,
		}
		if isMaster {
			page.Frame = f
		}
		pages = append(pages, page)
	}
	sortPages(pages)

	set := &SheetSet{
		ClusterID: uuid.NewString(),
		PageTotal: pageTotal,
		Pages:     pages,
	}
	set.ValidateConsistency()
	return set
}

// sortPages orders by page index, keeping encounter order among equal
// indices (unknown slave pages all carry index 0).
func sortPages(pages []PageInfo) {
	sort.SliceStable(pages, func(i, j int) bool { return pages[i].PageIndex < pages[j].PageIndex })
}

// identifyMaster scores each frame by populated key fields plus a bonus for
// declaring itself sheet 1; the first highest scorer wins.
func identifyMaster(cluster []*frame.Meta) *frame.Meta {
	best := cluster[0]
	bestScore := -1
	for _, f := range cluster {
		if score := masterScore(&f.Titleblock); score > bestScore {
			best, bestScore = f, score
		}
	}
	return best
}

func masterScore(tb *frame.TitleblockFields) int {
	score := 0
	if tb.EngineeringNo != "" {
		score++
	}
	if tb.InternalCode != "" {
		score++
	}
	if tb.ExternalCode != "" {
		score++
	}
	if tb.PageTotal != 0 {
		score++
	}
	if tb.PageIndex == 1 {
		score += masterIndexBonus
	}
	return score
}
