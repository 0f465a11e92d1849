// Package sheetset groups spatially adjacent A4 frames that share one logical
// title block into ordered multi-page sheet-sets.
package sheetset

import (
	"fmt"
	"sort"

	"github.com/MeKo-Tech/framescan/internal/frame"
	"github.com/MeKo-Tech/framescan/internal/geometry"
)

// Consistency flags appended by ValidateConsistency. Advisory only, they
// never abort processing.
const (
	FlagPageCountMismatch    = "a4_multipage_page_count_mismatch"
	FlagDuplicatePageIndex   = "a4_multipage_duplicate_page_index"
	FlagNoncontiguousPages   = "a4_multipage_noncontiguous_page_index"
	FlagMasterIndexNotFirst  = "a4_multipage_master_index_not_first"
)

// PageInfo is one page of a sheet-set. Only the master page owns a FrameMeta.
type PageInfo struct {
	PageIndex     int            `json:"page_index"`
	OuterBBox     geometry.Rect  `json:"outer_bbox"`
	HasTitleblock bool           `json:"has_titleblock"`
	Frame         *frame.Meta    `json:"frame,omitempty"`
}

// SheetSet is a cluster of A4 pages forming one logical multi-page drawing.
type SheetSet struct {
	ClusterID string     `json:"cluster_id"`
	PageTotal int        `json:"page_total"`
	Pages     []PageInfo `json:"pages"`
	Flags     []string   `json:"flags,omitempty"`
}

// MasterPage returns the page carrying the full title block, or nil.
func (s *SheetSet) MasterPage() *PageInfo {
	for i := range s.Pages {
		if s.Pages[i].HasTitleblock {
			return &s.Pages[i]
		}
	}
	return nil
}

// InheritedTitleblock returns the master page's extracted fields, which slave
// pages inherit for downstream document generation. Returns the zero value
// when the set has no master.
func (s *SheetSet) InheritedTitleblock() frame.TitleblockFields {
	if m := s.MasterPage(); m != nil && m.Frame != nil {
		return m.Frame.Titleblock
	}
	return frame.TitleblockFields{}
}

// ValidateConsistency checks page numbering against the declared total and
// appends advisory flags for every violation found. Nothing is ever
// corrected: it is ambiguous whether the count or the declared total is
// authoritative.
func (s *SheetSet) ValidateConsistency() []string {
	var found []string

	if len(s.Pages) != s.PageTotal {
		found = append(found, FlagPageCountMismatch)
	}

	indices := make([]int, len(s.Pages))
	for i, p := range s.Pages {
		indices[i] = p.PageIndex
	}
	sort.Ints(indices)
	if !isSequence(indices, s.PageTotal) {
		if hasDuplicates(indices) {
			found = append(found, FlagDuplicatePageIndex)
		} else {
			found = append(found, FlagNoncontiguousPages)
		}
	}

	if m := s.MasterPage(); m != nil && m.PageIndex != 1 {
		found = append(found, FlagMasterIndexNotFirst)
	}

	s.Flags = append(s.Flags, found...)
	return found
}

// isSequence reports whether sorted indices are exactly 1..total.
func isSequence(sorted []int, total int) bool {
	if len(sorted) != total {
		return false
	}
	for i, v := range sorted {
		if v != i+1 {
			return false
		}
	}
	return true
}

func hasDuplicates(sorted []int) bool {
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return true
		}
	}
	return false
}

// String summarizes the set for logs.
func (s *SheetSet) String() string {
	return fmt.Sprintf("sheetset %s: %d/%d pages, %d flags", s.ClusterID, len(s.Pages), s.PageTotal, len(s.Flags))
}
