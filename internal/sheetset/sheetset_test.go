package sheetset

import (
	"testing"

	"github.com/MeKo-Tech/framescan/internal/frame"
	"github.com/MeKo-Tech/framescan/internal/geometry"
)

func setWithPages(pageTotal int, indices ...int) *SheetSet {
	s := &SheetSet{ClusterID: "c-1", PageTotal: pageTotal}
	for _, idx := range indices {
		s.Pages = append(s.Pages, PageInfo{PageIndex: idx})
	}
	return s
}

func TestValidateConsistency(t *testing.T) {
	tests := []struct {
		name      string
		set       *SheetSet
		wantFlags []string
	}{
		{"clean", setWithPages(3, 1, 2, 3), nil},
		{"duplicate index", setWithPages(3, 1, 1, 3), []string{FlagDuplicatePageIndex}},
		{"page count mismatch", setWithPages(3, 1, 2), []string{FlagPageCountMismatch, FlagNoncontiguousPages}},
		{"non-contiguous", setWithPages(3, 1, 2, 4), []string{FlagNoncontiguousPages}},
		{"zero indices", setWithPages(3, 1, 0, 0), []string{FlagDuplicatePageIndex}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.set.ValidateConsistency()
			if len(got) != len(tt.wantFlags) {
				t.Fatalf("flags = %v, want %v", got, tt.wantFlags)
			}
			for i := range got {
				if got[i] != tt.wantFlags[i] {
					t.Fatalf("flags = %v, want %v", got, tt.wantFlags)
				}
			}
			if len(tt.set.Flags) != len(tt.wantFlags) {
				t.Errorf("flags not appended to set: %v", tt.set.Flags)
			}
		})
	}
}

func TestValidateConsistencyMasterIndex(t *testing.T) {
	s := &SheetSet{
		ClusterID: "c-1",
		PageTotal: 2,
		Pages: []PageInfo{
			{PageIndex: 1},
			{PageIndex: 2, HasTitleblock: true},
		},
	}
	got := s.ValidateConsistency()
	if len(got) != 1 || got[0] != FlagMasterIndexNotFirst {
		t.Fatalf("flags = %v, want [%s]", got, FlagMasterIndexNotFirst)
	}
}

func TestMasterPage(t *testing.T) {
	s := setWithPages(2, 1, 2)
	if s.MasterPage() != nil {
		t.Error("expected no master without titleblock page")
	}

	s.Pages[1].HasTitleblock = true
	m := s.MasterPage()
	if m == nil || m.PageIndex != 2 {
		t.Fatalf("master = %+v", m)
	}
}

func TestInheritedTitleblock(t *testing.T) {
	master := &frame.Meta{
		Runtime: frame.Runtime{FrameID: "m", OuterBBox: geometry.NewRect(0, 0, 210, 297)},
		Titleblock: frame.TitleblockFields{
			InternalCode: "1234567-JG001-001",
			PageTotal:    3,
		},
	}
	s := &SheetSet{
		PageTotal: 3,
		Pages: []PageInfo{
			{PageIndex: 1, HasTitleblock: true, Frame: master},
			{PageIndex: 2},
		},
	}

	tb := s.InheritedTitleblock()
	if tb.InternalCode != "1234567-JG001-001" {
		t.Errorf("inherited internal_code = %q", tb.InternalCode)
	}

	empty := &SheetSet{Pages: []PageInfo{{PageIndex: 1}}}
	if empty.InheritedTitleblock() != (frame.TitleblockFields{}) {
		t.Error("expected zero fields without master")
	}
}
