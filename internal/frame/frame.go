// Package frame holds the per-frame result model: runtime geometry produced
// by detection and the typed title-block fields produced by extraction.
package frame

import (
	"strconv"
	"strings"

	"github.com/MeKo-Tech/framescan/internal/geometry"
)

// Runtime carries the detection-time facts about one accepted frame.
type Runtime struct {
	FrameID    string        `json:"frame_id"`
	SourceFile string        `json:"source_file"`
	OuterBBox  geometry.Rect `json:"outer_bbox"`

	// Paper fit results.
	PaperVariantID  string  `json:"paper_variant_id,omitempty"`
	SX              float64 `json:"sx,omitempty"`
	SY              float64 `json:"sy,omitempty"`
	GeomScaleFactor float64 `json:"geom_scale_factor,omitempty"`
	ROIProfileID    string  `json:"roi_profile_id,omitempty"`

	// Flags are append-only, advisory and never abort processing.
	Flags []string `json:"flags,omitempty"`

	// Output paths filled by downstream collaborators.
	PDFPath string `json:"pdf_path,omitempty"`
	DWGPath string `json:"dwg_path,omitempty"`
}

// TitleblockFields is the typed record parsed from the title-block ROIs.
// All fields start empty; extraction fills them exactly once and re-extraction
// overwrites rather than retracts.
type TitleblockFields struct {
	InternalCode     string  `json:"internal_code,omitempty"`
	ExternalCode     string  `json:"external_code,omitempty"`
	AlbumCode        string  `json:"album_code,omitempty"`
	EngineeringNo    string  `json:"engineering_no,omitempty"`
	SubitemNo        string  `json:"subitem_no,omitempty"`
	PaperSizeText    string  `json:"paper_size_text,omitempty"`
	Discipline       string  `json:"discipline,omitempty"`
	ScaleText        string  `json:"scale_text,omitempty"`
	ScaleDenominator float64 `json:"scale_denominator,omitempty"`
	PageTotal        int     `json:"page_total,omitempty"`
	PageIndex        int     `json:"page_index,omitempty"`
	TitleCN          string  `json:"title_cn,omitempty"`
	TitleEN          string  `json:"title_en,omitempty"`
	Revision         string  `json:"revision,omitempty"`
	Status           string  `json:"status,omitempty"`
	Date             string  `json:"date,omitempty"`
}

// SeqNo returns the trailing numeric sequence of the internal code
// (the "001" of "1234567-JG001-001"), or 0 when absent.
func (t *TitleblockFields) SeqNo() int {
	if t.InternalCode == "" || !strings.Contains(t.InternalCode, "-") {
		return 0
	}
	suffix := t.InternalCode[strings.LastIndex(t.InternalCode, "-")+1:]
	n, err := strconv.Atoi(suffix)
	if err != nil {
		return 0
	}
	return n
}

// RawText is one text snapshot gathered from a field ROI, kept for audit.
type RawText struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Meta is the complete per-frame metadata: runtime facts, extracted fields
// and the raw per-field text snapshots behind them.
type Meta struct {
	Runtime    Runtime              `json:"runtime"`
	Titleblock TitleblockFields     `json:"titleblock"`
	RawFields  map[string][]RawText `json:"raw_fields,omitempty"`
}

// FrameID returns the unique frame instance id.
func (m *Meta) FrameID() string { return m.Runtime.FrameID }

// AddFlag appends an advisory flag, skipping duplicates.
func (m *Meta) AddFlag(flag string) {
	for _, f := range m.Runtime.Flags {
		if f == flag {
			return
		}
	}
	m.Runtime.Flags = append(m.Runtime.Flags, flag)
}
