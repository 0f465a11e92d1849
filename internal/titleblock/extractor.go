// Package titleblock restores per-field regions of interest inside a fitted
// frame and parses the typed title-block fields from the text found there.
package titleblock

import (
	"sort"

	"github.com/MeKo-Tech/framescan/internal/config"
	"github.com/MeKo-Tech/framescan/internal/detector"
	"github.com/MeKo-Tech/framescan/internal/entities"
	"github.com/MeKo-Tech/framescan/internal/frame"
	"github.com/MeKo-Tech/framescan/internal/geometry"
)

// pointOnlyFields are prone to cross-column bleed: revision-history columns
// sit side by side, so a text extent must not pull neighboring column entries
// in. Containment for these fields tests the insertion point only.
var pointOnlyFields = map[string]bool{
	config.FieldRevision: true,
	config.FieldStatus:   true,
	config.FieldDate:     true,
	config.FieldPageInfo: true,
}

// Extractor parses title-block fields out of one located frame.
type Extractor struct {
	profiles  map[string]config.ROIProfile
	roiMargin float64
}

// NewExtractor creates an extractor from the detection configuration.
func NewExtractor(det *config.Detection) *Extractor {
	return &Extractor{
		profiles:  det.Profiles,
		roiMargin: det.Tolerances.ROIMarginPercent,
	}
}

// Extract gathers all field ROIs of the frame's profile from the given text
// items, parses the typed fields and stores both onto the frame. Running it
// again on unchanged input overwrites with identical values. A missing
// profile leaves the frame untouched; per-field parse failures leave the
// individual field empty.
func (e *Extractor) Extract(m *frame.Meta, items []entities.TextItem) {
	profile, ok := e.profiles[m.Runtime.ROIProfileID]
	if !ok {
		return
	}

	raw := make(map[string][]frame.RawText, len(profile.Fields))
	for name, offsets := range profile.Fields {
		if len(offsets) != 4 {
			continue
		}
		roi := detector.RestoreROI(m.Runtime.OuterBBox, offsets, m.Runtime.SX, m.Runtime.SY).
			Expand(e.roiMargin)
		raw[name] = gatherROI(items, roi, pointOnlyFields[name])
	}

	m.RawFields = raw
	m.Titleblock = parseFields(raw)
}

// gatherROI collects the text whose insertion point (or, for rich fields,
// estimated extent) falls inside the ROI, sorted top-to-bottom for a
// deterministic reading order.
func gatherROI(items []entities.TextItem, roi geometry.Rect, pointOnly bool) []frame.RawText {
	var out []frame.RawText
	for _, it := range items {
		inside := roi.ContainsPoint(it.X, it.Y)
		if !inside && !pointOnly {
			inside = roi.Intersects(it.Extent)
		}
		if inside {
			out = append(out, frame.RawText{Text: it.Text, X: it.X, Y: it.Y})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y > out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

func parseFields(raw map[string][]frame.RawText) frame.TitleblockFields {
	var f frame.TitleblockFields

	f.InternalCode = parseInternalCode(raw[config.FieldInternalCode])
	f.ExternalCode = parseExternalCode(raw[config.FieldExternalCode])
	f.EngineeringNo = parseSimple(raw[config.FieldEngineeringNo], engineeringNoPattern)
	f.SubitemNo = parseSimple(raw[config.FieldSubitemNo], nil)
	f.PaperSizeText = parseSimple(raw[config.FieldPaperSize], nil)
	f.Discipline = parseSimple(raw[config.FieldDiscipline], nil)

	f.ScaleText = parseSimple(raw[config.FieldScale], nil)
	if f.ScaleText != "" {
		f.ScaleDenominator = parseScaleDenominator(f.ScaleText)
	}

	f.PageTotal, f.PageIndex = parsePageInfo(raw[config.FieldPageInfo])
	f.TitleCN, f.TitleEN = parseTitleBilingual(raw[config.FieldTitle])

	f.Revision = parseTopByY(raw[config.FieldRevision])
	f.Status = parseTopByY(raw[config.FieldStatus])
	f.Date = parseTopByY(raw[config.FieldDate])

	if f.InternalCode != "" {
		f.AlbumCode = albumCode(f.InternalCode)
	}
	return f
}
