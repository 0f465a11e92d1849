package detector

import (
	"strings"
	"unicode"

	"github.com/MeKo-Tech/framescan/internal/config"
	"github.com/MeKo-Tech/framescan/internal/entities"
	"github.com/MeKo-Tech/framescan/internal/geometry"
)

// AnchorValidator confirms that a fitted candidate is a genuine title-block
// frame by locating required anchor text inside the restored anchor ROI.
type AnchorValidator struct {
	anchor    config.Anchor
	profiles  map[string]config.ROIProfile
	roiMargin float64
}

// NewAnchorValidator creates a validator from the detection configuration.
func NewAnchorValidator(det *config.Detection) *AnchorValidator {
	return &AnchorValidator{
		anchor:    det.Anchor,
		profiles:  det.Profiles,
		roiMargin: det.Tolerances.ROIMarginPercent,
	}
}

// Validate reports whether any anchor text has its insertion point inside the
// candidate's anchor ROI.
func (v *AnchorValidator) Validate(items []entities.TextItem, outer geometry.Rect, sx, sy float64, profileID string) bool {
	profile, ok := v.profiles[profileID]
	if !ok {
		return false
	}
	offsets, ok := profile.Fields[v.anchor.ROIField]
	if !ok || len(offsets) != 4 {
		return false
	}
	roi := RestoreROI(outer, offsets, sx, sy).Expand(v.roiMargin)

	for _, it := range items {
		if !roi.ContainsPoint(it.X, it.Y) {
			continue
		}
		if matchAnchorText(it.Text, v.anchor.PrimaryText) || matchAnchorText(it.Text, v.anchor.SecondaryText) {
			return true
		}
	}
	return false
}

// matchAnchorText matches anchor strings after whitespace stripping: ASCII
// anchors case-insensitively as substrings, non-ASCII anchors as exact
// substrings.
func matchAnchorText(text, pattern string) bool {
	if pattern == "" {
		return false
	}
	normalized := stripSpace(text)
	if isASCII(pattern) {
		return strings.Contains(strings.ToUpper(normalized), strings.ToUpper(pattern))
	}
	return strings.Contains(normalized, pattern)
}

func stripSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if !unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}
