// Package detector locates drawing frames in vector entity collections and
// fits them against the configured paper catalog.
package detector

import (
	"log/slog"

	"github.com/MeKo-Tech/framescan/internal/config"
	"github.com/MeKo-Tech/framescan/internal/entities"
	"github.com/MeKo-Tech/framescan/internal/frame"
)

// FrameDetector implements candidate-first location: every fitted rectangle
// is checked for anchor text inside its restored anchor ROI. Compared to the
// anchor-first mode this validates each candidate independently and does not
// pull in A4 neighbors, so it suits drawings where every frame carries its
// own title block.
type FrameDetector struct {
	det     *config.Detection
	locator *AnchorFirstLocator
	anchor  *AnchorValidator
}

// NewFrameDetector builds a candidate-first detector from the detection
// configuration.
func NewFrameDetector(det *config.Detection) *FrameDetector {
	return &FrameDetector{
		det:     det,
		locator: NewAnchorFirstLocator(det, 0),
		anchor:  NewAnchorValidator(det),
	}
}

// DetectFrames returns one frame per candidate whose anchor ROI contains the
// expected anchor text. Candidates that fail validation are logged and
// skipped.
func (d *FrameDetector) DetectFrames(col *entities.Collection) ([]*frame.Meta, []string) {
	items, flags := entities.CollectTextItems(col, d.det.Anchor.MaxInsertDepth)

	var frames []*frame.Meta
	for _, cand := range d.locator.BuildCandidates(col) {
		if !d.anchor.Validate(items, cand.BBox, cand.SX, cand.SY, cand.ROIProfileID) {
			slog.Debug("candidate rejected, anchor text not found",
				"paper", cand.PaperVariantID, "bbox", cand.BBox)
			continue
		}
		frames = append(frames, candidateToMeta(cand, col.Source))
	}
	return frames, flags
}
