package detector

import (
	"strings"

	"github.com/MeKo-Tech/framescan/internal/geometry"
)

// Candidate is an observed rectangle that passed paper fitting. Candidates
// are ephemeral: they exist only between fitting and anchor validation.
type Candidate struct {
	BBox           geometry.Rect
	PaperVariantID string
	SX             float64
	SY             float64
	ROIProfileID   string
	AnchorROI      geometry.Rect
	FitError       float64
}

// Area returns the candidate's outer area.
func (c *Candidate) Area() float64 { return c.BBox.Area() }

// IsA4 reports whether the fitted paper variant is an A4 size.
func (c *Candidate) IsA4() bool { return strings.Contains(c.PaperVariantID, "A4") }

// key identifies a candidate by its rounded outer rectangle, for dedup and
// cluster lookup.
func (c *Candidate) key() [4]float64 {
	return [4]float64{round3(c.BBox.MinX), round3(c.BBox.MinY), round3(c.BBox.MaxX), round3(c.BBox.MaxY)}
}
