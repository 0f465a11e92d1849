package detector

import "github.com/MeKo-Tech/framescan/internal/geometry"

// RestoreROI converts a profile offset tuple [right, left, bottom, top] into
// absolute coordinates. The x offsets are measured leftwards from the outer
// rectangle's right edge and the y offsets upwards from its bottom edge, each
// scaled by the fitted per-axis factor. ROI coordinates are always derived
// this way and never stored, so they cannot drift from the frame geometry.
func RestoreROI(outer geometry.Rect, offsets []float64, sx, sy float64) geometry.Rect {
	dxRight, dxLeft, dyBottom, dyTop := offsets[0], offsets[1], offsets[2], offsets[3]
	return geometry.NewRect(
		outer.MaxX-dxLeft*sx,
		outer.MinY+dyBottom*sy,
		outer.MaxX-dxRight*sx,
		outer.MinY+dyTop*sy,
	)
}
