package detector

import (
	"math"
	"sort"

	"github.com/MeKo-Tech/framescan/internal/config"
	"github.com/MeKo-Tech/framescan/internal/geometry"
)

const epsDiv = 1e-9

// FitResult is one qualifying pairing between an observed rectangle and a
// standard paper size.
type FitResult struct {
	PaperID   string
	SX        float64
	SY        float64
	ProfileID string
	// FitError is the maximum relative deviation between the scaled
	// standard dimensions and the observed ones, using the mean of SX/SY
	// as the common scale.
	FitError float64
}

// PaperFitter maps observed rectangles onto a catalog of standard paper
// sizes, producing per-axis scale factors and a fit-error score.
type PaperFitter struct {
	allowRotation        bool
	uniformScaleRequired bool
	uniformScaleTol      float64
}

// NewPaperFitter creates a fitter from the configured fit options.
func NewPaperFitter(cfg config.Fit) *PaperFitter {
	return &PaperFitter{
		allowRotation:        cfg.AllowRotation,
		uniformScaleRequired: cfg.UniformScaleRequired,
		uniformScaleTol:      cfg.UniformScaleTol,
	}
}

// Fit returns the qualifying pairing with minimal fit error, or ok=false when
// no catalog entry qualifies.
func (p *PaperFitter) Fit(r geometry.Rect, papers map[string]config.PaperVariant) (FitResult, bool) {
	results := p.FitAll(r, papers)
	if len(results) == 0 {
		return FitResult{}, false
	}
	best := results[0]
	for _, res := range results[1:] {
		if res.FitError < best.FitError {
			best = res
		}
	}
	return best, true
}

// FitAll evaluates every catalog entry (and its 90°-rotated orientation when
// rotation is allowed) and returns all pairings that pass the uniform-scale
// check. The catalog is visited in sorted key order so that results are
// deterministic across runs.
func (p *PaperFitter) FitAll(r geometry.Rect, papers map[string]config.PaperVariant) []FitResult {
	wObs, hObs := r.Width(), r.Height()

	ids := make([]string, 0, len(papers))
	for id := range papers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var results []FitResult
	for _, id := range ids {
		v := papers[id]
		if v.Width <= 0 || v.Height <= 0 || v.Profile == "" {
			continue
		}
		if sx, sy, errv, ok := p.evaluate(wObs, hObs, v.Width, v.Height); ok {
			results = append(results, FitResult{PaperID: id, SX: sx, SY: sy, ProfileID: v.Profile, FitError: errv})
		}
		if p.allowRotation {
			if sx, sy, errv, ok := p.evaluate(wObs, hObs, v.Height, v.Width); ok {
				results = append(results, FitResult{PaperID: id, SX: sx, SY: sy, ProfileID: v.Profile, FitError: errv})
			}
		}
	}
	return results
}

func (p *PaperFitter) evaluate(wObs, hObs, wStd, hStd float64) (sx, sy, fitError float64, ok bool) {
	sx = wObs / wStd
	sy = hObs / hStd

	if p.uniformScaleRequired {
		if math.Abs(sx-sy)/math.Max(math.Max(sx, sy), epsDiv) > p.uniformScaleTol {
			return 0, 0, 0, false
		}
	}
	return sx, sy, fitError2(wObs, hObs, wStd, hStd, sx, sy), true
}

// fitError2 computes the max relative deviation of both axes under the mean
// common scale.
func fitError2(wObs, hObs, wStd, hStd, sx, sy float64) float64 {
	scale := (sx + sy) / 2
	return math.Max(
		math.Abs(wStd*scale-wObs)/math.Max(wObs, epsDiv),
		math.Abs(hStd*scale-hObs)/math.Max(hObs, epsDiv),
	)
}
