package detector

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/MeKo-Tech/framescan/internal/config"
	"github.com/MeKo-Tech/framescan/internal/geometry"
)

func TestFitSelectsMinimalErrorProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	fitter := NewPaperFitter(config.Fit{AllowRotation: true, UniformScaleRequired: false})
	papers := defaultPapers()

	properties.Property("Fit error is minimal over FitAll", prop.ForAll(
		func(w, h float64) bool {
			r := geometry.NewRect(0, 0, w, h)
			best, ok := fitter.Fit(r, papers)
			all := fitter.FitAll(r, papers)
			if !ok {
				return len(all) == 0
			}
			for _, res := range all {
				if res.FitError < best.FitError {
					return false
				}
			}
			return true
		},
		gen.Float64Range(100, 5000),
		gen.Float64Range(100, 5000),
	))

	properties.Property("scale factors reproduce observed dimensions", prop.ForAll(
		func(w, h float64) bool {
			r := geometry.NewRect(0, 0, w, h)
			for _, res := range fitter.FitAll(r, papers) {
				v := papers[res.PaperID]
				wStd, hStd := v.Width, v.Height
				if !approxEq(res.SX*wStd, w) && !approxEq(res.SX*hStd, w) {
					return false
				}
				if !approxEq(res.SY*hStd, h) && !approxEq(res.SY*wStd, h) {
					return false
				}
			}
			return true
		},
		gen.Float64Range(100, 5000),
		gen.Float64Range(100, 5000),
	))

	properties.TestingRun(t)
}

func approxEq(a, b float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < 1e-6*(1+b)
}
