// Package plot prepares phase-folded point sequences for display.
package plot

import (
	"math"
	"sort"

	"exoplanet-lab/internal/domain"
)

// MaxPoints caps the number of points handed to the frontend.
const MaxPoints = 2000

// PhaseFold normalizes flux by the series mean, folds every sample at the
// given period, decimates to at most MaxPoints by uniform striding and sorts
// ascending by phase. Pure function: no side effects on the input curve.
func PhaseFold(lc *domain.LightCurve, periodDays float64) []domain.PlotPoint {
	if lc.Len() == 0 || periodDays <= 0 {
		return nil
	}

	mean := lc.MeanFlux()
	if mean == 0 {
		mean = 1
	}

	stride := 1
	if lc.Len() > MaxPoints {
		stride = (lc.Len() + MaxPoints - 1) / MaxPoints
	}

	points := make([]domain.PlotPoint, 0, MaxPoints)
	for i := 0; i < lc.Len(); i += stride {
		phase := math.Mod(lc.Time[i], periodDays) / periodDays
		if phase < 0 {
			phase += 1
		}
		points = append(points, domain.PlotPoint{
			Phase: phase,
			Flux:  lc.Flux[i] / mean,
		})
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Phase < points[j].Phase
	})
	return points
}
