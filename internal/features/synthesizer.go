// Package features converts raw detected signals into the physically-named
// feature vector consumed by the classifier.
package features

import (
	"math"

	"exoplanet-lab/internal/domain"
)

const (
	// dutyCycle is the fixed in-transit fraction of the orbit used for the
	// duration estimate. A simplification, not a fitted ingress/egress model.
	dutyCycle   = 0.1
	hoursPerDay = 24.0

	// radiusCalibration maps the square root of the depth fraction to Earth
	// radii for a Sun-like host.
	radiusCalibration = 11.0

	// oddEvenProxyFactor scales the flux scatter into a coarse odd/even
	// consistency proxy. This is a known approximation: it is NOT computed
	// from a true odd-versus-even transit depth comparison.
	oddEvenProxyFactor = 0.1
)

// Synthesize derives the feature vector for one detected signal from the
// signal parameters and the full curve's statistics. Deterministic; the
// result is immutable once created.
func Synthesize(sig *domain.DetectedSignal, lc *domain.LightCurve) domain.FeatureVector {
	meanFlux := lc.MeanFlux()
	fluxStd := lc.FluxStdDev()

	return domain.FeatureVector{
		OrbitalPeriodDays:    sig.PeriodDays,
		TransitDurationHours: sig.PeriodDays * dutyCycle * hoursPerDay,
		PlanetaryRadiusEarth: math.Sqrt(sig.DepthPPM/1e6) * radiusCalibration,
		TransitDepthPPM:      sig.DepthPPM,
		SNR:                  sig.SNR,
		OddEvenDepthDiff:     math.Abs(fluxStd * oddEvenProxyFactor),
		SampleCount:          lc.Len(),
		MeanFlux:             meanFlux,
		FluxStdDev:           fluxStd,
	}
}
