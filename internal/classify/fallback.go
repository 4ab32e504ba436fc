package classify

import (
	"fmt"
	"math"

	"exoplanet-lab/internal/domain"
)

// Rule thresholds for the deterministic fallback classifier.
const (
	confirmedMinSNR   = 10.0
	candidateMinSNR   = 5.0
	minPeriodDays     = 0.5
	maxPeriodDays     = 500.0
	minRadiusEarth    = 0.5
	maxRadiusEarth    = 20.0
	falsePositiveProb = 0.30

	confirmedBase = 0.90
	candidateBase = 0.70
)

// Confidence model bounds.
const (
	confidenceFloor   = 0.50
	confidenceCeiling = 0.99
)

// FallbackClassify applies the deterministic rule table used whenever the
// external model service is unavailable.
func FallbackClassify(f domain.FeatureVector) domain.Classification {
	snr := f.SNR
	period := f.OrbitalPeriodDays
	radius := f.PlanetaryRadiusEarth

	switch {
	case snr > confirmedMinSNR &&
		period > minPeriodDays && period < maxPeriodDays &&
		radius > minRadiusEarth && radius < maxRadiusEarth:
		p := confidence(confirmedBase, f)
		return domain.Classification{
			Label:       domain.LabelConfirmed,
			Probability: p,
			Reasoning: fmt.Sprintf(
				"rule-based: SNR %.1f with physical period and radius (p=%.2f)", snr, p),
		}

	case snr > candidateMinSNR && period > minPeriodDays:
		p := confidence(candidateBase, f)
		return domain.Classification{
			Label:       domain.LabelCandidate,
			Probability: p,
			Reasoning: fmt.Sprintf(
				"rule-based: SNR %.1f above candidate threshold (p=%.2f)", snr, p),
		}

	default:
		return domain.Classification{
			Label:       domain.LabelFalsePositive,
			Probability: falsePositiveProb,
			Reasoning: fmt.Sprintf(
				"rule-based: SNR %.1f too weak for a planetary signal", snr),
		}
	}
}

// confidence adjusts a base probability by SNR tier and physical
// plausibility, clamps to [0.50, 0.99] and rounds to 2 decimals.
func confidence(base float64, f domain.FeatureVector) float64 {
	p := base

	switch {
	case f.SNR > 50:
		p += 0.08
	case f.SNR > 20:
		p += 0.05
	case f.SNR > 10:
		p += 0.02
	}
	if f.SNR < 7 {
		p -= 0.10
	}

	if f.OrbitalPeriodDays > 0 && f.OrbitalPeriodDays < maxPeriodDays {
		p += 0.02
	}

	r := f.PlanetaryRadiusEarth
	if r > minRadiusEarth && r < maxRadiusEarth {
		p += 0.02
	} else if r > maxRadiusEarth || r < 0.3 {
		p -= 0.05
	}

	if f.TransitDepthPPM > 0 && f.TransitDepthPPM < 50000 {
		p += 0.01
	}

	if p < confidenceFloor {
		p = confidenceFloor
	}
	if p > confidenceCeiling {
		p = confidenceCeiling
	}
	return math.Round(p*100) / 100
}
