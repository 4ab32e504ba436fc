package classify

import (
	"fmt"

	"exoplanet-lab/internal/domain"
)

// Override constants: a statistically significant periodic dip should not be
// silently discarded just because a downstream model disagrees.
const (
	overrideMinRawSNR = 3.0
	overrideProbCap   = 0.95
	overrideProbBase  = 0.50
	overrideProbSlope = 0.08
)

// ApplyOverride upgrades a FalsePositive verdict to Candidate when the raw
// detection SNR (from the searcher, not the synthesized feature) is strong.
// The result is biased toward surfacing candidates for human review.
func ApplyOverride(cls domain.Classification, rawSNR float64) domain.Classification {
	if cls.Label != domain.LabelFalsePositive || rawSNR <= overrideMinRawSNR {
		return cls
	}

	p := overrideProbBase + (rawSNR-overrideMinRawSNR)*overrideProbSlope
	if p > overrideProbCap {
		p = overrideProbCap
	}
	if cls.Probability > p {
		p = cls.Probability
	}

	return domain.Classification{
		Label:       domain.LabelCandidate,
		Probability: p,
		Reasoning: fmt.Sprintf(
			"%s; overridden to Candidate: raw detection SNR %.1f exceeds %.0f",
			cls.Reasoning, rawSNR, overrideMinRawSNR),
	}
}
