package classify

import (
	"context"
	"fmt"
	"log"
	"time"

	"exoplanet-lab/internal/domain"
	"exoplanet-lab/internal/observability"
)

// Predictor is the external model service surface the classifier depends on.
// *Client satisfies it; tests substitute fakes.
type Predictor interface {
	Predict(ctx context.Context, req PredictRequest) (*PredictResponse, error)
}

// Classifier adapts the external model service with a local fallback and the
// strong-signal override policy.
type Classifier struct {
	predictor Predictor // nil means fallback-only
	logger    *log.Logger
}

// NewClassifier creates a classifier. A nil predictor disables the service
// path entirely; every verdict then comes from the rule table.
func NewClassifier(predictor Predictor, logger *log.Logger) *Classifier {
	if logger == nil {
		logger = log.Default()
	}
	return &Classifier{predictor: predictor, logger: logger}
}

// Classify produces the verdict for one signal's feature vector. rawSNR is
// the searcher's detection SNR, used by the override policy. Never returns
// an error: service failure degrades to the deterministic fallback.
func (c *Classifier) Classify(ctx context.Context, f domain.FeatureVector, dataset string, rawSNR float64) domain.Classification {
	cls := c.classify(ctx, f, dataset)
	return ApplyOverride(cls, rawSNR)
}

func (c *Classifier) classify(ctx context.Context, f domain.FeatureVector, dataset string) domain.Classification {
	if c.predictor == nil {
		return FallbackClassify(f)
	}

	start := time.Now()
	resp, err := c.predictor.Predict(ctx, PredictRequest{
		Period:   f.OrbitalPeriodDays,
		Radius:   f.PlanetaryRadiusEarth,
		Depth:    f.TransitDepthPPM,
		SNR:      f.SNR,
		Duration: f.TransitDurationHours,
		Dataset:  dataset,
	})
	observability.RecordClassifierLatency(time.Since(start).Seconds())
	if err != nil {
		c.logger.Printf("model service unavailable, using fallback: %v", err)
		observability.RecordClassifierFallback()
		return FallbackClassify(f)
	}

	label, ok := normalizeLabel(resp.Classification)
	if !ok {
		c.logger.Printf("model service returned unknown label %q, using fallback", resp.Classification)
		observability.RecordClassifierFallback()
		return FallbackClassify(f)
	}

	return domain.Classification{
		Label:       label,
		Probability: resp.Confidence,
		Reasoning:   fmt.Sprintf("model service verdict with confidence %.2f", resp.Confidence),
	}
}
