package detection

import (
	"exoplanet-lab/internal/domain"
)

// Extraction constants.
const (
	// MaxSignals bounds how many signals one analysis may report.
	MaxSignals = 5
	// baseSNRThreshold is the acceptance threshold for the first iteration.
	baseSNRThreshold = 2.0
	// thresholdStep raises the bar for each subsequent iteration, so
	// progressively weaker detections must be progressively cleaner.
	thresholdStep = 0.5
	// maskHalfWidthBins is how far around the transit bin (circularly) the
	// residual is flattened after a signal is accepted.
	maskHalfWidthBins = 2
)

// ExtractorConfig tunes the multi-signal extraction loop.
type ExtractorConfig struct {
	// MaxSignals caps the number of extracted signals. Zero means MaxSignals.
	MaxSignals int
	// MinDepthPPM is passed through to every search. Zero means
	// DefaultMinDepthPPM.
	MinDepthPPM float64
}

// ExtractSignals repeatedly searches the light curve, masking each accepted
// signal out of a residual copy of the flux so the next iteration can find
// independent, weaker signals. Returns 0..MaxSignals signals in discovery
// order, which is not necessarily descending SNR.
//
// The residual buffer is local to this call; the input curve is not mutated.
func ExtractSignals(lc *domain.LightCurve, cfg ExtractorConfig) []*domain.DetectedSignal {
	maxSignals := cfg.MaxSignals
	if maxSignals == 0 {
		maxSignals = MaxSignals
	}

	residual := make([]float64, len(lc.Flux))
	copy(residual, lc.Flux)

	var (
		signals  []*domain.DetectedSignal
		accepted []float64
	)

	for iter := 0; iter < maxSignals; iter++ {
		threshold := baseSNRThreshold + thresholdStep*float64(iter)

		res := Search(lc.Time, residual, SearchParams{
			MinSNR:          threshold,
			MinDepthPPM:     cfg.MinDepthPPM,
			AcceptedPeriods: accepted,
		})
		if res == nil {
			break
		}

		signals = append(signals, res.Signal)
		accepted = append(accepted, res.Signal.PeriodDays)
		maskSignal(lc.Time, residual, res.Signal.PeriodDays, res.TransitBin)
	}

	return signals
}

// maskSignal flattens the residual to its global mean for every sample whose
// phase bin under the given period lies within maskHalfWidthBins of the
// transit bin, wrapping around the phase edge, so the same dip cannot be
// rediscovered.
func maskSignal(times, residual []float64, period float64, transitBin int) {
	mean := domain.Mean(residual)
	for i, t := range times {
		b := BinIndex(Phase(t, period), PhaseBins)
		if circularBinDistance(b, transitBin, PhaseBins) <= maskHalfWidthBins {
			residual[i] = mean
		}
	}
}
