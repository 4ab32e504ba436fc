// Package detection implements the periodic transit search: a box-fitting
// style grid search over candidate periods, and an iterative extractor that
// masks each confirmed signal so weaker ones can surface.
package detection

import (
	"exoplanet-lab/internal/domain"
)

// Search contract constants.
const (
	// MinPeriodDays is the shortest period the searcher will consider.
	MinPeriodDays = 0.5
	// MaxPeriodCapDays bounds the search regardless of baseline length.
	MaxPeriodCapDays = 500.0
	// PeriodGridSize is the number of candidate periods evaluated.
	PeriodGridSize = 200
	// PhaseBins is the number of equal-width phase bins per fold.
	PhaseBins = 50
	// DefaultMinDepthPPM rejects dips too shallow to be physical.
	DefaultMinDepthPPM = 100.0

	// harmonicTolerance is the relative band around the harmonic ratios
	// within which a candidate period is treated as a duplicate.
	harmonicTolerance = 0.10
)

// harmonicRatios are the period ratios that mimic an already-accepted period.
var harmonicRatios = []float64{1, 2, 3, 0.5, 0.33}

// SearchParams configures a single searcher invocation.
type SearchParams struct {
	// MinSNR is the acceptance threshold a candidate must exceed.
	MinSNR float64
	// MinDepthPPM is the depth threshold a candidate must exceed.
	// Zero means DefaultMinDepthPPM.
	MinDepthPPM float64
	// AcceptedPeriods are previously confirmed periods; candidates at
	// harmonic ratios of these are rejected.
	AcceptedPeriods []float64
}

// SearchResult is the searcher's best candidate plus the phase bin the
// transit landed in, which the extractor needs for masking.
type SearchResult struct {
	Signal     *domain.DetectedSignal
	TransitBin int
}

// MaxPeriod returns the period search ceiling for a given time span:
// span/3 so at least three transits fit, capped at MaxPeriodCapDays.
func MaxPeriod(spanDays float64) float64 {
	maxP := spanDays / 3
	if maxP > MaxPeriodCapDays {
		maxP = MaxPeriodCapDays
	}
	return maxP
}

// Search evaluates a linear grid of candidate periods over the given series
// and returns the strongest transit-like dip clearing both thresholds, or
// nil when nothing does. The flux slice may be a partially masked residual.
func Search(times, flux []float64, params SearchParams) *SearchResult {
	if len(times) == 0 || len(times) != len(flux) {
		return nil
	}

	mean := domain.Mean(flux)
	std := domain.StdDev(flux)
	if mean <= 0 || std <= 0 {
		return nil
	}
	// relative scatter of the series, in ppm
	noisePPM := std / mean * 1e6

	minDepth := params.MinDepthPPM
	if minDepth == 0 {
		minDepth = DefaultMinDepthPPM
	}

	span := timeSpan(times)
	maxP := MaxPeriod(span)
	if maxP <= MinPeriodDays {
		return nil
	}
	step := (maxP - MinPeriodDays) / float64(PeriodGridSize-1)

	var (
		best     *domain.DetectedSignal
		bestBin  int
		binSum   [PhaseBins]float64
		binCount [PhaseBins]int
	)

	for i := 0; i < PeriodGridSize; i++ {
		period := MinPeriodDays + float64(i)*step
		if isHarmonic(period, params.AcceptedPeriods) {
			continue
		}

		for b := 0; b < PhaseBins; b++ {
			binSum[b] = 0
			binCount[b] = 0
		}
		for j, t := range times {
			b := BinIndex(Phase(t, period), PhaseBins)
			binSum[b] += flux[j]
			binCount[b]++
		}

		transitBin := -1
		transitMean := 0.0
		for b := 0; b < PhaseBins; b++ {
			if binCount[b] == 0 {
				continue
			}
			m := binSum[b] / float64(binCount[b])
			if transitBin == -1 || m < transitMean {
				transitBin = b
				transitMean = m
			}
		}
		if transitBin == -1 {
			continue
		}

		depth := (mean - transitMean) / mean * 1e6
		if depth <= 0 {
			continue
		}
		snr := depth / noisePPM

		if snr > params.MinSNR && depth > minDepth && (best == nil || snr > best.SNR) {
			best = &domain.DetectedSignal{
				PeriodDays: period,
				DepthPPM:   depth,
				SNR:        snr,
			}
			bestBin = transitBin
		}
	}

	if best == nil {
		return nil
	}

	// Samples within one bin width on either side of the transit bin.
	for j, t := range times {
		b := BinIndex(Phase(t, best.PeriodDays), PhaseBins)
		if circularBinDistance(b, bestBin, PhaseBins) <= 1 {
			best.InTransitIndices = append(best.InTransitIndices, j)
		}
	}

	return &SearchResult{Signal: best, TransitBin: bestBin}
}

// isHarmonic reports whether period sits within the tolerance band of any
// harmonic ratio of an accepted period.
func isHarmonic(period float64, accepted []float64) bool {
	for _, p := range accepted {
		if p <= 0 {
			continue
		}
		ratio := period / p
		for _, h := range harmonicRatios {
			if ratio > h*(1-harmonicTolerance) && ratio < h*(1+harmonicTolerance) {
				return true
			}
		}
	}
	return false
}

func timeSpan(times []float64) float64 {
	min, max := times[0], times[0]
	for _, t := range times[1:] {
		if t < min {
			min = t
		}
		if t > max {
			max = t
		}
	}
	return max - min
}
