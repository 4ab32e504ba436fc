package domain

import "math"

// LightCurve holds a stellar brightness time series. Time values are in days
// and need not be uniformly spaced; flux is normalized so ~1.0 is the
// out-of-transit baseline.
type LightCurve struct {
	Time []float64 // days
	Flux []float64 // normalized brightness
}

// NewLightCurve builds a light curve from parallel time/flux slices,
// dropping pairs where either value is NaN.
func NewLightCurve(times, fluxes []float64) *LightCurve {
	n := len(times)
	if len(fluxes) < n {
		n = len(fluxes)
	}

	lc := &LightCurve{
		Time: make([]float64, 0, n),
		Flux: make([]float64, 0, n),
	}
	for i := 0; i < n; i++ {
		if math.IsNaN(times[i]) || math.IsNaN(fluxes[i]) {
			continue
		}
		lc.Time = append(lc.Time, times[i])
		lc.Flux = append(lc.Flux, fluxes[i])
	}
	return lc
}

// Len returns the number of samples.
func (lc *LightCurve) Len() int {
	return len(lc.Time)
}

// SpanDays returns max(time) - min(time).
func (lc *LightCurve) SpanDays() float64 {
	if len(lc.Time) == 0 {
		return 0
	}
	min, max := lc.Time[0], lc.Time[0]
	for _, t := range lc.Time[1:] {
		if t < min {
			min = t
		}
		if t > max {
			max = t
		}
	}
	return max - min
}

// MeanFlux returns the arithmetic mean of the flux values.
func (lc *LightCurve) MeanFlux() float64 {
	return Mean(lc.Flux)
}

// FluxStdDev returns the population standard deviation of the flux values.
func (lc *LightCurve) FluxStdDev() float64 {
	return StdDev(lc.Flux)
}

// Mean returns the arithmetic mean of values, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the population standard deviation of values.
func StdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := Mean(values)
	sumSq := 0.0
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

// LightCurvePoint is one archived sample of an analyzed light curve.
// Corresponds to the lightcurve_points table in ClickHouse.
type LightCurvePoint struct {
	AnalysisID string  // analysis run identifier
	TimeDays   float64 // sample time in days
	Flux       float64 // normalized flux
}

// PlotPoint is one phase-folded point prepared for display.
type PlotPoint struct {
	Phase float64 `json:"phase"` // position within one period, [0,1)
	Flux  float64 `json:"flux"`  // mean-normalized flux
}
