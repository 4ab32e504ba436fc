package domain

// DetectedSignal is one transit-like periodic dip reported by the searcher.
// It is ephemeral: owned by the extractor during a single analysis run.
type DetectedSignal struct {
	PeriodDays       float64 // orbital period, > 0
	DepthPPM         float64 // transit depth in parts-per-million, > 0
	SNR              float64 // depth over relative flux scatter
	InTransitIndices []int   // sample indices within one bin width of the transit bin
}

// FeatureVector holds the physically-named features derived from a
// DetectedSignal plus the full curve's statistics. Immutable once created.
type FeatureVector struct {
	OrbitalPeriodDays    float64 `json:"orbital_period"`
	TransitDurationHours float64 `json:"transit_duration"`
	PlanetaryRadiusEarth float64 `json:"planetary_radius"`
	TransitDepthPPM      float64 `json:"transit_depth"`
	SNR                  float64 `json:"snr"`
	OddEvenDepthDiff     float64 `json:"odd_even_depth_difference"`
	SampleCount          int     `json:"sample_count"`
	MeanFlux             float64 `json:"mean_flux"`
	FluxStdDev           float64 `json:"flux_std_dev"`
}
