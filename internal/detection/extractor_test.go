package detection

import (
	"math"
	"math/rand"
	"testing"

	"exoplanet-lab/internal/domain"
)

// makeMultiTransitCurve injects box dips for each (period, depthFrac,
// phaseStart, phaseEnd) tuple on top of seeded Gaussian noise.
type injectedTransit struct {
	period     float64
	depthFrac  float64
	phaseStart float64
	phaseEnd   float64
}

func makeMultiTransitCurve(n int, spanDays, noiseFrac float64, seed int64, transits []injectedTransit) *domain.LightCurve {
	rng := rand.New(rand.NewSource(seed))
	times := make([]float64, n)
	flux := make([]float64, n)
	for i := 0; i < n; i++ {
		t := float64(i) * spanDays / float64(n-1)
		times[i] = t
		f := 1.0 + noiseFrac*rng.NormFloat64()
		for _, tr := range transits {
			p := Phase(t, tr.period)
			if p >= tr.phaseStart && p < tr.phaseEnd {
				f -= tr.depthFrac
			}
		}
		flux[i] = f
	}
	return domain.NewLightCurve(times, flux)
}

func TestExtractSignals_SinglePlanet(t *testing.T) {
	period := gridPeriod(27.0, 70)
	lc := makeMultiTransitCurve(1000, 27.0, 0.0005, 1, []injectedTransit{
		{period: period, depthFrac: 0.005, phaseStart: 0.5, phaseEnd: 0.56},
	})

	signals := ExtractSignals(lc, ExtractorConfig{})
	if len(signals) != 1 {
		t.Fatalf("Expected exactly 1 signal, got %d", len(signals))
	}
	if math.Abs(signals[0].PeriodDays-period)/period > 0.02 {
		t.Errorf("Expected period near %.4f, got %.4f", period, signals[0].PeriodDays)
	}
}

func TestExtractSignals_TwoPlanets(t *testing.T) {
	p1 := gridPeriod(27.0, 70)  // ~3.49 days, 8000 ppm
	p2 := gridPeriod(27.0, 120) // ~5.63 days, 4000 ppm, not a harmonic of p1
	lc := makeMultiTransitCurve(2000, 27.0, 0.0005, 2, []injectedTransit{
		{period: p1, depthFrac: 0.008, phaseStart: 0.5, phaseEnd: 0.56},
		{period: p2, depthFrac: 0.004, phaseStart: 0.2, phaseEnd: 0.26},
	})

	signals := ExtractSignals(lc, ExtractorConfig{})
	if len(signals) != 2 {
		t.Fatalf("Expected exactly 2 signals, got %d", len(signals))
	}

	// Discovery order: the deeper signal dominates the first pass.
	if math.Abs(signals[0].PeriodDays-p1)/p1 > 0.02 {
		t.Errorf("Signal 0: expected period near %.4f, got %.4f", p1, signals[0].PeriodDays)
	}
	if math.Abs(signals[1].PeriodDays-p2)/p2 > 0.02 {
		t.Errorf("Signal 1: expected period near %.4f, got %.4f", p2, signals[1].PeriodDays)
	}
	if signals[1].DepthPPM >= signals[0].DepthPPM {
		t.Errorf("Expected the shallower signal second: %.0f vs %.0f",
			signals[1].DepthPPM, signals[0].DepthPPM)
	}
}

func TestExtractSignals_EmptyOnNoise(t *testing.T) {
	lc := makeMultiTransitCurve(1000, 27.0, 0.0001, 3, nil)

	signals := ExtractSignals(lc, ExtractorConfig{})
	if len(signals) != 0 {
		t.Fatalf("Expected no signals in pure noise, got %d", len(signals))
	}
}

func TestExtractSignals_RespectsMaxSignals(t *testing.T) {
	period := gridPeriod(27.0, 70)
	lc := makeMultiTransitCurve(1000, 27.0, 0.0005, 4, []injectedTransit{
		{period: period, depthFrac: 0.005, phaseStart: 0.5, phaseEnd: 0.56},
	})

	signals := ExtractSignals(lc, ExtractorConfig{MaxSignals: 1})
	if len(signals) > 1 {
		t.Fatalf("Expected at most 1 signal, got %d", len(signals))
	}
}

func TestExtractSignals_DoesNotMutateInput(t *testing.T) {
	period := gridPeriod(27.0, 70)
	lc := makeMultiTransitCurve(1000, 27.0, 0.0005, 5, []injectedTransit{
		{period: period, depthFrac: 0.005, phaseStart: 0.5, phaseEnd: 0.56},
	})

	before := make([]float64, len(lc.Flux))
	copy(before, lc.Flux)

	ExtractSignals(lc, ExtractorConfig{})

	for i := range before {
		if lc.Flux[i] != before[i] {
			t.Fatalf("Input flux mutated at index %d", i)
		}
	}
}

func TestMaskSignal_PreventsRediscovery(t *testing.T) {
	period := gridPeriod(27.0, 70)
	lc := makeMultiTransitCurve(1000, 27.0, 0.0005, 6, []injectedTransit{
		{period: period, depthFrac: 0.005, phaseStart: 0.5, phaseEnd: 0.56},
	})

	res := Search(lc.Time, lc.Flux, SearchParams{MinSNR: 2.0})
	if res == nil {
		t.Fatal("Expected an initial detection")
	}

	residual := make([]float64, len(lc.Flux))
	copy(residual, lc.Flux)
	maskSignal(lc.Time, residual, res.Signal.PeriodDays, res.TransitBin)

	// With the found period accepted, the masked curve must yield nothing at
	// the next iteration's threshold.
	again := Search(lc.Time, residual, SearchParams{
		MinSNR:          2.5,
		AcceptedPeriods: []float64{res.Signal.PeriodDays},
	})
	if again != nil {
		t.Fatalf("Masked signal rediscovered at period %.4f SNR %.2f",
			again.Signal.PeriodDays, again.Signal.SNR)
	}
}
