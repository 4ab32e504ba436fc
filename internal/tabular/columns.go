package tabular

import (
	"fmt"
	"math"
	"strings"

	"exoplanet-lab/internal/domain"
)

// Column identification heuristics.
var (
	timeKeywords = []string{"time", "bjd", "jd", "mjd", "date", "epoch", "hjd"}
	fluxKeywords = []string{"flux", "intensity", "mag", "brightness", "count", "signal", "adu", "electron"}

	// nonFluxKeywords excludes error, quality and catalog/positional metadata
	// columns from flux selection.
	nonFluxKeywords = []string{
		"err", "uncertainty", "sigma", "quality",
		"bkg", "background", "centr", "pos_corr", "cadence",
		"teff", "logg",
	}

	// nonFluxExact are coordinate columns matched by whole name only; "ra"
	// as a substring would reject legitimate names like count_rate.
	nonFluxExact = []string{"ra", "dec"}
)

const (
	// monotonicProbe is how many leading numeric values are inspected when
	// guessing a time column by monotonicity.
	monotonicProbe = 100
	// monotonicFraction of consecutive pairs that must be increasing.
	monotonicFraction = 0.9
	// maxVariation is the upper bound on the coefficient of variation for a
	// column to be considered physical flux.
	maxVariation = 10.0
)

// AmbiguousColumnsError reports that no time or flux column could be
// determined. Available lists the column names for the caller to surface.
type AmbiguousColumnsError struct {
	Missing   string // "time" or "flux"
	Available []string
}

func (e *AmbiguousColumnsError) Error() string {
	return fmt.Sprintf("could not determine %s column; available columns: %s",
		e.Missing, strings.Join(e.Available, ", "))
}

// IdentifyColumns infers the time and flux column names of a table.
func IdentifyColumns(t *Table) (timeCol, fluxCol string, err error) {
	timeCol = findTimeColumn(t)
	if timeCol == "" {
		return "", "", &AmbiguousColumnsError{Missing: "time", Available: t.Names}
	}

	fluxCol = findFluxColumn(t, timeCol)
	if fluxCol == "" {
		return "", "", &AmbiguousColumnsError{Missing: "flux", Available: t.Names}
	}
	return timeCol, fluxCol, nil
}

// findTimeColumn picks the time axis: first by name keyword, then by
// monotonicity of the leading values.
func findTimeColumn(t *Table) string {
	for _, name := range t.Names {
		lower := strings.ToLower(name)
		// timecorr and friends are corrections, not the time axis
		if strings.Contains(lower, "corr") {
			continue
		}
		for _, kw := range timeKeywords {
			if strings.Contains(lower, kw) {
				if len(t.numericValues(name)) >= 1 {
					return name
				}
				break
			}
		}
	}

	// No name match: look for a mostly increasing numeric column.
	for _, name := range t.Names {
		values := t.numericValues(name)
		if len(values) > monotonicProbe {
			values = values[:monotonicProbe]
		}
		if isMostlyIncreasing(values) {
			return name
		}
	}
	return ""
}

// isMostlyIncreasing reports whether more than monotonicFraction of
// consecutive pairs are increasing.
func isMostlyIncreasing(values []float64) bool {
	if len(values) < 2 {
		return false
	}
	increasing := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[i-1] {
			increasing++
		}
	}
	return float64(increasing)/float64(len(values)-1) > monotonicFraction
}

// findFluxColumn picks the brightness axis: keyword match first, then the
// non-monotonic column with the largest coefficient of variation.
func findFluxColumn(t *Table, timeCol string) string {
	var candidates []string
	for _, name := range t.Names {
		if name == timeCol || isNonFlux(name) {
			continue
		}
		candidates = append(candidates, name)
	}

	for _, name := range candidates {
		lower := strings.ToLower(name)
		for _, kw := range fluxKeywords {
			if strings.Contains(lower, kw) {
				if len(t.numericValues(name)) >= 1 {
					return name
				}
				break
			}
		}
	}

	// Statistical fallback: highest std/|mean| within physical bounds.
	best := ""
	bestCV := 0.0
	for _, name := range candidates {
		values := t.numericValues(name)
		if countDistinct(values) < 2 {
			continue
		}
		if isStrictlyMonotonic(values) {
			// monotonic columns are time-like, not flux
			continue
		}
		mean := domain.Mean(values)
		if mean == 0 {
			continue
		}
		cv := domain.StdDev(values) / math.Abs(mean)
		if cv <= 0 || cv > maxVariation {
			continue
		}
		if cv > bestCV {
			bestCV = cv
			best = name
		}
	}
	return best
}

// isNonFlux reports whether the column name matches a known non-flux keyword.
func isNonFlux(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range nonFluxKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	for _, kw := range nonFluxExact {
		if lower == kw {
			return true
		}
	}
	return false
}

func countDistinct(values []float64) int {
	seen := make(map[float64]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	return len(seen)
}

func isStrictlyMonotonic(values []float64) bool {
	if len(values) < 2 {
		return false
	}
	allUp, allDown := true, true
	for i := 1; i < len(values); i++ {
		if values[i] < values[i-1] {
			allUp = false
		}
		if values[i] > values[i-1] {
			allDown = false
		}
	}
	return allUp || allDown
}

// ToLightCurve extracts the identified columns into a light curve, dropping
// rows where either value is missing or non-numeric.
func ToLightCurve(t *Table, timeCol, fluxCol string) *domain.LightCurve {
	return domain.NewLightCurve(t.NumericColumn(timeCol), t.NumericColumn(fluxCol))
}
