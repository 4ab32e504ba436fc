package detection

import "math"

// Phase maps a timestamp to its position within one period, in [0,1).
func Phase(t, period float64) float64 {
	p := math.Mod(t, period) / period
	if p < 0 {
		p += 1
	}
	return p
}

// BinIndex maps a phase in [0,1) to one of nbins equal-width bins.
func BinIndex(phase float64, nbins int) int {
	idx := int(phase * float64(nbins))
	if idx >= nbins {
		idx = nbins - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}

// circularBinDistance is the distance between two bins on the phase circle,
// so bins near phase 0 and phase 1 are neighbors.
func circularBinDistance(a, b, nbins int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	if wrapped := nbins - d; wrapped < d {
		return wrapped
	}
	return d
}
