// Package statistics provides pure calculators over observed allocation sizes.
package statistics

import "github.com/gclog-analysis/pkg/model"

// Percentiles computes min/p50/p75/p90/p99/max over an ascending-sorted
// sequence of allocation sizes using the nearest-rank method: the value for
// percentile p is sorted[ceil(p/100*n)-1], clamped to the valid index range.
// No interpolation is performed; fractional bytes are meaningless.
//
// The input must be non-empty and sorted ascending. Callers are expected to
// guard the empty case themselves and report "no data" instead; Percentiles
// returns nil for an empty input rather than fabricating zeros.
func Percentiles(sorted []uint64) *model.PercentileSnapshot {
	n := len(sorted)
	if n == 0 {
		return nil
	}

	return &model.PercentileSnapshot{
		Min: sorted[0],
		P50: nearestRank(sorted, 50),
		P75: nearestRank(sorted, 75),
		P90: nearestRank(sorted, 90),
		P99: nearestRank(sorted, 99),
		Max: sorted[n-1],
	}
}

// nearestRank returns the value at rank ceil(p*n/100), 1-based, clamped.
// Integer arithmetic avoids the float rounding that causes off-by-one ranks.
func nearestRank(sorted []uint64, p int) uint64 {
	n := len(sorted)
	idx := (p*n+99)/100 - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}
	return sorted[idx]
}
