// Package model defines the data structures shared between the analysis
// core and its consumers (formatters, repository, CLI).
package model

import (
	"fmt"
	"math"
)

// Byte size units.
const (
	KB uint64 = 1 << 10
	MB uint64 = 1 << 20
	GB uint64 = 1 << 30
)

// OverflowLabel is the label of the catch-all bucket that receives every
// allocation larger than the biggest finite threshold.
const OverflowLabel = "Overflow"

// RegionBucket is one row of the allocation histogram. Non-overflow buckets
// hold allocations in (previous threshold, MaxAllocationSize]; the Overflow
// bucket has MaxAllocationSize == math.MaxUint64 and catches the rest.
type RegionBucket struct {
	// Label is the human-readable region size this bucket represents,
	// e.g. "2MB", or OverflowLabel for the final bucket.
	Label string `json:"region_size"`

	// MaxAllocationSize is the largest allocation size in bytes that still
	// belongs to this bucket (inclusive).
	MaxAllocationSize uint64 `json:"max_allocation_size"`

	// Count is the number of allocations observed in this bucket's range.
	Count int64 `json:"num_allocations"`
}

// IsOverflow reports whether this is the catch-all bucket.
func (b *RegionBucket) IsOverflow() bool {
	return b.MaxAllocationSize == math.MaxUint64
}

// PercentileSnapshot holds nearest-rank percentile statistics over the
// observed allocation sizes, all in bytes.
type PercentileSnapshot struct {
	Min uint64 `json:"min"`
	P50 uint64 `json:"p50"`
	P75 uint64 `json:"p75"`
	P90 uint64 `json:"p90"`
	P99 uint64 `json:"p99"`
	Max uint64 `json:"max"`
}

// Report is the finalized result of one analysis run.
type Report struct {
	// Source identifies the analyzed input, usually the log file path.
	Source string `json:"source"`

	// RegionSize is the discovered GC region size in bytes. Zero means no
	// region-size announcement was found in the log.
	RegionSize uint64 `json:"region_size"`

	// Buckets is the ordered histogram, smallest threshold first, Overflow
	// last. Nil when RegionSize is unknown.
	Buckets []RegionBucket `json:"buckets,omitempty"`

	// TotalAllocations is the number of humongous allocations observed.
	TotalAllocations int64 `json:"total_allocations"`

	// Percentiles is nil when no allocations were observed. A zero-valued
	// snapshot is never fabricated for an empty run.
	Percentiles *PercentileSnapshot `json:"percentiles,omitempty"`
}

// HasRegionSize reports whether a region-size announcement was found.
func (r *Report) HasRegionSize() bool {
	return r.RegionSize > 0
}

// HasAllocations reports whether any humongous allocation was observed.
func (r *Report) HasAllocations() bool {
	return r.TotalAllocations > 0
}

// FormatBytes renders a byte count in the largest unit that divides it
// evenly, matching the region-size labels used in GC logs ("2MB", "512KB").
func FormatBytes(n uint64) string {
	switch {
	case n >= GB && n%GB == 0:
		return fmt.Sprintf("%dGB", n/GB)
	case n >= MB && n%MB == 0:
		return fmt.Sprintf("%dMB", n/MB)
	case n >= KB && n%KB == 0:
		return fmt.Sprintf("%dKB", n/KB)
	default:
		return fmt.Sprintf("%dB", n)
	}
}
