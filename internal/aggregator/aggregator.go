// Package aggregator accumulates the per-run analysis state: the discovered
// region size, the derived bucket ladder, and the raw allocation sizes
// needed for percentile computation.
package aggregator

import (
	"math"
	"sort"

	"github.com/gclog-analysis/internal/statistics"
	"github.com/gclog-analysis/pkg/model"
)

// MinBucketSize is the smallest bucket threshold in the ladder. G1 region
// sizes below 2MB are rare enough that smaller rungs would only pad the
// table; a discovered region size below this still gets its own rung.
const MinBucketSize = 2 * model.MB

// Aggregator owns the accumulated state of a single analysis run. It is not
// safe for concurrent use; the pipeline is single-threaded by design.
type Aggregator struct {
	source     string
	regionSize uint64
	buckets    []model.RegionBucket
	sizes      []uint64
}

// New creates an Aggregator for the given source identifier.
func New(source string) *Aggregator {
	return &Aggregator{source: source}
}

// ObserveRegionSize records a region-size announcement. Announcements are
// last-write-wins: the ladder is rebuilt against the new value and every
// previously retained allocation is re-bucketed, so bucket counts stay
// correct regardless of where in the log the announcement appears.
func (a *Aggregator) ObserveRegionSize(bytes uint64) {
	if bytes == 0 {
		return
	}
	a.regionSize = bytes
	a.buckets = BuildLadder(bytes)
	for _, s := range a.sizes {
		a.bucketFor(s).Count++
	}
}

// ObserveAllocation records one humongous allocation. The size is always
// retained for percentile purposes; bucket assignment happens immediately
// when a ladder exists and is otherwise deferred until ObserveRegionSize
// retro-buckets the backlog.
func (a *Aggregator) ObserveAllocation(bytes uint64) {
	a.sizes = append(a.sizes, bytes)
	if a.buckets != nil {
		a.bucketFor(bytes).Count++
	}
}

// Finalize sorts the retained sizes, computes percentiles, and returns the
// immutable report. The aggregator should not be reused afterwards.
func (a *Aggregator) Finalize() *model.Report {
	sort.Slice(a.sizes, func(i, j int) bool { return a.sizes[i] < a.sizes[j] })

	rep := &model.Report{
		Source:           a.source,
		RegionSize:       a.regionSize,
		Buckets:          a.buckets,
		TotalAllocations: int64(len(a.sizes)),
	}
	if len(a.sizes) > 0 {
		rep.Percentiles = statistics.Percentiles(a.sizes)
	}
	return rep
}

// bucketFor returns the bucket whose range contains size: the first bucket
// with an inclusive threshold >= size. The Overflow threshold is MaxUint64,
// so the scan is total.
func (a *Aggregator) bucketFor(size uint64) *model.RegionBucket {
	for i := range a.buckets {
		if size <= a.buckets[i].MaxAllocationSize {
			return &a.buckets[i]
		}
	}
	// Unreachable while the ladder ends in Overflow.
	return &a.buckets[len(a.buckets)-1]
}

// BuildLadder derives the bucket ladder for a region size: one bucket per
// power-of-two threshold from MinBucketSize up to and including the region
// size, plus the trailing Overflow bucket. A region size below MinBucketSize
// yields a single finite rung at the region size itself; a region size that
// is not a power of two is covered by the next power above it.
func BuildLadder(regionSize uint64) []model.RegionBucket {
	rung := MinBucketSize
	if regionSize < rung {
		rung = regionSize
	}

	var buckets []model.RegionBucket
	for rung < regionSize {
		buckets = append(buckets, model.RegionBucket{
			Label:             model.FormatBytes(rung),
			MaxAllocationSize: rung,
		})
		rung *= 2
	}
	buckets = append(buckets, model.RegionBucket{
		Label:             model.FormatBytes(rung),
		MaxAllocationSize: rung,
	})
	buckets = append(buckets, model.RegionBucket{
		Label:             model.OverflowLabel,
		MaxAllocationSize: math.MaxUint64,
	})
	return buckets
}
