package aggregator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gclog-analysis/pkg/model"
)

func TestBuildLadder_16MBRegion(t *testing.T) {
	buckets := BuildLadder(16 * model.MB)
	require.Len(t, buckets, 5)

	assert.Equal(t, "2MB", buckets[0].Label)
	assert.Equal(t, uint64(2*model.MB), buckets[0].MaxAllocationSize)
	assert.Equal(t, "4MB", buckets[1].Label)
	assert.Equal(t, "8MB", buckets[2].Label)
	assert.Equal(t, "16MB", buckets[3].Label)
	assert.Equal(t, uint64(16*model.MB), buckets[3].MaxAllocationSize)
	assert.Equal(t, model.OverflowLabel, buckets[4].Label)
	assert.Equal(t, uint64(math.MaxUint64), buckets[4].MaxAllocationSize)
}

func TestBuildLadder_32MBRegion(t *testing.T) {
	buckets := BuildLadder(32 * model.MB)
	require.Len(t, buckets, 6)

	labels := make([]string, len(buckets))
	for i, b := range buckets {
		labels[i] = b.Label
	}
	assert.Equal(t, []string{"2MB", "4MB", "8MB", "16MB", "32MB", model.OverflowLabel}, labels)
}

func TestBuildLadder_RegionBelowMinimum(t *testing.T) {
	buckets := BuildLadder(1 * model.MB)
	require.Len(t, buckets, 2)
	assert.Equal(t, "1MB", buckets[0].Label)
	assert.Equal(t, uint64(1*model.MB), buckets[0].MaxAllocationSize)
	assert.True(t, buckets[1].IsOverflow())
}

func TestBuildLadder_Contiguous(t *testing.T) {
	buckets := BuildLadder(64 * model.MB)

	var prev uint64
	for _, b := range buckets {
		assert.Greater(t, b.MaxAllocationSize, prev)
		prev = b.MaxAllocationSize
	}
	assert.True(t, buckets[len(buckets)-1].IsOverflow())
}

func TestAggregator_ScenarioRegion16MB(t *testing.T) {
	agg := New("test.log")
	agg.ObserveRegionSize(16 * model.MB)
	agg.ObserveAllocation(8388609)
	agg.ObserveAllocation(16777216)
	agg.ObserveAllocation(44929385)

	rep := agg.Finalize()
	require.NotNil(t, rep)
	assert.Equal(t, uint64(16*model.MB), rep.RegionSize)
	assert.Equal(t, int64(3), rep.TotalAllocations)

	counts := bucketCounts(rep)
	// 8388609 exceeds the 8MB threshold and 16777216 sits exactly on the
	// 16MB threshold: both land in the 16MB bucket. 44929385 overflows.
	assert.Equal(t, int64(0), counts["2MB"])
	assert.Equal(t, int64(0), counts["4MB"])
	assert.Equal(t, int64(0), counts["8MB"])
	assert.Equal(t, int64(2), counts["16MB"])
	assert.Equal(t, int64(1), counts[model.OverflowLabel])

	require.NotNil(t, rep.Percentiles)
	assert.Equal(t, uint64(8388609), rep.Percentiles.Min)
	assert.Equal(t, uint64(16777216), rep.Percentiles.P50)
	assert.Equal(t, uint64(44929385), rep.Percentiles.Max)
}

func TestAggregator_DeferredRebucketing(t *testing.T) {
	// Allocations arriving before the region-size announcement must end up
	// in the same buckets as if the announcement came first.
	first := New("region-first.log")
	first.ObserveRegionSize(16 * model.MB)
	first.ObserveAllocation(8388609)
	first.ObserveAllocation(16777216)
	first.ObserveAllocation(44929385)

	last := New("region-last.log")
	last.ObserveAllocation(8388609)
	last.ObserveAllocation(16777216)
	last.ObserveAllocation(44929385)
	last.ObserveRegionSize(16 * model.MB)

	assert.Equal(t, bucketCounts(first.Finalize()), bucketCounts(last.Finalize()))
}

func TestAggregator_RegionSizeLastWriteWins(t *testing.T) {
	agg := New("rotated.log")
	agg.ObserveRegionSize(4 * model.MB)
	agg.ObserveAllocation(3 * model.MB)
	agg.ObserveAllocation(50 * model.MB)

	// The log rotated to a larger region size mid-run; the ladder must be
	// rebuilt and prior allocations re-bucketed, not left in stale buckets.
	agg.ObserveRegionSize(16 * model.MB)
	rep := agg.Finalize()

	assert.Equal(t, uint64(16*model.MB), rep.RegionSize)
	counts := bucketCounts(rep)
	assert.Equal(t, int64(1), counts["4MB"])
	assert.Equal(t, int64(1), counts[model.OverflowLabel])
	assert.Equal(t, sumCounts(rep), rep.TotalAllocations)
}

func TestAggregator_CountConservation(t *testing.T) {
	agg := New("conservation.log")
	sizes := []uint64{1, 1048576, 1048577, 2097152, 8388609, 100 << 20, 3, 16777216}
	for i, s := range sizes {
		if i == 3 {
			agg.ObserveRegionSize(16 * model.MB)
		}
		agg.ObserveAllocation(s)
	}

	rep := agg.Finalize()
	assert.Equal(t, int64(len(sizes)), rep.TotalAllocations)
	assert.Equal(t, int64(len(sizes)), sumCounts(rep))
}

func TestAggregator_NoRegionSize(t *testing.T) {
	agg := New("noregion.log")
	agg.ObserveAllocation(4 * model.MB)
	agg.ObserveAllocation(9 * model.MB)

	rep := agg.Finalize()
	assert.False(t, rep.HasRegionSize())
	assert.Nil(t, rep.Buckets)

	// Percentiles are still computed from the raw sizes.
	require.NotNil(t, rep.Percentiles)
	assert.Equal(t, uint64(4*model.MB), rep.Percentiles.Min)
	assert.Equal(t, uint64(9*model.MB), rep.Percentiles.Max)
}

func TestAggregator_NoAllocations(t *testing.T) {
	agg := New("quiet.log")
	agg.ObserveRegionSize(8 * model.MB)

	rep := agg.Finalize()
	assert.True(t, rep.HasRegionSize())
	assert.False(t, rep.HasAllocations())
	assert.Nil(t, rep.Percentiles)
	assert.Equal(t, int64(0), sumCounts(rep))
}

func bucketCounts(rep *model.Report) map[string]int64 {
	counts := make(map[string]int64)
	for _, b := range rep.Buckets {
		counts[b.Label] = b.Count
	}
	return counts
}

func sumCounts(rep *model.Report) int64 {
	var total int64
	for _, b := range rep.Buckets {
		total += b.Count
	}
	return total
}
