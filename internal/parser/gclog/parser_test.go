package gclog

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gclog-analysis/internal/testutil"
	"github.com/gclog-analysis/pkg/model"
)

func TestParser_Parse_Fixture(t *testing.T) {
	parser := NewParser(nil)
	rep, err := parser.Parse(context.Background(), "humongous.log", testutil.LoadFixtureReader(t, "humongous.log"))

	require.NoError(t, err)
	require.NotNil(t, rep)

	assert.Equal(t, "humongous.log", rep.Source)
	assert.Equal(t, uint64(16*model.MB), rep.RegionSize)

	// Three well-formed allocation lines; the corrupted one is dropped.
	assert.Equal(t, int64(3), rep.TotalAllocations)

	require.Len(t, rep.Buckets, 5)
	assert.Equal(t, int64(2), rep.Buckets[3].Count) // 16MB bucket
	assert.Equal(t, int64(1), rep.Buckets[4].Count) // Overflow

	require.NotNil(t, rep.Percentiles)
	assert.Equal(t, uint64(8388609), rep.Percentiles.Min)
	assert.Equal(t, uint64(16777216), rep.Percentiles.P50)
	assert.Equal(t, uint64(44929385), rep.Percentiles.Max)
}

func TestParser_Parse_EmptyInput(t *testing.T) {
	parser := NewParser(nil)
	rep, err := parser.Parse(context.Background(), "empty.log", strings.NewReader(""))

	require.NoError(t, err)
	require.NotNil(t, rep)
	assert.False(t, rep.HasRegionSize())
	assert.False(t, rep.HasAllocations())
	assert.Nil(t, rep.Percentiles)
}

func TestParser_Parse_AllocationBeforeRegionSize(t *testing.T) {
	// The region announcement arrives after the first allocations; bucket
	// counts must match the announcement-first ordering.
	shuffled := `allocation request: 8388609 bytes, source: concurrent humongous allocation]
allocation request: 16777216 bytes, source: concurrent humongous allocation]
[0.018s][info][gc,heap] Heap region size: 16M
allocation request: 44929385 bytes, source: concurrent humongous allocation]`

	ordered := `[0.018s][info][gc,heap] Heap region size: 16M
allocation request: 8388609 bytes, source: concurrent humongous allocation]
allocation request: 16777216 bytes, source: concurrent humongous allocation]
allocation request: 44929385 bytes, source: concurrent humongous allocation]`

	parser := NewParser(nil)

	repShuffled, err := parser.Parse(context.Background(), "a.log", strings.NewReader(shuffled))
	require.NoError(t, err)
	repOrdered, err := parser.Parse(context.Background(), "b.log", strings.NewReader(ordered))
	require.NoError(t, err)

	assert.Equal(t, repOrdered.Buckets, repShuffled.Buckets)
	assert.Equal(t, repOrdered.Percentiles, repShuffled.Percentiles)
}

func TestParser_Parse_NoAllocations(t *testing.T) {
	input := `[0.018s][info][gc,heap] Heap region size: 8M
[0.020s][info][gc] Using G1`

	parser := NewParser(nil)
	rep, err := parser.Parse(context.Background(), "quiet.log", strings.NewReader(input))

	require.NoError(t, err)
	assert.True(t, rep.HasRegionSize())
	assert.False(t, rep.HasAllocations())
	assert.Nil(t, rep.Percentiles)
	for _, b := range rep.Buckets {
		assert.Equal(t, int64(0), b.Count)
	}
}

func TestParser_Parse_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	parser := NewParser(nil)
	_, err := parser.Parse(ctx, "x.log", strings.NewReader("some line\n"))
	assert.ErrorIs(t, err, context.Canceled)
}
