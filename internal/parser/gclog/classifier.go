// Package gclog parses G1 GC logs and extracts humongous-object allocation
// events and region-size announcements.
package gclog

import (
	"strconv"
	"strings"

	"github.com/gclog-analysis/pkg/model"
)

// Line markers. Matching is plain substring scans; this path runs once per
// line over multi-gigabyte logs.
const (
	allocMarker   = "allocation request: "
	allocBytesSep = " bytes,"
	allocSuffix   = "source: concurrent humongous allocation]"

	// Unified logging (JDK 9+) announces the region size directly.
	regionMarkerUnified = "Heap region size: "

	// Older logs dump it as a VM flag when -XX:+PrintAdaptiveSizePolicy
	// is active.
	regionMarkerFlag = "G1HeapRegionSize="
)

// LineKind discriminates the classification result.
type LineKind int

const (
	// LineIrrelevant marks lines that carry no analyzable payload,
	// including marked lines whose numeric field failed to parse.
	LineIrrelevant LineKind = iota

	// LineRegionAnnouncement marks a region-size announcement.
	LineRegionAnnouncement

	// LineHumongousAllocation marks a humongous allocation record.
	LineHumongousAllocation
)

// Classification is the result of classifying one log line. Bytes holds the
// region size or the allocation size depending on Kind, and is zero for
// LineIrrelevant.
type Classification struct {
	Kind  LineKind
	Bytes uint64
}

// Classify inspects one raw log line. It is a pure function: it never fails,
// never allocates per character, and scans the line in a single forward
// pass. Malformed marked lines degrade to LineIrrelevant so that one bad
// line cannot abort a run.
func Classify(line string) Classification {
	// Allocation records vastly outnumber region announcements, so they
	// are probed first.
	if idx := strings.Index(line, allocMarker); idx >= 0 {
		if size, ok := parseAllocation(line[idx+len(allocMarker):]); ok {
			return Classification{Kind: LineHumongousAllocation, Bytes: size}
		}
		return Classification{Kind: LineIrrelevant}
	}

	if idx := strings.Index(line, regionMarkerUnified); idx >= 0 {
		if size, ok := ParseByteSize(numericField(line[idx+len(regionMarkerUnified):])); ok {
			return Classification{Kind: LineRegionAnnouncement, Bytes: size}
		}
		return Classification{Kind: LineIrrelevant}
	}

	if idx := strings.Index(line, regionMarkerFlag); idx >= 0 {
		if size, ok := ParseByteSize(numericField(line[idx+len(regionMarkerFlag):])); ok {
			return Classification{Kind: LineRegionAnnouncement, Bytes: size}
		}
		return Classification{Kind: LineIrrelevant}
	}

	return Classification{Kind: LineIrrelevant}
}

// parseAllocation extracts the byte count from the tail of a humongous
// allocation line, i.e. everything after allocMarker. The tail must contain
// the " bytes," separator directly after the digits and end with the
// concurrent-humongous-allocation source tag.
func parseAllocation(tail string) (uint64, bool) {
	if !strings.HasSuffix(tail, allocSuffix) {
		return 0, false
	}
	sep := strings.Index(tail, allocBytesSep)
	if sep <= 0 {
		return 0, false
	}
	size, err := strconv.ParseUint(tail[:sep], 10, 64)
	if err != nil || size == 0 {
		return 0, false
	}
	return size, true
}

// numericField returns the leading run of characters that can form a sized
// value (digits plus a unit suffix), stopping at the first field break.
func numericField(s string) string {
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9':
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z':
		default:
			return s[:i]
		}
	}
	return s
}

// ParseByteSize converts a size token with an optional unit suffix into a
// byte count. Accepted suffixes: none/B (bytes), K/KB, M/MB, G/GB, in either
// case. Returns false for empty, non-numeric, or zero values.
func ParseByteSize(s string) (uint64, bool) {
	digits := 0
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		digits++
	}
	if digits == 0 {
		return 0, false
	}

	value, err := strconv.ParseUint(s[:digits], 10, 64)
	if err != nil || value == 0 {
		return 0, false
	}

	var unit uint64
	switch strings.ToUpper(s[digits:]) {
	case "", "B":
		unit = 1
	case "K", "KB":
		unit = model.KB
	case "M", "MB":
		unit = model.MB
	case "G", "GB":
		unit = model.GB
	default:
		return 0, false
	}

	if value > (1<<63)/unit {
		return 0, false
	}
	return value * unit, true
}
