package formatter

import (
	"fmt"
	"strings"

	"github.com/gclog-analysis/pkg/model"
)

// TableFormatter renders the report as a boxed ASCII table followed by the
// allocation size percentile listing.
type TableFormatter struct{}

// Name returns "table".
func (f *TableFormatter) Name() string {
	return "table"
}

var tableHeaders = []string{"Region Size", "Max Allocation Size (50%)", "Number of Allocations"}

// Render returns the printable report.
func (f *TableFormatter) Render(rep *model.Report) (string, error) {
	var b strings.Builder

	if rep.HasRegionSize() {
		fmt.Fprintf(&b, "Region Size: %s - %s\n", model.FormatBytes(rep.RegionSize), rep.Source)
	} else {
		fmt.Fprintf(&b, "Region Size: unknown - %s\n", rep.Source)
		fmt.Fprintf(&b, "WARN: no region size announcement found, bucket table unavailable\n")
	}

	if !rep.HasAllocations() {
		b.WriteString("\nNo humongous allocations were identified in the provided data set.\n")
		return b.String(), nil
	}

	if len(rep.Buckets) > 0 {
		f.renderBuckets(&b, rep.Buckets)
	}

	p := rep.Percentiles
	fmt.Fprintf(&b, "\nAllocation Size Percentiles:\n\tmin: %d\n\tp50: %d\n\tp75: %d\n\tp90: %d\n\tp99: %d\n\tmax: %d\n",
		p.Min, p.P50, p.P75, p.P90, p.P99, p.Max)

	return b.String(), nil
}

// renderBuckets draws the bucket table with column widths sized to content.
func (f *TableFormatter) renderBuckets(b *strings.Builder, buckets []model.RegionBucket) {
	rows := make([][]string, 0, len(buckets))
	for i := range buckets {
		rows = append(rows, []string{
			buckets[i].Label,
			maxSizeCell(&buckets[i]),
			fmt.Sprintf("%d", buckets[i].Count),
		})
	}

	widths := make([]int, len(tableHeaders))
	for i, h := range tableHeaders {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	sep := buildSeparator(widths)
	b.WriteString(sep)
	writeRow(b, tableHeaders, widths)
	b.WriteString(sep)
	for _, row := range rows {
		writeRow(b, row, widths)
	}
	b.WriteString(sep)
}

// maxSizeCell renders the bucket threshold column. The Overflow bucket has
// no finite threshold.
func maxSizeCell(bucket *model.RegionBucket) string {
	if bucket.IsOverflow() {
		return "-"
	}
	return fmt.Sprintf("%d", bucket.MaxAllocationSize)
}

func buildSeparator(widths []int) string {
	var b strings.Builder
	for _, w := range widths {
		b.WriteString("+")
		b.WriteString(strings.Repeat("-", w+2))
	}
	b.WriteString("+\n")
	return b.String()
}

func writeRow(b *strings.Builder, cells []string, widths []int) {
	for i, cell := range cells {
		fmt.Fprintf(b, "| %*s ", widths[i], cell)
	}
	b.WriteString("|\n")
}

// FormatSummary returns a summary map for serialization.
func (f *TableFormatter) FormatSummary(rep *model.Report) map[string]interface{} {
	return reportSummary(rep)
}

// reportSummary builds the shared summary map written to summary.json.
func reportSummary(rep *model.Report) map[string]interface{} {
	summary := map[string]interface{}{
		"source":            rep.Source,
		"total_allocations": rep.TotalAllocations,
	}

	if rep.HasRegionSize() {
		summary["region_size"] = rep.RegionSize
		summary["buckets"] = rep.Buckets
	}

	if rep.Percentiles != nil {
		summary["percentiles"] = rep.Percentiles
	}

	return summary
}
