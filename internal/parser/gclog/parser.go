package gclog

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/gclog-analysis/internal/aggregator"
	"github.com/gclog-analysis/pkg/model"
	"github.com/gclog-analysis/pkg/utils"
)

// ErrReadFailed is returned when the underlying reader fails mid-scan.
var ErrReadFailed = errors.New("failed to read gc log")

// MaxLineSize caps the scanner's line buffer. GC log lines are short, but
// adaptive-size-policy dumps can run long.
const MaxLineSize = 1 << 20

// ParserOptions holds configuration for the gc log parser.
type ParserOptions struct {
	// Logger receives per-run debug statistics. Nil suppresses them.
	Logger utils.Logger
}

// Parser drives the single-pass analysis: it reads the log line by line,
// classifies each line, and routes the results into an Aggregator.
type Parser struct {
	opts *ParserOptions
}

// NewParser creates a gc log parser.
func NewParser(opts *ParserOptions) *Parser {
	if opts == nil {
		opts = &ParserOptions{}
	}
	return &Parser{opts: opts}
}

// Name returns the name of this parser.
func (p *Parser) Name() string {
	return "gclog"
}

// Parse consumes the reader to EOF and returns the finalized report for it.
// Parsing problems never fail the run; only reader errors and context
// cancellation do.
func (p *Parser) Parse(ctx context.Context, source string, reader io.Reader) (*model.Report, error) {
	ctx, span := otel.Tracer("gclog-analyzer").Start(ctx, "gclog.Parse")
	defer span.End()

	agg := aggregator.New(source)

	var lines, allocs, regions int64

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 64*1024), MaxLineSize)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		lines++
		switch c := Classify(scanner.Text()); c.Kind {
		case LineHumongousAllocation:
			allocs++
			agg.ObserveAllocation(c.Bytes)
		case LineRegionAnnouncement:
			regions++
			agg.ObserveRegionSize(c.Bytes)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}

	span.SetAttributes(
		attribute.Int64("gclog.lines", lines),
		attribute.Int64("gclog.allocations", allocs),
	)

	if p.opts.Logger != nil {
		p.opts.Logger.Debug("scanned %d lines: %d humongous allocations, %d region announcements", lines, allocs, regions)
	}

	return agg.Finalize(), nil
}
