// Package formatter renders finalized analysis reports for output.
package formatter

import (
	"github.com/gclog-analysis/pkg/model"
)

// ResultFormatter is the interface for rendering an analysis report.
type ResultFormatter interface {
	// Render returns the report as a printable string.
	Render(rep *model.Report) (string, error)

	// FormatSummary returns a summary map for serialization.
	FormatSummary(rep *model.Report) map[string]interface{}

	// Name returns the output format name this formatter handles.
	Name() string
}

// Registry manages formatter instances keyed by output format name.
type Registry struct {
	formatters map[string]ResultFormatter
	fallback   ResultFormatter
}

// NewRegistry creates a new formatter registry with default formatters.
func NewRegistry() *Registry {
	r := &Registry{
		formatters: make(map[string]ResultFormatter),
		fallback:   &TableFormatter{},
	}

	r.Register(&TableFormatter{})
	r.Register(&JSONFormatter{})

	return r
}

// Register registers a formatter under its format name.
func (r *Registry) Register(f ResultFormatter) {
	r.formatters[f.Name()] = f
}

// Get returns the formatter for a format name, falling back to the table
// formatter for unknown names.
func (r *Registry) Get(format string) ResultFormatter {
	if f, ok := r.formatters[format]; ok {
		return f
	}
	return r.fallback
}
