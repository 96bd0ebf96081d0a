package formatter

import (
	"encoding/json"
	"fmt"

	"github.com/gclog-analysis/pkg/model"
)

// JSONFormatter renders the report as indented JSON for machine consumption.
type JSONFormatter struct{}

// Name returns "json".
func (f *JSONFormatter) Name() string {
	return "json"
}

// Render returns the report serialized as JSON.
func (f *JSONFormatter) Render(rep *model.Report) (string, error) {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	return string(data) + "\n", nil
}

// FormatSummary returns a summary map for serialization.
func (f *JSONFormatter) FormatSummary(rep *model.Report) map[string]interface{} {
	return reportSummary(rep)
}
