package telemetry

import "testing"

func TestCreateSampler(t *testing.T) {
	tests := []struct {
		name    string
		sampler string
		arg     string
		desc    string
	}{
		{"default", "", "", "AlwaysOnSampler"},
		{"always_on", "always_on", "", "AlwaysOnSampler"},
		{"always_off", "always_off", "", "AlwaysOffSampler"},
		{"traceidratio", "traceidratio", "0.5", "TraceIDRatioBased{0.5}"},
		{"unknown_falls_back", "bogus", "", "AlwaysOnSampler"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := createSampler(&Config{Sampler: tt.sampler, SamplerArg: tt.arg})
			if s.Description() != tt.desc {
				t.Errorf("Expected sampler %q, got %q", tt.desc, s.Description())
			}
		})
	}
}

func TestParseRatio(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"", 1.0},
		{"0.25", 0.25},
		{"-1", 0},
		{"3", 1.0},
		{"not-a-number", 1.0},
	}

	for _, tt := range tests {
		if got := parseRatio(tt.input); got != tt.expected {
			t.Errorf("parseRatio(%q) = %v, expected %v", tt.input, got, tt.expected)
		}
	}
}
