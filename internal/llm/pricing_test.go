package llm

import (
	"math"
	"testing"
)

func TestLookupCost(t *testing.T) {
	tests := []struct {
		model     string
		wantInput float64
		found     bool
	}{
		{"claude-haiku-4-5", 1, true},
		{"claude-haiku-4-5-20251001", 1, true},
		{"gpt-4o-2024-08-06", 2.5, true},
		{"openai/gpt-4o-mini", 0.15, true},
		{"anthropic/claude-sonnet-4.5", 3, true},
		{"google/gemini-2.5-flash", 0.3, true},
		{"mock", 0, false},
		{"meta-llama/llama-3-8b", 0, false},
	}
	for _, tt := range tests {
		c := LookupCost(tt.model)
		if (c != nil) != tt.found {
			t.Errorf("LookupCost(%q) found = %v, want %v", tt.model, c != nil, tt.found)
			continue
		}
		if c != nil && c.InputPerMTok != tt.wantInput {
			t.Errorf("LookupCost(%q).InputPerMTok = %v, want %v", tt.model, c.InputPerMTok, tt.wantInput)
		}
	}
}

func TestModelCost_Cost(t *testing.T) {
	c := ModelCost{InputPerMTok: 3, OutputPerMTok: 15}
	got := c.Cost(2000, 500)
	if want := 0.0135; math.Abs(got-want) > 1e-9 {
		t.Errorf("Cost = %v, want %v", got, want)
	}
}
