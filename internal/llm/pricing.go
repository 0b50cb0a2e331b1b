package llm

import "strings"

// ModelCost is USD per million tokens.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Cost prices one call.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return (float64(inputTokens)*c.InputPerMTok + float64(outputTokens)*c.OutputPerMTok) / 1_000_000
}

// LookupCost returns pricing for a model id, or nil when unknown. Dated
// snapshot ids ("claude-haiku-4-5-20251001") and OpenRouter ids
// ("anthropic/claude-haiku-4.5") fall back to their base model.
func LookupCost(modelID string) *ModelCost {
	for _, id := range costCandidates(modelID) {
		if c, ok := modelCosts[id]; ok {
			return &c
		}
	}
	return nil
}

func costCandidates(id string) []string {
	ids := []string{id}
	if _, rest, ok := strings.Cut(id, "/"); ok {
		// OpenRouter writes Anthropic versions with dots.
		id = rest
		ids = append(ids, rest, strings.ReplaceAll(rest, ".", "-"))
	}
	// Strip a trailing -YYYYMMDD or -YYYY-MM-DD snapshot suffix.
	if i := strings.LastIndexByte(id, '-'); i > 0 && len(id)-i == 9 && isDigits(id[i+1:]) {
		ids = append(ids, id[:i])
	}
	if n := len(id); n > 11 && id[n-11] == '-' && isDigits(strings.ReplaceAll(id[n-10:], "-", "")) {
		ids = append(ids, id[:n-11])
	}
	return ids
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Prices from the providers' public pricing pages.
var modelCosts = map[string]ModelCost{
	"claude-haiku-4-5":  {1, 5},
	"claude-sonnet-4-5": {3, 15},
	"claude-sonnet-4":   {3, 15},
	"claude-opus-4-1":   {15, 75},
	"claude-3-5-haiku":  {0.8, 4},

	"gpt-4.1":      {2, 8},
	"gpt-4.1-mini": {0.4, 1.6},
	"gpt-4.1-nano": {0.1, 0.4},
	"gpt-4o":       {2.5, 10},
	"gpt-4o-mini":  {0.15, 0.6},
	"gpt-5":        {1.25, 10},
	"gpt-5-mini":   {0.25, 2},
	"gpt-5-nano":   {0.05, 0.4},

	"gemini-2.0-flash":      {0.1, 0.4},
	"gemini-2.5-flash":      {0.3, 2.5},
	"gemini-2.5-flash-lite": {0.1, 0.4},
	"gemini-2.5-pro":        {1.25, 10},
}
