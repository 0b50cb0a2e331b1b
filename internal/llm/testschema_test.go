package llm

// turnSchema mirrors the shape of the tutor's structured reply.
var turnSchema = &Schema{
	Name: "test-turn",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"evaluation": map[string]any{"type": "string", "enum": []any{"correct", "partial", "incorrect", "unknown"}},
			"confidence": map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
			"message":    map[string]any{"type": "string"},
			"techniques": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
		"required":             []any{"evaluation", "confidence", "message"},
		"additionalProperties": false,
	},
}

const validTurn = `{"evaluation":"partial","confidence":0.7,"message":"Close. Which side is the hypotenuse?"}`
