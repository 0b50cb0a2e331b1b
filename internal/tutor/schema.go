package tutor

import (
	"github.com/abhisek/gcsetutor/internal/llm"
	"github.com/abhisek/gcsetutor/internal/session"
)

// TurnSchema defines the JSON schema for a tutor turn.
var TurnSchema = &llm.Schema{
	Name:        "tutor-turn",
	Description: "Evaluation of the student's message and the tutor's reply",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"evaluation": map[string]any{
				"type":        "string",
				"enum":        []any{"correct", "partial", "incorrect", "unknown"},
				"description": "Correctness of the student's answer, or unknown if the message is not an answer",
			},
			"confidence": map[string]any{
				"type":        "number",
				"minimum":     0.0,
				"maximum":     1.0,
				"description": "Confidence in the evaluation (0.0-1.0)",
			},
			"error_type": map[string]any{
				"type":        "string",
				"description": "Short label for the mistake (e.g. sign_error, misread_question), empty if none",
			},
			"action": map[string]any{
				"type":        "string",
				"enum":        actionEnum(),
				"description": "The teaching move this reply makes",
			},
			"message": map[string]any{
				"type":        "string",
				"description": "The reply to show the student, ending with one question when appropriate",
			},
			"techniques": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string", "enum": techniqueEnum()},
				"description": "Delivery techniques used in the reply",
			},
		},
		"required":             []any{"evaluation", "confidence", "error_type", "action", "message", "techniques"},
		"additionalProperties": false,
	},
}

func actionEnum() []any {
	var out []any
	for _, a := range session.Actions() {
		out = append(out, string(a))
	}
	return out
}

func techniqueEnum() []any {
	var out []any
	for _, t := range Techniques() {
		out = append(out, t)
	}
	return out
}
