// Package llm is the model layer behind the tutor: one Provider interface
// over Anthropic, OpenAI, Gemini and OpenRouter, plus retry, event logging
// and an in-process mock.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
)

// Provider generates one structured reply.
type Provider interface {
	// Generate returns JSON matching req.Schema when one is set, or the raw
	// text as a JSON string otherwise.
	Generate(ctx context.Context, req Request) (*Response, error)

	ModelID() string
}

type Request struct {
	System string

	// Messages alternate user/assistant and end with a user message.
	Messages []Message

	// Schema switches on the provider's native structured output. The reply
	// is also validated locally.
	Schema *Schema

	MaxTokens int

	// Temperature in [0, 1]. Zero leaves the provider default.
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema. Name doubles as the cache key for the
// compiled validator, so it must be unique per definition.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

type Response struct {
	Content json.RawMessage
	Usage   Usage

	// Model is the id that actually served the call, which may be a dated
	// snapshot of the configured one.
	Model string

	// StopReason is StopEnd or StopMaxTokens.
	StopReason string
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Decode unmarshals the response content into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Content, v); err != nil {
		return &ErrInvalidResponse{Content: r.Content, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}
