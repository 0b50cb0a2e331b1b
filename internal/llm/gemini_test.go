package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"google.golang.org/genai"
)

func TestGeminiSchema(t *testing.T) {
	s := geminiSchema(turnSchema.Definition)
	if s.Type != genai.TypeObject {
		t.Fatalf("type = %v", s.Type)
	}
	if !slices.Equal(s.Required, []string{"evaluation", "confidence", "message"}) {
		t.Errorf("required = %v", s.Required)
	}
	if !slices.Equal(s.PropertyOrdering, s.Required) {
		t.Errorf("ordering = %v", s.PropertyOrdering)
	}
	if got := s.Properties["evaluation"].Enum; len(got) != 4 {
		t.Errorf("evaluation enum = %v", got)
	}
	conf := s.Properties["confidence"]
	if conf.Type != genai.TypeNumber || conf.Minimum == nil || *conf.Maximum != 1 {
		t.Errorf("confidence = %+v", conf)
	}
	if s.Properties["techniques"].Items.Type != genai.TypeString {
		t.Errorf("techniques items = %+v", s.Properties["techniques"].Items)
	}

	// Schemas built with []string slices convert the same way.
	typed := geminiSchema(map[string]any{"type": "object", "required": []string{"a"}, "properties": map[string]any{
		"a": map[string]any{"type": "string", "enum": []string{"x", "y"}},
	}})
	if !slices.Equal(typed.Required, []string{"a"}) || len(typed.Properties["a"].Enum) != 2 {
		t.Errorf("typed schema = %+v", typed)
	}
}

func TestGeminiProvider_Turn(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content":      map[string]any{"role": "model", "parts": []map[string]any{{"text": validTurn}}},
				"finishReason": "STOP",
			}},
			"usageMetadata": map[string]any{"promptTokenCount": 50, "candidatesTokenCount": 20, "totalTokenCount": 70},
			"modelVersion":  "gemini-2.5-flash-001",
		})
	}))
	t.Cleanup(srv.Close)

	p, err := NewGeminiProvider(context.Background(), GeminiConfig{APIKey: "g", Model: "gemini-flash", BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	if p.ModelID() != "gemini-2.5-flash" {
		t.Errorf("ModelID() = %q", p.ModelID())
	}

	resp, err := p.Generate(context.Background(), Request{
		System:   "You are a GCSE tutor.",
		Messages: []Message{{Role: RoleUser, Content: "0.6?"}},
		Schema:   turnSchema,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if string(resp.Content) != validTurn || resp.Usage.TotalTokens != 70 || resp.Model != "gemini-2.5-flash-001" {
		t.Errorf("resp = %+v", resp)
	}
	if !strings.Contains(path, "gemini-2.5-flash:generateContent") {
		t.Errorf("path = %q", path)
	}
}

func TestGeminiContents_Roles(t *testing.T) {
	got := geminiContents([]Message{
		{Role: RoleUser, Content: "What is 0.6 as a fraction?"},
		{Role: RoleAssistant, Content: "What is 6 over 10 simplified?"},
		{Role: RoleUser, Content: "3/5"},
	})
	want := []genai.Role{genai.RoleUser, genai.RoleModel, genai.RoleUser}
	if len(got) != len(want) {
		t.Fatalf("got %d contents, want %d", len(got), len(want))
	}
	for i, c := range got {
		if genai.Role(c.Role) != want[i] {
			t.Errorf("content %d role = %q, want %q", i, c.Role, want[i])
		}
		if len(c.Parts) != 1 || c.Parts[0].Text == "" {
			t.Errorf("content %d parts = %+v", i, c.Parts)
		}
	}
}
