package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestMockProvider_Queue(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a":1}`), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Err: &ErrRateLimit{}},
	)
	req := Request{System: "sys", Messages: []Message{{Role: RoleUser, Content: "first"}}}

	resp, err := mock.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `{"a":1}` || resp.Usage.InputTokens != 10 || resp.StopReason != StopEnd {
		t.Errorf("first response = %+v", resp)
	}

	var rl *ErrRateLimit
	if _, err := mock.Generate(context.Background(), req); !errors.As(err, &rl) {
		t.Errorf("second call err = %v, want ErrRateLimit", err)
	}

	var unavail *ErrProviderUnavailable
	if _, err := mock.Generate(context.Background(), req); !errors.As(err, &unavail) {
		t.Errorf("empty queue err = %v, want ErrProviderUnavailable", err)
	}

	if mock.CallCount() != 3 || mock.Calls[0].System != "sys" {
		t.Errorf("calls = %d, first system %q", mock.CallCount(), mock.Calls[0].System)
	}
	if mock.ModelID() != "mock" {
		t.Errorf("ModelID() = %q", mock.ModelID())
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != PurposeUnknown {
		t.Errorf("PurposeFrom(empty) = %q, want %q", p, PurposeUnknown)
	}
	if p := PurposeFrom(WithPurpose(ctx, PurposeTutorTurn)); p != PurposeTutorTurn {
		t.Errorf("PurposeFrom = %q, want %q", p, PurposeTutorTurn)
	}
	if p := PurposeFrom(WithPurpose(ctx, "")); p != PurposeUnknown {
		t.Errorf("blank purpose = %q, want %q", p, PurposeUnknown)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"anthropic without key", Config{Provider: ProviderAnthropic}, true},
		{"anthropic with key", Config{Provider: ProviderAnthropic, Anthropic: AnthropicConfig{APIKey: "sk-test"}}, false},
		{"openai without key", Config{Provider: ProviderOpenAI}, true},
		{"openai with key", Config{Provider: ProviderOpenAI, OpenAI: OpenAIConfig{APIKey: "sk-test"}}, false},
		{"gemini without key", Config{Provider: ProviderGemini}, true},
		{"openrouter with key", Config{Provider: ProviderOpenRouter, OpenRouter: OpenRouterConfig{APIKey: "sk-or-test"}}, false},
		{"mock needs no key", Config{Provider: ProviderMock}, false},
		{"negative retries", Config{Provider: ProviderMock, Retry: RetryConfig{MaxAttempts: -1}}, true},
		{"temperature out of range", Config{Provider: ProviderMock, Temperature: 1.5}, true},
		{"unknown provider", Config{Provider: "cohere"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("GCSE_LLM_PROVIDER", "gemini")
	t.Setenv("GCSE_GEMINI_API_KEY", "g-key")
	t.Setenv("GCSE_GEMINI_MODEL", "gemini-pro")
	t.Setenv("GCSE_ANTHROPIC_BASE_URL", "http://gateway.local")

	cfg := ConfigFromEnv()
	if cfg.Provider != ProviderGemini || cfg.Gemini.APIKey != "g-key" || cfg.Gemini.Model != "gemini-pro" {
		t.Errorf("gemini config = %q %+v", cfg.Provider, cfg.Gemini)
	}
	if cfg.Anthropic.BaseURL != "http://gateway.local" {
		t.Errorf("anthropic base url = %q", cfg.Anthropic.BaseURL)
	}
	if !cfg.HasAPIKey() {
		t.Error("HasAPIKey() = false with a gemini key set")
	}
	if cfg.MaxTokens != 1024 {
		t.Errorf("MaxTokens default lost: %d", cfg.MaxTokens)
	}
}

func TestDiscoverConfig(t *testing.T) {
	for _, k := range []string{"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
	if _, ok := DiscoverConfig(); ok {
		t.Fatal("DiscoverConfig found a provider with no keys set")
	}

	t.Setenv("OPENROUTER_API_KEY", "or-key")
	t.Setenv("OPENAI_API_KEY", "oa-key")
	cfg, ok := DiscoverConfig()
	if !ok || cfg.Provider != ProviderOpenAI || cfg.OpenAI.APIKey != "oa-key" {
		t.Errorf("DiscoverConfig() = %q %v, want openai first", cfg.Provider, ok)
	}
}

func TestResolveModel(t *testing.T) {
	tests := []struct{ provider, in, want string }{
		{ProviderAnthropic, "claude-haiku", "claude-haiku-4-5"},
		{ProviderGemini, "gemini-flash", "gemini-2.5-flash"},
		{ProviderOpenAI, "gpt-4o-mini", "gpt-4o-mini"},
		{ProviderOpenAI, "claude-haiku", "claude-haiku"},
	}
	for _, tt := range tests {
		if got := resolveModel(tt.provider, tt.in); got != tt.want {
			t.Errorf("resolveModel(%s, %s) = %q, want %q", tt.provider, tt.in, got, tt.want)
		}
	}
}
