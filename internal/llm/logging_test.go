package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhisek/gcsetutor/internal/logger"
	"github.com/abhisek/gcsetutor/internal/store"
)

type failingEventRepo struct {
	store.EventRepo
}

func (failingEventRepo) AppendLLMRequest(context.Context, store.LLMRequestEventData) error {
	return errors.New("disk full")
}

func TestLoggingProvider_RecordsEvents(t *testing.T) {
	st := store.NewMemory()
	defer st.Close()

	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"ok":true}`), Usage: Usage{InputTokens: 12, OutputTokens: 5}},
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
	)
	p := WithLogging(mock, ProviderMock, st.EventRepo(), nil)

	ctx := WithPurpose(context.Background(), PurposeTutorTurn)
	req := Request{
		System:   "be kind",
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
		Schema:   &Schema{Name: "tutor-turn", Definition: map[string]any{"type": "object"}},
	}

	if _, err := p.Generate(ctx, req); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if _, err := p.Generate(ctx, req); err == nil {
		t.Fatal("expected second call to fail")
	}

	events, err := st.EventRepo().QueryLLMEvents(ctx, store.QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	// Newest first.
	failed, ok := events[0], events[1]
	if failed.Success {
		t.Error("expected newest event to be a failure")
	}
	if failed.ErrorMessage == "" {
		t.Error("expected error message on failed event")
	}
	if !ok.Success || ok.InputTokens != 12 || ok.OutputTokens != 5 {
		t.Errorf("unexpected success event: %+v", ok)
	}
	if ok.Provider != ProviderMock || ok.Purpose != PurposeTutorTurn {
		t.Errorf("provider/purpose = %q/%q", ok.Provider, ok.Purpose)
	}
	if ok.ResponseBody != `{"ok":true}` {
		t.Errorf("response body = %q", ok.ResponseBody)
	}
	if ok.RequestBody == "" {
		t.Error("expected serialized request body")
	}
}

func TestLoggingProvider_EventFailureDoesNotFailRequest(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	log := logger.FromZap(zap.New(core))

	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})
	p := WithLogging(mock, ProviderMock, failingEventRepo{}, log)

	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logs.Len() != 1 {
		t.Fatalf("expected 1 warning, got %d", logs.Len())
	}
	if got := logs.All()[0].Message; got != "failed to log LLM request event" {
		t.Errorf("warning = %q", got)
	}
}

func TestSerializeRequest(t *testing.T) {
	got := serializeRequest(Request{
		System:   "sys",
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	want := "[system]\nsys\n\n[user]\nhi\n\n"
	if got != want {
		t.Errorf("serializeRequest() = %q, want %q", got, want)
	}
}

func TestMockProvider_Responder(t *testing.T) {
	mock := NewMockProvider()
	mock.Responder = func(req Request) MockResponse {
		return MockResponse{Content: json.RawMessage(`"echo"`)}
	}
	resp, err := mock.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var s string
	if err := resp.Decode(&s); err != nil || s != "echo" {
		t.Errorf("Decode() = %q, %v", s, err)
	}
}
