package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts: attempts,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
		Multiplier:  2,
	}
}

var okTurn = MockResponse{Content: json.RawMessage(`{"message":"Nice work. What is 3 x 4?"}`)}

func TestRetry(t *testing.T) {
	unavailable := MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("503")}}
	invalid := MockResponse{Err: &ErrInvalidResponse{Err: errors.New("not json")}}

	tests := []struct {
		name      string
		attempts  int
		script    []MockResponse
		wantCalls int
		wantErr   any
	}{
		{"first attempt succeeds", 3, []MockResponse{okTurn}, 1, nil},
		{"transient then success", 3, []MockResponse{unavailable, okTurn}, 2, nil},
		{"gives up after max attempts", 3, []MockResponse{unavailable, unavailable, unavailable, okTurn}, 3, &ErrProviderUnavailable{}},
		{"rejected is final", 3, []MockResponse{{Err: &ErrRejected{StatusCode: 401, Err: errors.New("bad key")}}, okTurn}, 1, &ErrRejected{}},
		{"truncation is final", 3, []MockResponse{{Err: &ErrMaxTokensExceeded{}}, okTurn}, 1, &ErrMaxTokensExceeded{}},
		{"invalid retried once", 5, []MockResponse{invalid, invalid, okTurn}, 2, &ErrInvalidResponse{}},
		{"invalid then success", 3, []MockResponse{invalid, okTurn}, 2, nil},
		{"zero attempts still calls once", 0, []MockResponse{okTurn}, 1, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(tt.script...)
			_, err := WithRetry(mock, fastRetry(tt.attempts)).Generate(context.Background(), Request{})

			if got := mock.CallCount(); got != tt.wantCalls {
				t.Errorf("calls = %d, want %d", got, tt.wantCalls)
			}
			switch want := tt.wantErr.(type) {
			case nil:
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			case *ErrProviderUnavailable:
				if !errors.As(err, &want) {
					t.Errorf("err = %v, want ErrProviderUnavailable", err)
				}
			case *ErrRejected:
				if !errors.As(err, &want) {
					t.Errorf("err = %v, want ErrRejected", err)
				}
			case *ErrMaxTokensExceeded:
				if !errors.As(err, &want) {
					t.Errorf("err = %v, want ErrMaxTokensExceeded", err)
				}
			case *ErrInvalidResponse:
				if !errors.As(err, &want) {
					t.Errorf("err = %v, want ErrInvalidResponse", err)
				}
			}
		})
	}
}

func TestRetry_StopsOnCancel(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrProviderUnavailable{}}, okTurn)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := fastRetry(3)
	cfg.InitialWait = time.Hour
	cfg.MaxWait = time.Hour
	_, err := WithRetry(mock, cfg).Generate(ctx, Request{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if mock.CallCount() != 1 {
		t.Errorf("calls = %d, want 1", mock.CallCount())
	}
}

func TestRetry_HonoursRetryAfter(t *testing.T) {
	r := &RetryProvider{config: fastRetry(3)}
	got := r.backoff(0, &ErrRateLimit{RetryAfter: 2 * time.Second})
	if got != 2*time.Second {
		t.Errorf("backoff = %v, want 2s", got)
	}

	got = r.backoff(10, &ErrProviderUnavailable{})
	if limit := time.Duration(float64(r.config.MaxWait) * 1.2); got > limit {
		t.Errorf("backoff = %v, should be capped near MaxWait (%v)", got, limit)
	}
}

func TestRetry_ModelIDDelegates(t *testing.T) {
	if got := WithRetry(NewMockProvider(), fastRetry(1)).ModelID(); got != "mock" {
		t.Errorf("ModelID() = %q, want mock", got)
	}
}
