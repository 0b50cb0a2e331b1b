package store

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"
)

// eventRepo implements EventRepo over the llm_request_events table.
type eventRepo struct {
	records RecordStore
	now     func() time.Time
}

func (r *eventRepo) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	_, err := r.records.Insert(ctx, TableLLMRequestLogs, Record{
		"provider":      data.Provider,
		"model":         data.Model,
		"purpose":       data.Purpose,
		"input_tokens":  int64(data.InputTokens),
		"output_tokens": int64(data.OutputTokens),
		"latency_ms":    data.LatencyMs,
		"success":       data.Success,
		"error_message": data.ErrorMessage,
		"request_body":  data.RequestBody,
		"response_body": data.ResponseBody,
		"created_at":    r.clock().UTC(),
	})
	if err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error) {
	if opts.OrderBy == "" {
		opts.OrderBy, opts.Desc = "id", true
	}
	recs, err := r.records.Select(ctx, TableLLMRequestLogs, nil, opts)
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	out := make([]LLMEvent, 0, len(recs))
	for _, rec := range recs {
		out = append(out, llmEventFromRecord(rec))
	}
	return out, nil
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int64) (*LLMEvent, error) {
	rec, err := r.records.Get(ctx, TableLLMRequestLogs, Record{"id": id})
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get LLM event %d: %w", id, err)
	}
	e := llmEventFromRecord(rec)
	return &e, nil
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]LLMPurposeUsage, error) {
	events, err := r.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		return nil, err
	}
	byPurpose := make(map[string]*LLMPurposeUsage)
	totalLatency := make(map[string]int64)
	for _, e := range events {
		u, ok := byPurpose[e.Purpose]
		if !ok {
			u = &LLMPurposeUsage{Purpose: e.Purpose}
			byPurpose[e.Purpose] = u
		}
		u.Calls++
		u.InputTokens += e.InputTokens
		u.OutputTokens += e.OutputTokens
		totalLatency[e.Purpose] += e.LatencyMs
	}
	out := make([]LLMPurposeUsage, 0, len(byPurpose))
	for p, u := range byPurpose {
		u.AvgLatencyMs = totalLatency[p] / int64(u.Calls)
		out = append(out, *u)
	}
	slices.SortFunc(out, func(a, b LLMPurposeUsage) int { return cmp.Compare(a.Purpose, b.Purpose) })
	return out, nil
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error) {
	events, err := r.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		return nil, err
	}
	byModel := make(map[string]*LLMModelUsage)
	for _, e := range events {
		u, ok := byModel[e.Model]
		if !ok {
			u = &LLMModelUsage{Model: e.Model}
			byModel[e.Model] = u
		}
		u.Calls++
		u.InputTokens += e.InputTokens
		u.OutputTokens += e.OutputTokens
	}
	out := make([]LLMModelUsage, 0, len(byModel))
	for _, u := range byModel {
		out = append(out, *u)
	}
	slices.SortFunc(out, func(a, b LLMModelUsage) int { return cmp.Compare(a.Model, b.Model) })
	return out, nil
}

func llmEventFromRecord(rec Record) LLMEvent {
	return LLMEvent{
		ID:        rec.Int("id"),
		Timestamp: rec.Time("created_at"),
		LLMRequestEventData: LLMRequestEventData{
			Provider:     rec.String("provider"),
			Model:        rec.String("model"),
			Purpose:      rec.String("purpose"),
			InputTokens:  int(rec.Int("input_tokens")),
			OutputTokens: int(rec.Int("output_tokens")),
			LatencyMs:    rec.Int("latency_ms"),
			Success:      rec.Bool("success"),
			ErrorMessage: rec.String("error_message"),
			RequestBody:  rec.String("request_body"),
			ResponseBody: rec.String("response_body"),
		},
	}
}
