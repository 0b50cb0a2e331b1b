package store

import (
	"context"
	"fmt"

	"github.com/abhisek/gcsetutor/internal/session"
)

type evaluationLog struct {
	records RecordStore
}

func (l *evaluationLog) Append(ctx context.Context, e EvaluationLogEntry) (int64, error) {
	id, err := l.records.Insert(ctx, TableEvaluationLog, Record{
		"session_id":   e.SessionID,
		"student_id":   e.StudentID,
		"evaluation":   string(e.Evaluation),
		"confidence":   e.Confidence,
		"error_type":   e.ErrorType,
		"question":     e.Question,
		"answer":       e.Answer,
		"action_taken": string(e.ActionTaken),
		"created_at":   e.CreatedAt.UTC(),
	})
	if err != nil {
		return 0, fmt.Errorf("append evaluation log: %w", err)
	}
	return id, nil
}

func (l *evaluationLog) ListBySession(ctx context.Context, sessionID string, limit int) ([]EvaluationLogEntry, error) {
	recs, err := l.records.Select(ctx, TableEvaluationLog, Record{"session_id": sessionID},
		QueryOpts{OrderBy: "id", Desc: true, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("list evaluation log: %w", err)
	}
	out := make([]EvaluationLogEntry, 0, len(recs))
	for _, rec := range recs {
		out = append(out, EvaluationLogEntry{
			ID:          rec.Int("id"),
			SessionID:   rec.String("session_id"),
			StudentID:   rec.String("student_id"),
			Evaluation:  session.ParseEvaluation(rec.String("evaluation")),
			Confidence:  rec.Float("confidence"),
			ErrorType:   rec.String("error_type"),
			Question:    rec.String("question"),
			Answer:      rec.String("answer"),
			ActionTaken: session.Action(rec.String("action_taken")),
			CreatedAt:   rec.Time("created_at"),
		})
	}
	return out, nil
}
