package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/abhisek/gcsetutor/internal/progress"
	"github.com/abhisek/gcsetutor/internal/session"
)

type evidenceRepo struct {
	records RecordStore
}

func (r *evidenceRepo) Get(ctx context.Context, key progress.Key) (progress.Evidence, error) {
	rec, err := r.records.Get(ctx, TableEvidence, Record{
		"student_id": key.StudentID,
		"session_id": key.SessionID,
		"topic_id":   key.TopicID,
	})
	if err != nil {
		return progress.Evidence{}, err
	}
	return evidenceFromRecord(rec)
}

func (r *evidenceRepo) Upsert(ctx context.Context, ev progress.Evidence) error {
	modes, err := json.Marshal([]string(ev.DeliveryModesUsed))
	if err != nil {
		return fmt.Errorf("encode delivery modes: %w", err)
	}
	err = r.records.Upsert(ctx, TableEvidence, Record{
		"student_id":          ev.StudentID,
		"session_id":          ev.SessionID,
		"topic_id":            ev.TopicID,
		"subject_id":          ev.SubjectID,
		"attempts":            int64(ev.Attempts),
		"correct_count":       int64(ev.CorrectCount),
		"incorrect_count":     int64(ev.IncorrectCount),
		"partial_count":       int64(ev.PartialCount),
		"last_evaluation":     string(ev.LastEvaluation),
		"understanding_state": string(ev.UnderstandingState),
		"delivery_modes_used": string(modes),
		"last_interaction_at": ev.LastInteractionAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("upsert evidence %s/%s/%s: %w", ev.StudentID, ev.SessionID, ev.TopicID, err)
	}
	return nil
}

func (r *evidenceRepo) ListByStudent(ctx context.Context, studentID string) ([]progress.Evidence, error) {
	recs, err := r.records.Select(ctx, TableEvidence, Record{"student_id": studentID}, QueryOpts{OrderBy: "last_interaction_at"})
	if err != nil {
		return nil, fmt.Errorf("list evidence: %w", err)
	}
	out := make([]progress.Evidence, 0, len(recs))
	for _, rec := range recs {
		ev, err := evidenceFromRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}

// evidenceFromRecord fails on an unreadable modes column so callers never
// write back a row that has lost its technique history.
func evidenceFromRecord(rec Record) (progress.Evidence, error) {
	var modes []string
	if raw := rec.String("delivery_modes_used"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &modes); err != nil {
			return progress.Evidence{}, fmt.Errorf("decode delivery modes for %s/%s/%s: %w",
				rec.String("student_id"), rec.String("session_id"), rec.String("topic_id"), err)
		}
	}
	return progress.Evidence{
		Key: progress.Key{
			StudentID: rec.String("student_id"),
			SessionID: rec.String("session_id"),
			TopicID:   rec.String("topic_id"),
		},
		SubjectID:          rec.String("subject_id"),
		Attempts:           int(rec.Int("attempts")),
		CorrectCount:       int(rec.Int("correct_count")),
		IncorrectCount:     int(rec.Int("incorrect_count")),
		PartialCount:       int(rec.Int("partial_count")),
		LastEvaluation:     session.ParseEvaluation(rec.String("last_evaluation")),
		UnderstandingState: progress.UnderstandingState(rec.String("understanding_state")),
		DeliveryModesUsed:  progress.NewModeSet(modes...),
		LastInteractionAt:  rec.Time("last_interaction_at"),
	}, nil
}
