package store

import (
	"context"
	"fmt"

	"github.com/abhisek/gcsetutor/internal/session"
)

type sessionRepo struct {
	records RecordStore
}

func (r *sessionRepo) Get(ctx context.Context, sessionID string) (session.State, error) {
	rec, err := r.records.Get(ctx, TableSessions, Record{"session_id": sessionID})
	if err != nil {
		return session.State{}, err
	}
	return session.State{
		SessionID:                   rec.String("session_id"),
		StudentID:                   rec.String("student_id"),
		TopicID:                     rec.String("topic_id"),
		TopicName:                   rec.String("topic_name"),
		SubjectCode:                 rec.String("subject_code"),
		Attempts:                    int(rec.Int("attempts")),
		CorrectStreak:               int(rec.Int("correct_streak")),
		LastEvaluation:              session.ParseEvaluation(rec.String("last_evaluation")),
		LastAction:                  session.Action(rec.String("last_action")),
		Phase:                       session.Phase(rec.String("phase")),
		CurrentQuestion:             rec.String("current_question"),
		ExpectedAnswerHint:          rec.String("expected_answer_hint"),
		CurriculumPositionConfirmed: rec.Bool("curriculum_position_confirmed"),
		DiagnosticQuestionsAsked:    int(rec.Int("diagnostic_questions_asked")),
		CreatedAt:                   rec.Time("created_at"),
		UpdatedAt:                   rec.Time("updated_at"),
	}, nil
}

func (r *sessionRepo) Save(ctx context.Context, st session.State) error {
	err := r.records.Upsert(ctx, TableSessions, Record{
		"session_id":                    st.SessionID,
		"student_id":                    st.StudentID,
		"topic_id":                      st.TopicID,
		"topic_name":                    st.TopicName,
		"subject_code":                  st.SubjectCode,
		"attempts":                      int64(st.Attempts),
		"correct_streak":                int64(st.CorrectStreak),
		"last_evaluation":               string(st.LastEvaluation),
		"last_action":                   string(st.LastAction),
		"phase":                         string(st.Phase),
		"current_question":              st.CurrentQuestion,
		"expected_answer_hint":          st.ExpectedAnswerHint,
		"curriculum_position_confirmed": st.CurriculumPositionConfirmed,
		"diagnostic_questions_asked":    int64(st.DiagnosticQuestionsAsked),
		"created_at":                    st.CreatedAt.UTC(),
		"updated_at":                    st.UpdatedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("save session %s: %w", st.SessionID, err)
	}
	return nil
}
