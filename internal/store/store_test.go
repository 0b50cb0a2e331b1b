package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/gcsetutor/internal/progress"
	"github.com/abhisek/gcsetutor/internal/session"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err, "open test store")
	t.Cleanup(func() { s.Close() })
	return s
}

// eachBackend runs fn against the sqlite and in-memory backends.
func eachBackend(t *testing.T, fn func(t *testing.T, s *Store)) {
	t.Run("sqlite", func(t *testing.T) { fn(t, openTestStore(t)) })
	t.Run("memory", func(t *testing.T) {
		s := NewMemory()
		t.Cleanup(func() { s.Close() })
		fn(t, s)
	})
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.Records().(*sqlRecords).db

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestRecordStore_GetUpsert(t *testing.T) {
	eachBackend(t, func(t *testing.T, s *Store) {
		ctx := context.Background()
		rs := s.Records()

		_, err := rs.Get(ctx, TableSessions, Record{"session_id": "missing"})
		require.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, rs.Upsert(ctx, TableSessions, Record{"session_id": "s1", "attempts": int64(1)}))
		require.NoError(t, rs.Upsert(ctx, TableSessions, Record{"session_id": "s1", "attempts": int64(2)}))

		rec, err := rs.Get(ctx, TableSessions, Record{"session_id": "s1"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), rec.Int("attempts"))

		all, err := rs.Select(ctx, TableSessions, nil, QueryOpts{})
		require.NoError(t, err)
		assert.Len(t, all, 1, "upsert must not duplicate rows")
	})
}

func TestRecordStore_InsertSelect(t *testing.T) {
	eachBackend(t, func(t *testing.T, s *Store) {
		ctx := context.Background()
		rs := s.Records()

		var ids []int64
		for _, sid := range []string{"a", "b", "a"} {
			id, err := rs.Insert(ctx, TableEvaluationLog, Record{"session_id": sid, "evaluation": "correct"})
			require.NoError(t, err)
			ids = append(ids, id)
		}
		assert.Less(t, ids[0], ids[1])
		assert.Less(t, ids[1], ids[2])

		recs, err := rs.Select(ctx, TableEvaluationLog, Record{"session_id": "a"}, QueryOpts{OrderBy: "id", Desc: true})
		require.NoError(t, err)
		require.Len(t, recs, 2)
		assert.Equal(t, ids[2], recs[0].Int("id"))

		limited, err := rs.Select(ctx, TableEvaluationLog, nil, QueryOpts{OrderBy: "id", Limit: 1})
		require.NoError(t, err)
		require.Len(t, limited, 1)
		assert.Equal(t, ids[0], limited[0].Int("id"))
	})
}

func TestRecordStore_RejectsUnknownNames(t *testing.T) {
	eachBackend(t, func(t *testing.T, s *Store) {
		ctx := context.Background()
		rs := s.Records()

		assert.Error(t, rs.Upsert(ctx, "nope", Record{"x": 1}))
		assert.Error(t, rs.Upsert(ctx, TableSessions, Record{"session_id": "s", "bogus": 1}))
		_, err := rs.Select(ctx, TableSessions, Record{"bogus": 1}, QueryOpts{})
		assert.Error(t, err)
		_, err = rs.Select(ctx, TableSessions, nil, QueryOpts{OrderBy: "bogus"})
		assert.Error(t, err)
		_, err = rs.Get(ctx, TableSessions, Record{})
		assert.Error(t, err, "get without key columns")
	})
}

func TestSessionRepo_RoundTrip(t *testing.T) {
	eachBackend(t, func(t *testing.T, s *Store) {
		ctx := context.Background()
		repo := s.SessionRepo()
		now := time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)

		st := session.Initialize("s1", "stu", "quadratics", "Quadratics", false)
		st.SubjectCode = "MATHS"
		st = session.UpdateFromEvaluation(st, session.Correct)
		st = session.UpdateWithAction(st, session.ActionPractice, session.PhasePractice)
		st = session.IncrementDiagnosticCount(st)
		st.CurrentQuestion = "What is x?"
		st.CreatedAt, st.UpdatedAt = now, now

		require.NoError(t, repo.Save(ctx, st))
		got, err := repo.Get(ctx, "s1")
		require.NoError(t, err)

		assert.Equal(t, st.StudentID, got.StudentID)
		assert.Equal(t, st.TopicName, got.TopicName)
		assert.Equal(t, st.SubjectCode, got.SubjectCode)
		assert.Equal(t, 1, got.Attempts)
		assert.Equal(t, 1, got.CorrectStreak)
		assert.Equal(t, session.Correct, got.LastEvaluation)
		assert.Equal(t, session.ActionPractice, got.LastAction)
		assert.Equal(t, session.PhasePractice, got.Phase)
		assert.Equal(t, "What is x?", got.CurrentQuestion)
		assert.False(t, got.CurriculumPositionConfirmed)
		assert.Equal(t, 1, got.DiagnosticQuestionsAsked)
		assert.True(t, got.UpdatedAt.Equal(now), "updated_at = %v", got.UpdatedAt)

		_, err = repo.Get(ctx, "other")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestEvidenceRepo(t *testing.T) {
	eachBackend(t, func(t *testing.T, s *Store) {
		ctx := context.Background()
		repo := s.EvidenceRepo()
		at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
		key := progress.Key{StudentID: "stu", SessionID: "s1", TopicID: "quadratics"}

		ev, _ := progress.Record(nil, progress.Update{
			Key: key, SubjectID: "maths", Evaluation: session.Correct,
			Techniques: []string{"visual", "worked_example"}, At: at,
		})
		require.NoError(t, repo.Upsert(ctx, ev))

		ev2, _ := progress.Record(&ev, progress.Update{Key: key, Evaluation: session.Correct, Techniques: []string{"visual"}, At: at.Add(time.Minute)})
		require.NoError(t, repo.Upsert(ctx, ev2))

		got, err := repo.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, 2, got.Attempts)
		assert.Equal(t, 2, got.CorrectCount)
		assert.Equal(t, progress.Secure, got.UnderstandingState)
		assert.Equal(t, progress.ModeSet{"visual", "worked_example"}, got.DeliveryModesUsed)
		assert.Equal(t, "maths", got.SubjectID)

		other := progress.Key{StudentID: "stu", SessionID: "s2", TopicID: "quadratics"}
		ev3, _ := progress.Record(nil, progress.Update{Key: other, SubjectID: "maths", Evaluation: session.Incorrect, At: at})
		require.NoError(t, repo.Upsert(ctx, ev3))

		rows, err := repo.ListByStudent(ctx, "stu")
		require.NoError(t, err)
		assert.Len(t, rows, 2)

		_, err = repo.Get(ctx, progress.Key{StudentID: "nobody", SessionID: "s1", TopicID: "quadratics"})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestEvidenceRepo_CorruptModesColumn(t *testing.T) {
	eachBackend(t, func(t *testing.T, s *Store) {
		ctx := context.Background()
		key := progress.Key{StudentID: "stu", SessionID: "s1", TopicID: "cells"}
		require.NoError(t, s.Records().Upsert(ctx, TableEvidence, Record{
			"student_id":          key.StudentID,
			"session_id":          key.SessionID,
			"topic_id":            key.TopicID,
			"subject_id":          "biology",
			"attempts":            int64(1),
			"correct_count":       int64(1),
			"incorrect_count":     int64(0),
			"partial_count":       int64(0),
			"last_evaluation":     "correct",
			"understanding_state": "strengthening",
			"delivery_modes_used": `["visual"`,
			"last_interaction_at": time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		}))

		_, err := s.EvidenceRepo().Get(ctx, key)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
		assert.Contains(t, err.Error(), "decode delivery modes")

		_, err = s.EvidenceRepo().ListByStudent(ctx, "stu")
		assert.Error(t, err)
	})
}

func TestEvaluationLog(t *testing.T) {
	eachBackend(t, func(t *testing.T, s *Store) {
		ctx := context.Background()
		log := s.EvaluationLog()

		for i, ev := range []session.Evaluation{session.Correct, session.Incorrect} {
			_, err := log.Append(ctx, EvaluationLogEntry{
				SessionID:   "s1",
				StudentID:   "stu",
				Evaluation:  ev,
				Confidence:  0.5 + float64(i)*0.25,
				Question:    "q",
				Answer:      "a",
				ActionTaken: session.ActionHint,
				CreatedAt:   time.Now(),
			})
			require.NoError(t, err)
		}

		entries, err := log.ListBySession(ctx, "s1", 10)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, session.Incorrect, entries[0].Evaluation, "newest first")
		assert.InDelta(t, 0.75, entries[0].Confidence, 1e-9)
		assert.Equal(t, session.ActionHint, entries[1].ActionTaken)
	})
}

func TestEventRepo_LLMEvents(t *testing.T) {
	eachBackend(t, func(t *testing.T, s *Store) {
		ctx := context.Background()
		repo := s.EventRepo()

		events := []LLMRequestEventData{
			{Provider: "anthropic", Model: "claude-sonnet-4-20250514", Purpose: "tutor-turn", InputTokens: 100, OutputTokens: 50, LatencyMs: 200, Success: true},
			{Provider: "anthropic", Model: "claude-sonnet-4-20250514", Purpose: "tutor-turn", InputTokens: 120, OutputTokens: 60, LatencyMs: 400, Success: true},
			{Provider: "openai", Model: "gpt-4o-mini", Purpose: "summary", InputTokens: 10, OutputTokens: 5, LatencyMs: 50, ErrorMessage: "boom", RequestBody: "{}"},
		}
		for _, e := range events {
			require.NoError(t, repo.AppendLLMRequest(ctx, e))
		}

		list, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 2})
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "summary", list[0].Purpose, "newest first")
		assert.False(t, list[0].Timestamp.IsZero())

		one, err := repo.GetLLMEvent(ctx, list[0].ID)
		require.NoError(t, err)
		require.NotNil(t, one)
		assert.Equal(t, "boom", one.ErrorMessage)
		assert.Equal(t, "{}", one.RequestBody)
		assert.False(t, one.Success)

		missing, err := repo.GetLLMEvent(ctx, 9999)
		require.NoError(t, err)
		assert.Nil(t, missing)

		byPurpose, err := repo.LLMUsageByPurpose(ctx)
		require.NoError(t, err)
		assert.Equal(t, []LLMPurposeUsage{
			{Purpose: "summary", Calls: 1, InputTokens: 10, OutputTokens: 5, AvgLatencyMs: 50},
			{Purpose: "tutor-turn", Calls: 2, InputTokens: 220, OutputTokens: 110, AvgLatencyMs: 300},
		}, byPurpose)

		byModel, err := repo.LLMUsageByModel(ctx)
		require.NoError(t, err)
		assert.Equal(t, []LLMModelUsage{
			{Model: "claude-sonnet-4-20250514", Calls: 2, InputTokens: 220, OutputTokens: 110},
			{Model: "gpt-4o-mini", Calls: 1, InputTokens: 10, OutputTokens: 5},
		}, byModel)
	})
}

func TestOpenBackend(t *testing.T) {
	ctx := context.Background()
	s, err := OpenBackend(ctx, BackendMemory, "")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = OpenBackend(ctx, "cassandra", "")
	assert.Error(t, err)
}
