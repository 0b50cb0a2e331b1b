package store

import (
	"context"
	"time"

	"github.com/abhisek/gcsetutor/internal/progress"
	"github.com/abhisek/gcsetutor/internal/session"
)

// SessionRepo persists per-session tutoring state.
type SessionRepo interface {
	// Get returns the state for sessionID, or ErrNotFound.
	Get(ctx context.Context, sessionID string) (session.State, error)

	// Save upserts the state keyed by session id. Last writer wins.
	Save(ctx context.Context, st session.State) error
}

// EvidenceRepo persists progress evidence rows.
type EvidenceRepo interface {
	// Get returns the row for key, or ErrNotFound.
	Get(ctx context.Context, key progress.Key) (progress.Evidence, error)

	// Upsert writes ev keyed by (student, session, topic).
	Upsert(ctx context.Context, ev progress.Evidence) error

	// ListByStudent returns every evidence row for a student.
	ListByStudent(ctx context.Context, studentID string) ([]progress.Evidence, error)
}

// EvaluationLogEntry is one append-only audit row for a judged turn.
type EvaluationLogEntry struct {
	ID          int64
	SessionID   string
	StudentID   string
	Evaluation  session.Evaluation
	Confidence  float64
	ErrorType   string
	Question    string
	Answer      string
	ActionTaken session.Action
	CreatedAt   time.Time
}

// EvaluationLog appends and reads evaluation audit rows.
type EvaluationLog interface {
	// Append records entry and returns its id.
	Append(ctx context.Context, entry EvaluationLogEntry) (int64, error)

	// ListBySession returns a session's entries, newest first.
	ListBySession(ctx context.Context, sessionID string, limit int) ([]EvaluationLogEntry, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMPurposeUsage aggregates token usage for one request purpose.
type LLMPurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// LLMModelUsage aggregates token usage for one model.
type LLMModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns recent events, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns one event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int64) (*LLMEvent, error)

	// LLMUsageByPurpose sums usage per purpose, sorted by purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMPurposeUsage, error)

	// LLMUsageByModel sums usage per model, sorted by model.
	LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error)
}
