package turn

import (
	"errors"
	"iter"
	"strings"

	"github.com/abhisek/gcsetutor/internal/session"
	"github.com/abhisek/gcsetutor/internal/tutor"
)

var (
	// ErrTutorUnavailable means the tutor could not produce a reply. Nothing
	// was persisted, so the turn can be retried as-is.
	ErrTutorUnavailable = errors.New("tutor unavailable")

	// ErrInvalidInput is returned when a turn is missing its session or student.
	ErrInvalidInput = errors.New("invalid turn input")

	// ErrSessionForbidden is returned when a session belongs to another student.
	ErrSessionForbidden = errors.New("session belongs to another student")

	// ErrStateUnavailable means the stored session could not be read. The
	// tutor was not called and nothing was written.
	ErrStateUnavailable = errors.New("session state unavailable")
)

// Input is one student message and its context.
type Input struct {
	StudentID string
	SessionID string
	Message   string

	TopicID     string
	TopicName   string
	SubjectID   string
	SubjectCode string
	SubjectName string

	LearningStyle string
	MarkScheme    string
	History       []tutor.HistoryMessage

	// PositionKnown skips the diagnostic pass for a new session.
	PositionKnown bool
}

// Decision is the metadata that accompanies a tutor reply.
type Decision struct {
	Action        session.Action
	Phase         session.Phase
	Evaluation    session.Evaluation
	Confidence    float64
	ErrorType     string
	DeliveryModes []string
}

// Reply is the outcome of one turn. State has already been persisted
// (or the failure logged) by the time a Reply is returned.
type Reply struct {
	Decision
	Message string
	State   session.State
}

// Chunks streams the tutor message word by word. Concatenating the chunks
// yields Message exactly.
func (r *Reply) Chunks() iter.Seq[string] {
	return func(yield func(string) bool) {
		for chunk := range strings.SplitAfterSeq(r.Message, " ") {
			if chunk == "" {
				continue
			}
			if !yield(chunk) {
				return
			}
		}
	}
}
