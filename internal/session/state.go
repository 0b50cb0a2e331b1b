package session

import "time"

// Evaluation is the judged correctness of a student's answer.
type Evaluation string

const (
	Correct   Evaluation = "correct"
	Partial   Evaluation = "partial"
	Incorrect Evaluation = "incorrect"
	Unknown   Evaluation = "unknown"
)

// ParseEvaluation maps free text to an Evaluation. Anything unrecognised
// is Unknown so that no progress is recorded for it.
func ParseEvaluation(s string) Evaluation {
	switch e := Evaluation(s); e {
	case Correct, Partial, Incorrect:
		return e
	}
	return Unknown
}

// Judged reports whether e is a real correctness judgement.
func (e Evaluation) Judged() bool {
	return e == Correct || e == Partial || e == Incorrect
}

// State is the durable per-session tutoring record. All operations in this
// package take a State by value and return the updated copy.
type State struct {
	SessionID string
	StudentID string

	// TopicID and TopicName are empty when the session is not tied to a topic.
	TopicID     string
	TopicName   string
	SubjectCode string

	// Attempts counts turns with a real evaluation.
	Attempts int

	// CorrectStreak is the run of consecutive correct evaluations.
	CorrectStreak int

	LastEvaluation Evaluation
	LastAction     Action
	Phase          Phase

	// CurrentQuestion is the last question the tutor asked, if any.
	CurrentQuestion    string
	ExpectedAnswerHint string

	// CurriculumPositionConfirmed is set once the diagnostic pass is over.
	// DiagnosticQuestionsAsked is frozen from then on.
	CurriculumPositionConfirmed bool
	DiagnosticQuestionsAsked    int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Initialize creates the state for a new session. Sessions whose curriculum
// position is already known skip straight to teaching.
func Initialize(sessionID, studentID, topicID, topicName string, positionKnown bool) State {
	s := State{
		SessionID:                   sessionID,
		StudentID:                   studentID,
		TopicID:                     topicID,
		TopicName:                   topicName,
		LastEvaluation:              Unknown,
		Phase:                       PhaseDiagnostic,
		CurriculumPositionConfirmed: positionKnown,
	}
	if positionKnown {
		s.Phase = PhaseTeaching
	}
	return s
}

// RequiresDiagnostic reports whether the student still needs placing.
func RequiresDiagnostic(s State) bool {
	return !s.CurriculumPositionConfirmed
}

// IsDiagnosticComplete reports whether enough probes have been asked, or
// the position has been confirmed some other way.
func IsDiagnosticComplete(s State, setSize int) bool {
	return s.CurriculumPositionConfirmed || s.DiagnosticQuestionsAsked >= setSize
}

// IncrementDiagnosticCount records one more diagnostic probe. It is a no-op
// once the position is confirmed.
func IncrementDiagnosticCount(s State) State {
	if s.CurriculumPositionConfirmed {
		return s
	}
	s.DiagnosticQuestionsAsked++
	return s
}

// ConfirmCurriculumPosition ends the diagnostic pass. Idempotent.
func ConfirmCurriculumPosition(s State) State {
	s.CurriculumPositionConfirmed = true
	return s
}

// UpdateFromEvaluation applies a judged answer to the counters. Unknown
// evaluations leave the state untouched.
func UpdateFromEvaluation(s State, eval Evaluation) State {
	if !eval.Judged() {
		return s
	}
	s.Attempts++
	if eval == Correct {
		s.CorrectStreak++
	} else {
		s.CorrectStreak = 0
	}
	s.LastEvaluation = eval
	return s
}

// UpdateWithAction records the tutor's action and the phase it leads to.
// Use Transitions.PhaseFor to compute phase.
func UpdateWithAction(s State, action Action, phase Phase) State {
	s.LastAction = action
	s.Phase = phase
	return s
}
