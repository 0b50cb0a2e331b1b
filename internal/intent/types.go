package intent

// Intent is the syntactic category of a student utterance.
type Intent string

const (
	Solution    Intent = "solution"
	Explanation Intent = "explanation"
	Uncertainty Intent = "uncertainty"
	Question    Intent = "question"
	Skip        Intent = "skip"
	Meta        Intent = "meta"
)

// StateMode tells the caller what the turn does to the current question.
// The turn orchestrator closes a recorded question that was not answered
// and not replaced.
type StateMode string

const (
	// ModeAwaitInput keeps the current question open.
	ModeAwaitInput StateMode = "await_input"
	// ModeRecord advances the question and counts the turn.
	ModeRecord StateMode = "record"
)

// Guidance is what downstream stages should do with a classified message.
type Guidance struct {
	ShouldValidateAnswer bool
	NextStateMode        StateMode
}

// GuidanceFor maps an intent to its downstream handling. Solutions and
// explanations are judged for correctness; solution and skip advance the
// question.
func GuidanceFor(i Intent) Guidance {
	switch i {
	case Solution:
		return Guidance{ShouldValidateAnswer: true, NextStateMode: ModeRecord}
	case Explanation:
		return Guidance{ShouldValidateAnswer: true, NextStateMode: ModeAwaitInput}
	case Skip:
		return Guidance{ShouldValidateAnswer: false, NextStateMode: ModeRecord}
	default:
		return Guidance{ShouldValidateAnswer: false, NextStateMode: ModeAwaitInput}
	}
}
