package tutor

import (
	"context"
	"strings"

	"github.com/abhisek/gcsetutor/internal/intent"
	"github.com/abhisek/gcsetutor/internal/session"
)

// Tutor judges a student turn and writes the tutor's reply. Implementations
// must return session.Unknown whenever correctness should not be judged.
type Tutor interface {
	EvaluateAndTutor(ctx context.Context, tc TurnContext) (*Result, error)
}

// HistoryMessage is one earlier message in the conversation.
type HistoryMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// TurnContext is everything the tutor sees for one turn.
type TurnContext struct {
	StudentMessage     string
	CurrentQuestion    string
	ExpectedAnswerHint string
	MarkScheme         string

	TopicName   string
	SubjectName string
	SubjectCode string

	LearningStyle string

	Attempts      int
	CorrectStreak int
	Phase         session.Phase

	// DiagnosticProbe is set while the student is still being placed.
	DiagnosticProbe string

	History []HistoryMessage
}

// Result is the tutor's decision for one turn.
type Result struct {
	Evaluation session.Evaluation
	Action     session.Action
	Message    string
	Techniques []string
	Confidence float64
	ErrorType  string

	// Intent is the classification that gated Evaluation.
	Intent intent.Intent
}

// Delivery techniques the tutor may report using.
const (
	TechniqueVisual        = "visual_explanation"
	TechniqueDiagram       = "diagram_description"
	TechniqueVerbal        = "verbal_explanation"
	TechniqueMnemonic      = "mnemonic"
	TechniqueSocratic      = "socratic_questioning"
	TechniqueStepByStep    = "step_by_step"
	TechniqueSummaryNotes  = "summary_notes"
	TechniqueWorkedExample = "worked_example"
	TechniqueRealWorld     = "real_world_example"
	TechniqueHandsOn       = "hands_on_activity"
	TechniquePractice      = "practice_problem"
	TechniqueAnalogy       = "analogy"
)

// Techniques returns the delivery technique vocabulary.
func Techniques() []string {
	return []string{
		TechniqueVisual, TechniqueDiagram, TechniqueVerbal, TechniqueMnemonic,
		TechniqueSocratic, TechniqueStepByStep, TechniqueSummaryNotes,
		TechniqueWorkedExample, TechniqueRealWorld, TechniqueHandsOn,
		TechniquePractice, TechniqueAnalogy,
	}
}

func knownTechnique(t string) bool {
	for _, k := range Techniques() {
		if k == t {
			return true
		}
	}
	return false
}

// LearningStyle is a VARK preference.
type LearningStyle string

const (
	StyleVisual      LearningStyle = "visual"
	StyleAuditory    LearningStyle = "auditory"
	StyleReadWrite   LearningStyle = "read_write"
	StyleKinesthetic LearningStyle = "kinesthetic"
)

// ParseLearningStyle normalises the free-form style strings callers send.
// Unrecognised input yields "".
func ParseLearningStyle(s string) LearningStyle {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("/", "_", "-", "_", " ", "_").Replace(s)
	switch s {
	case "visual", "v":
		return StyleVisual
	case "auditory", "aural", "a":
		return StyleAuditory
	case "read_write", "readwrite", "reading_writing", "reading", "r":
		return StyleReadWrite
	case "kinesthetic", "kinaesthetic", "k":
		return StyleKinesthetic
	}
	return ""
}

// PreferredTechniques lists the techniques that suit a learning style.
func PreferredTechniques(style LearningStyle) []string {
	switch style {
	case StyleVisual:
		return []string{TechniqueVisual, TechniqueDiagram}
	case StyleAuditory:
		return []string{TechniqueVerbal, TechniqueMnemonic, TechniqueSocratic}
	case StyleReadWrite:
		return []string{TechniqueSummaryNotes, TechniqueStepByStep}
	case StyleKinesthetic:
		return []string{TechniqueHandsOn, TechniqueRealWorld, TechniquePractice}
	}
	return nil
}
