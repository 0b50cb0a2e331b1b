package session

// Phase is a stage of a tutoring session. The set of phases is open; the
// action table decides which ones are reachable.
type Phase string

const (
	PhaseDiagnostic    Phase = "diagnostic"
	PhaseTeaching      Phase = "teaching"
	PhasePractice      Phase = "practice"
	PhaseConsolidation Phase = "consolidation"
)

// Action is what the tutor chose to do on a turn.
type Action string

const (
	ActionDiagnose           Action = "diagnose"
	ActionExplain            Action = "explain"
	ActionReteach            Action = "reteach"
	ActionWorkedExample      Action = "worked_example"
	ActionHint               Action = "hint"
	ActionPractice           Action = "practice"
	ActionCheckUnderstanding Action = "check_understanding"
	ActionConsolidate        Action = "consolidate"
	ActionAdvance            Action = "advance"
)

// Actions returns the action vocabulary.
func Actions() []Action {
	return []Action{
		ActionDiagnose, ActionExplain, ActionReteach, ActionWorkedExample,
		ActionHint, ActionPractice, ActionCheckUnderstanding,
		ActionConsolidate, ActionAdvance,
	}
}

// KnownAction reports whether a is in the action vocabulary.
func KnownAction(a Action) bool {
	for _, k := range Actions() {
		if a == k {
			return true
		}
	}
	return false
}

// Transition is the effect of one action on the phase.
type Transition struct {
	To Phase
	// Force moves to To even if that is behind the current phase.
	Force bool
}

// Transitions is a table-driven action to phase mapping.
type Transitions struct {
	Rules map[Action]Transition
	// Order ranks phases for unforced rules, which only move forward.
	// Phases missing from Order are treated as unranked and always replaced.
	Order []Phase
}

// DefaultTransitions is the standard tutoring progression. Explanatory
// actions pull the student back to teaching from anywhere.
func DefaultTransitions() Transitions {
	return Transitions{
		Rules: map[Action]Transition{
			ActionDiagnose:           {To: PhaseDiagnostic},
			ActionExplain:            {To: PhaseTeaching, Force: true},
			ActionReteach:            {To: PhaseTeaching, Force: true},
			ActionWorkedExample:      {To: PhaseTeaching, Force: true},
			ActionPractice:           {To: PhasePractice},
			ActionCheckUnderstanding: {To: PhasePractice},
			ActionConsolidate:        {To: PhaseConsolidation},
			ActionAdvance:            {To: PhaseConsolidation},
		},
		Order: []Phase{PhaseDiagnostic, PhaseTeaching, PhasePractice, PhaseConsolidation},
	}
}

// PhaseFor returns the phase after action is taken in prev. Actions without
// a rule keep the previous phase.
func (t Transitions) PhaseFor(action Action, prev Phase) Phase {
	rule, ok := t.Rules[action]
	if !ok {
		return prev
	}
	if rule.Force {
		return rule.To
	}
	from, to := t.rank(prev), t.rank(rule.To)
	if from < 0 || to < 0 || to >= from {
		return rule.To
	}
	return prev
}

func (t Transitions) rank(p Phase) int {
	for i, o := range t.Order {
		if o == p {
			return i
		}
	}
	return -1
}
