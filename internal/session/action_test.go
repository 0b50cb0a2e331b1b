package session

import "testing"

func TestPhaseFor_DefaultTable(t *testing.T) {
	tr := DefaultTransitions()
	tests := []struct {
		action Action
		prev   Phase
		want   Phase
	}{
		{ActionPractice, PhaseTeaching, PhasePractice},
		{ActionCheckUnderstanding, PhaseTeaching, PhasePractice},
		{ActionConsolidate, PhasePractice, PhaseConsolidation},
		{ActionAdvance, PhaseTeaching, PhaseConsolidation},
		// explanatory actions regress regardless of phase
		{ActionReteach, PhaseConsolidation, PhaseTeaching},
		{ActionExplain, PhasePractice, PhaseTeaching},
		{ActionWorkedExample, PhaseDiagnostic, PhaseTeaching},
		// unforced rules never move backwards
		{ActionPractice, PhaseConsolidation, PhaseConsolidation},
		{ActionDiagnose, PhaseTeaching, PhaseTeaching},
		{ActionDiagnose, PhaseDiagnostic, PhaseDiagnostic},
		// no rule keeps the previous phase
		{ActionHint, PhasePractice, PhasePractice},
		{Action("dance"), PhaseTeaching, PhaseTeaching},
	}
	for _, tt := range tests {
		if got := tr.PhaseFor(tt.action, tt.prev); got != tt.want {
			t.Errorf("PhaseFor(%q, %q) = %q, want %q", tt.action, tt.prev, got, tt.want)
		}
	}
}

func TestPhaseFor_OpaquePhases(t *testing.T) {
	tr := Transitions{
		Rules: map[Action]Transition{
			"review": {To: "revision"},
		},
	}
	if got := tr.PhaseFor("review", "anything"); got != "revision" {
		t.Errorf("unranked phases should be replaced, got %q", got)
	}
	if got := tr.PhaseFor("other", "anything"); got != "anything" {
		t.Errorf("unmapped action should keep phase, got %q", got)
	}
}

func TestKnownAction(t *testing.T) {
	for _, a := range Actions() {
		if !KnownAction(a) {
			t.Errorf("KnownAction(%q) = false", a)
		}
	}
	if KnownAction("juggle") {
		t.Error("KnownAction(juggle) = true")
	}
}
