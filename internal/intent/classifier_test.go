package intent

import (
	"strings"
	"testing"
)

func TestClassify_Uncertainty(t *testing.T) {
	msgs := []string{
		"I don't know",
		"I Don't Know!",
		"i dont know.",
		"I don’t know",
		"idk",
		"IDK",
		"dunno",
		"not sure",
		"Not sure?",
		"I'm not really sure about this one",
		"no idea!!",
		"No clue",
		"?",
		"??",
		"I'm stuck",
		"",
		"   ",
	}
	for _, m := range msgs {
		if got := Classify(m); got != Uncertainty {
			t.Errorf("Classify(%q) = %q, want %q", m, got, Uncertainty)
		}
	}
}

func TestClassify_Skip(t *testing.T) {
	msgs := []string{
		"skip",
		"Skip this please",
		"can we move on",
		"let's try something else",
		"next question",
		"give me another one",
	}
	for _, m := range msgs {
		if got := Classify(m); got != Skip {
			t.Errorf("Classify(%q) = %q, want %q", m, got, Skip)
		}
	}
}

func TestClassify_QuestionNeedsMoreThanQuestionMark(t *testing.T) {
	tests := []struct {
		msg  string
		want Intent
	}{
		{"is it 5?", Solution},
		{"Is it 5?", Solution},
		{"x = 4?", Solution},
		{"is it photosynthesis?", Solution},
		{"is it the mitochondria?", Solution},
		{"3/4?", Solution},
		{"what do you mean by that?", Question},
		{"What does gradient mean?", Question},
		{"can you explain that again?", Question},
		{"how do I factorise this?", Question},
		{"why?", Question},
		{"is that the right way to start?", Question},
		{"any hints?", Question},
	}
	for _, tt := range tests {
		if got := Classify(tt.msg); got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.msg, got, tt.want)
		}
	}
}

func TestClassify_Meta(t *testing.T) {
	msgs := []string{"hi", "Hello!", "thanks", "Thank you so much", "ok", "got it", "makes sense", "lol", "who are you"}
	for _, m := range msgs {
		if got := Classify(m); got != Meta {
			t.Errorf("Classify(%q) = %q, want %q", m, got, Meta)
		}
	}
}

func TestClassify_Explanation(t *testing.T) {
	msgs := []string{
		"I subtracted 3 from both sides because I need x on its own",
		"if you double the radius then the area goes up by four times",
		"First I expanded the brackets and then collected like terms",
		"the enzyme denatures since the temperature is too high",
	}
	for _, m := range msgs {
		if got := Classify(m); got != Explanation {
			t.Errorf("Classify(%q) = %q, want %q", m, got, Explanation)
		}
	}
}

func TestClassify_ExplanationNeedsLength(t *testing.T) {
	// Connective present but too short to be an explanation of working.
	if got := Classify("because 5"); got != Solution {
		t.Errorf("Classify(%q) = %q, want %q", "because 5", got, Solution)
	}
}

func TestClassify_LongNumbersAreSolutions(t *testing.T) {
	msgs := []string{
		"12345678901234567890123",
		"-98765432109876543210",
	}
	for _, m := range msgs {
		if len(m) <= MinExplanationLength {
			t.Fatalf("fixture %q must exceed the explanation length", m)
		}
		if got := Classify(m); got != Solution {
			t.Errorf("Classify(%q) = %q, want %q", m, got, Solution)
		}
	}
}

func TestClassify_DefaultsToSolution(t *testing.T) {
	msgs := []string{
		"x = 2 or x = 3",
		"x=4, y=-1",
		"photosynthesis",
		"0.75",
		"25%",
		"B",
		"the nucleus",
		"no",
		"Yes",
		"nope",
		"yeah",
		"yes.",
	}
	for _, m := range msgs {
		if got := Classify(m); got != Solution {
			t.Errorf("Classify(%q) = %q, want %q", m, got, Solution)
		}
	}
}

func TestClassify_PriorityOrder(t *testing.T) {
	tests := []struct {
		msg  string
		want Intent
		why  string
	}{
		{"not sure, skip?", Uncertainty, "uncertainty outranks skip"},
		{"skip this one?", Skip, "skip outranks question"},
		{"are you a bot?", Question, "question outranks meta"},
		{"I think it's 12 because 3 times 4 is 12", Explanation, "reasoning beats default"},
	}
	for _, tt := range tests {
		if g := Classify(tt.msg); g != tt.want {
			t.Errorf("Classify(%q) = %q, want %q (%s)", tt.msg, g, tt.want, tt.why)
		}
	}
}

func TestRun_ReportsRuleName(t *testing.T) {
	i, name := Run(DefaultRules(), NewMessage("idk"))
	if i != Uncertainty || name != "uncertainty" {
		t.Errorf("Run = (%q, %q), want (uncertainty, uncertainty)", i, name)
	}
	i, name = Run(DefaultRules(), NewMessage("42"))
	if i != Solution || name != "default" {
		t.Errorf("Run = (%q, %q), want (solution, default)", i, name)
	}
}

func TestGuidanceFor(t *testing.T) {
	for _, i := range []Intent{Solution, Explanation, Uncertainty, Question, Skip, Meta} {
		g := GuidanceFor(i)
		wantRecord := i == Solution || i == Skip
		if (g.NextStateMode == ModeRecord) != wantRecord {
			t.Errorf("GuidanceFor(%q).NextStateMode = %q", i, g.NextStateMode)
		}
		if g.ShouldValidateAnswer != (i == Solution || i == Explanation) {
			t.Errorf("GuidanceFor(%q).ShouldValidateAnswer = %v", i, g.ShouldValidateAnswer)
		}
	}
}

func TestIsShortAnswer(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"5", true},
		{"is it 5", true},
		{"the answer is 3/4", true},
		{"x = 2 or x = 3", true},
		{"2x + 3", true},
		{"tell me more about it", false},
		{"what is the answer", false},
		{strings.Repeat("word ", 8), false},
	}
	for _, tt := range tests {
		if g := IsShortAnswer(tt.in); g != tt.want {
			t.Errorf("IsShortAnswer(%q) = %v, want %v", tt.in, g, tt.want)
		}
	}
}
