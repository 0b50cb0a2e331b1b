package diagnostic

import (
	"strings"
	"testing"
)

func TestDefaultBank_Valid(t *testing.T) {
	b, err := DefaultBank()
	if err != nil {
		t.Fatalf("embedded bank failed to load: %v", err)
	}
	want := []string{"BIOLOGY", "CHEMISTRY", "ENGLISH_LANGUAGE", "HISTORY", "MATHS", "PHYSICS"}
	got := b.Subjects()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Subjects() = %v, want %v", got, want)
	}
	for _, code := range got {
		qs, _ := b.Questions(code)
		seen := map[Difficulty]bool{}
		for _, q := range qs {
			seen[q.Difficulty] = true
		}
		for _, tier := range Tiers() {
			if !seen[tier] {
				t.Errorf("subject %s has no %s question", code, tier)
			}
		}
	}
}

func TestBank_LookupByAlias(t *testing.T) {
	b, err := DefaultBank()
	if err != nil {
		t.Fatal(err)
	}
	for _, code := range []string{"maths", "Mathematics", " math ", "MATHS"} {
		s, ok := b.Subject(code)
		if !ok || s.Code != "MATHS" {
			t.Errorf("Subject(%q) = %q, %v; want MATHS", code, s.Code, ok)
		}
	}
	if _, ok := b.Subject("english-language"); !ok {
		t.Error("hyphenated code should normalise to ENGLISH_LANGUAGE")
	}
	if _, ok := b.Subject("ASTROLOGY"); ok {
		t.Error("unknown subject should not resolve")
	}
}

func TestBank_QuestionsReturnsCopy(t *testing.T) {
	b, err := DefaultBank()
	if err != nil {
		t.Fatal(err)
	}
	qs, _ := b.Questions("MATHS")
	qs[0].Text = "changed"
	again, _ := b.Questions("MATHS")
	if again[0].Text == "changed" {
		t.Error("Questions must not expose the bank's backing slice")
	}
}

func TestParseBank_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "no subjects",
			yaml: "subjects: []",
			want: "no subjects",
		},
		{
			name: "duplicate id",
			yaml: `
subjects:
  - code: X
    questions:
      - {id: a, text: one, difficulty: core}
      - {id: a, text: two, difficulty: core}`,
			want: "duplicate id",
		},
		{
			name: "unknown difficulty",
			yaml: `
subjects:
  - code: X
    questions:
      - {id: a, text: one, difficulty: expert}`,
			want: "unknown difficulty",
		},
		{
			name: "empty text",
			yaml: `
subjects:
  - code: X
    questions:
      - {id: a, text: "  ", difficulty: core}`,
			want: "empty text",
		},
		{
			name: "alias collides",
			yaml: `
subjects:
  - code: X
    questions: [{id: a, text: one, difficulty: core}]
  - code: Y
    aliases: [x]
    questions: [{id: b, text: two, difficulty: core}]`,
			want: "collides",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBank([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error should mention %q, got: %v", tt.want, err)
			}
		})
	}
}

func TestParseBank_BadYAML(t *testing.T) {
	if _, err := ParseBank([]byte("subjects: [")); err == nil {
		t.Fatal("expected decode error")
	}
}
