package tutor

import (
	"bytes"
	"strings"
	"text/template"
)

const systemPrompt = `You are a patient GCSE revision tutor for students aged 14-16 in England. You help one student work through one topic at a time.

Rules:
- Decide first whether the student's message is an attempt at the current question. Only then judge it correct, partial or incorrect. Greetings, questions, "I don't know" and requests to skip are evaluated as unknown.
- Never give the full answer straight away. Prefer hints and guiding questions.
- Keep replies short: 2-5 sentences, plain text, no markdown headings.
- Use plain ASCII for maths. Use ^ for powers, / for fractions, * for multiplication.
- End with exactly one question for the student when you expect a reply.
- Report the techniques you actually used, chosen only from the allowed list.`

var turnTemplate = template.Must(template.New("turn").Parse(`Subject: {{or .SubjectName .SubjectCode "General"}}
Topic: {{or .TopicName "Not specified"}}
Phase: {{or .Phase "teaching"}}
Attempts so far: {{.Attempts}}
Correct streak: {{.CorrectStreak}}
{{- if .DiagnosticProbe}}

The student is still being placed. After responding, ask this diagnostic question:
{{.DiagnosticProbe}}
{{- end}}
{{- if .CurrentQuestion}}

Current question: {{.CurrentQuestion}}
{{- end}}
{{- if .ExpectedAnswerHint}}
Expected answer hint: {{.ExpectedAnswerHint}}
{{- end}}
{{- if .MarkScheme}}

Mark scheme:
{{.MarkScheme}}
{{- end}}
{{- if .Techniques}}

This student learns best with: {{.Techniques}}
{{- end}}

Student message:
{{.StudentMessage}}`))

type promptData struct {
	TurnContext
	Techniques string
}

func buildTurnMessage(tc TurnContext) (string, error) {
	data := promptData{
		TurnContext: tc,
		Techniques:  strings.Join(PreferredTechniques(ParseLearningStyle(tc.LearningStyle)), ", "),
	}
	var buf bytes.Buffer
	if err := turnTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
