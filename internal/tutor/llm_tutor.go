package tutor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/gcsetutor/internal/intent"
	"github.com/abhisek/gcsetutor/internal/llm"
	"github.com/abhisek/gcsetutor/internal/session"
)

// Config holds tutor generation settings.
type Config struct {
	MaxTokens   int
	Temperature float64
	// HistoryLimit caps how many earlier messages are replayed.
	HistoryLimit int
}

// DefaultConfig returns sensible defaults for tutor generation.
func DefaultConfig() Config {
	return Config{
		MaxTokens:    1024,
		Temperature:  0.4,
		HistoryLimit: 10,
	}
}

// LLMTutor is a Tutor backed by an llm.Provider.
type LLMTutor struct {
	provider llm.Provider
	cfg      Config
}

// New creates an LLM-backed tutor.
func New(provider llm.Provider, cfg Config) *LLMTutor {
	return &LLMTutor{provider: provider, cfg: cfg}
}

type turnOutput struct {
	Evaluation string   `json:"evaluation"`
	Confidence float64  `json:"confidence"`
	ErrorType  string   `json:"error_type"`
	Action     string   `json:"action"`
	Message    string   `json:"message"`
	Techniques []string `json:"techniques"`
}

// EvaluateAndTutor asks the model to judge the message and reply. The
// model's evaluation is discarded for messages that are not attempts.
func (t *LLMTutor) EvaluateAndTutor(ctx context.Context, tc TurnContext) (*Result, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeTutorTurn)

	userMsg, err := buildTurnMessage(tc)
	if err != nil {
		return nil, fmt.Errorf("build tutor prompt: %w", err)
	}

	req := llm.Request{
		System:      systemPrompt,
		Messages:    append(t.history(tc.History), llm.Message{Role: llm.RoleUser, Content: userMsg}),
		Schema:      TurnSchema,
		MaxTokens:   t.cfg.MaxTokens,
		Temperature: t.cfg.Temperature,
	}

	resp, err := t.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("tutor generation: %w", err)
	}

	var out turnOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse tutor response: %w", err)
	}
	if strings.TrimSpace(out.Message) == "" {
		return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: errors.New("empty tutor message")}
	}

	return normalize(out, intent.Classify(tc.StudentMessage), tc.DiagnosticProbe != ""), nil
}

func normalize(out turnOutput, in intent.Intent, diagnosing bool) *Result {
	res := &Result{
		Evaluation: session.ParseEvaluation(out.Evaluation),
		Action:     session.Action(out.Action),
		Message:    strings.TrimSpace(out.Message),
		Confidence: min(max(out.Confidence, 0), 1),
		ErrorType:  strings.TrimSpace(out.ErrorType),
		Intent:     in,
	}

	if !intent.GuidanceFor(in).ShouldValidateAnswer {
		res.Evaluation = session.Unknown
	}
	if !res.Evaluation.Judged() {
		res.Confidence = 0
		res.ErrorType = ""
	}
	if res.Evaluation == session.Correct {
		res.ErrorType = ""
	}

	if !session.KnownAction(res.Action) {
		res.Action = fallbackAction(res.Evaluation, diagnosing)
	}

	for _, tech := range out.Techniques {
		tech = strings.ToLower(strings.TrimSpace(tech))
		if knownTechnique(tech) && !contains(res.Techniques, tech) {
			res.Techniques = append(res.Techniques, tech)
		}
	}
	return res
}

// fallbackAction picks an action when the model returns none we know.
func fallbackAction(eval session.Evaluation, diagnosing bool) session.Action {
	if diagnosing {
		return session.ActionDiagnose
	}
	switch eval {
	case session.Correct:
		return session.ActionPractice
	case session.Partial:
		return session.ActionHint
	case session.Incorrect:
		return session.ActionReteach
	}
	return session.ActionExplain
}

func (t *LLMTutor) history(h []HistoryMessage) []llm.Message {
	if t.cfg.HistoryLimit > 0 && len(h) > t.cfg.HistoryLimit {
		h = h[len(h)-t.cfg.HistoryLimit:]
	}
	msgs := make([]llm.Message, 0, len(h)+1)
	for _, m := range h {
		content := strings.TrimSpace(m.Content)
		if content == "" {
			continue
		}
		role := llm.RoleUser
		if m.Role == string(llm.RoleAssistant) {
			role = llm.RoleAssistant
		}
		msgs = append(msgs, llm.Message{Role: role, Content: content})
	}
	return msgs
}

func contains(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}
