package turn

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/gcsetutor/internal/diagnostic"
	"github.com/abhisek/gcsetutor/internal/intent"
	"github.com/abhisek/gcsetutor/internal/logger"
	"github.com/abhisek/gcsetutor/internal/progress"
	"github.com/abhisek/gcsetutor/internal/session"
	"github.com/abhisek/gcsetutor/internal/store"
	"github.com/abhisek/gcsetutor/internal/tutor"
)

const tracerName = "github.com/abhisek/gcsetutor/internal/turn"

// defaultTopic keys evidence for sessions with neither topic nor subject.
const defaultTopic = "general"

// Deps are the collaborators an Orchestrator needs. Transitions, Logger and
// Now are optional.
type Deps struct {
	Sessions      store.SessionRepo
	Evidence      store.EvidenceRepo
	EvaluationLog store.EvaluationLog
	Tutor         tutor.Tutor
	Selector      *diagnostic.Selector

	Transitions *session.Transitions
	Logger      *logger.Logger
	Now         func() time.Time
}

// Orchestrator runs tutoring turns. It holds no per-session state; callers
// must serialize turns that share a session id.
type Orchestrator struct {
	sessions    store.SessionRepo
	evidence    store.EvidenceRepo
	evalLog     store.EvaluationLog
	tutor       tutor.Tutor
	selector    *diagnostic.Selector
	transitions session.Transitions
	log         *logger.Logger
	now         func() time.Time
}

// New creates an Orchestrator.
func New(d Deps) *Orchestrator {
	o := &Orchestrator{
		sessions:    d.Sessions,
		evidence:    d.Evidence,
		evalLog:     d.EvaluationLog,
		tutor:       d.Tutor,
		selector:    d.Selector,
		transitions: session.DefaultTransitions(),
		log:         d.Logger,
		now:         d.Now,
	}
	if d.Transitions != nil {
		o.transitions = *d.Transitions
	}
	if o.log == nil {
		o.log = logger.NewNop()
	}
	o.log = o.log.With("component", "turn")
	if o.now == nil {
		o.now = time.Now
	}
	if o.selector == nil {
		o.selector = diagnostic.NewSelector(diagnostic.MustDefaultBank(), nil)
	}
	return o
}

// HandleTurn runs one turn: load state, ask the tutor, apply the decision,
// persist, and return the reply. A failed load or tutor call fails the turn
// before anything is written; later persistence failures are logged and the
// reply is still returned.
func (o *Orchestrator) HandleTurn(ctx context.Context, in Input) (*Reply, error) {
	if in.SessionID == "" || in.StudentID == "" {
		return nil, fmt.Errorf("%w: session and student ids are required", ErrInvalidInput)
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "turn.handle",
		trace.WithAttributes(attribute.String("turn.session_id", in.SessionID)))
	defer span.End()

	log := o.log.With("session_id", in.SessionID, "student_id", in.StudentID)

	st, err := o.load(ctx, in, log)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		return nil, err
	}

	subject := st.SubjectCode
	var probe string
	if session.RequiresDiagnostic(st) && !session.IsDiagnosticComplete(st, o.selector.SetSize(subject)) {
		probe = o.selector.NextQuestion(subject, st.DiagnosticQuestionsAsked)
	}

	res, err := o.tutor.EvaluateAndTutor(ctx, tutor.TurnContext{
		StudentMessage:     in.Message,
		CurrentQuestion:    st.CurrentQuestion,
		ExpectedAnswerHint: st.ExpectedAnswerHint,
		MarkScheme:         in.MarkScheme,
		TopicName:          st.TopicName,
		SubjectName:        in.SubjectName,
		SubjectCode:        subject,
		LearningStyle:      in.LearningStyle,
		Attempts:           st.Attempts,
		CorrectStreak:      st.CorrectStreak,
		Phase:              st.Phase,
		DiagnosticProbe:    probe,
		History:            in.History,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "tutor failed")
		log.Warn("tutor call failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrTutorUnavailable, err)
	}

	answered := st.CurrentQuestion
	next := o.apply(st, res, probe != "")

	span.SetAttributes(
		attribute.String("turn.intent", string(res.Intent)),
		attribute.String("turn.evaluation", string(res.Evaluation)),
		attribute.String("turn.action", string(next.LastAction)),
		attribute.String("turn.phase", string(next.Phase)),
	)

	if err := o.sessions.Save(ctx, next); err != nil {
		log.Warn("failed to persist session state", "error", err)
	}

	if res.Evaluation.Judged() {
		o.recordProgress(ctx, log, in, next, res, answered)
	}

	return &Reply{
		Decision: Decision{
			Action:        next.LastAction,
			Phase:         next.Phase,
			Evaluation:    res.Evaluation,
			Confidence:    res.Confidence,
			ErrorType:     res.ErrorType,
			DeliveryModes: res.Techniques,
		},
		Message: res.Message,
		State:   next,
	}, nil
}

// load returns the stored state, or a fresh one when the session does not
// exist yet. Any other store error is returned as ErrStateUnavailable.
func (o *Orchestrator) load(ctx context.Context, in Input, log *logger.Logger) (session.State, error) {
	st, err := o.sessions.Get(ctx, in.SessionID)
	switch {
	case err == nil:
		if st.StudentID != in.StudentID {
			return session.State{}, ErrSessionForbidden
		}
	case errors.Is(err, store.ErrNotFound):
		st = o.initialize(in)
	default:
		log.Warn("failed to load session state", "error", err)
		return session.State{}, fmt.Errorf("%w: %w", ErrStateUnavailable, err)
	}

	// Context may arrive after the first turn.
	if st.TopicID == "" {
		st.TopicID = in.TopicID
	}
	if st.TopicName == "" {
		st.TopicName = in.TopicName
	}
	if st.SubjectCode == "" {
		st.SubjectCode = in.SubjectCode
	}
	return st, nil
}

func (o *Orchestrator) initialize(in Input) session.State {
	st := session.Initialize(in.SessionID, in.StudentID, in.TopicID, in.TopicName, in.PositionKnown)
	st.SubjectCode = in.SubjectCode
	st.CreatedAt = o.now().UTC()
	return st
}

// apply folds the tutor's decision into the state.
func (o *Orchestrator) apply(st session.State, res *tutor.Result, diagnosing bool) session.State {
	st = session.UpdateFromEvaluation(st, res.Evaluation)

	phase := o.transitions.PhaseFor(res.Action, st.Phase)
	if diagnosing {
		st = session.IncrementDiagnosticCount(st)
		if session.IsDiagnosticComplete(st, o.selector.SetSize(st.SubjectCode)) {
			st = session.ConfirmCurriculumPosition(st)
			phase = session.PhaseTeaching
		} else {
			phase = session.PhaseDiagnostic
		}
	}
	st = session.UpdateWithAction(st, res.Action, phase)

	q, asked := session.ExtractNextQuestion(res.Message)
	g := intent.GuidanceFor(res.Intent)
	switch {
	case asked && q != st.CurrentQuestion:
		st.CurrentQuestion = q
		st.ExpectedAnswerHint = ""
	case !asked && g.NextStateMode == intent.ModeRecord && !g.ShouldValidateAnswer:
		// Skipped with nothing to replace it.
		st.CurrentQuestion = ""
		st.ExpectedAnswerHint = ""
	}

	st.UpdatedAt = o.now().UTC()
	return st
}

// recordProgress upserts evidence and appends the audit row concurrently.
// Both are best effort.
func (o *Orchestrator) recordProgress(ctx context.Context, log *logger.Logger, in Input, st session.State, res *tutor.Result, question string) {
	now := st.UpdatedAt

	var g errgroup.Group
	g.Go(func() error {
		key := progress.Key{StudentID: st.StudentID, SessionID: st.SessionID, TopicID: evidenceTopic(st)}
		var existing *progress.Evidence
		ev, err := o.evidence.Get(ctx, key)
		switch {
		case err == nil:
			existing = &ev
		case !errors.Is(err, store.ErrNotFound):
			log.Warn("failed to load progress evidence", "error", err)
			return nil
		}
		subjectID := in.SubjectID
		if subjectID == "" {
			subjectID = st.SubjectCode
		}
		updated, ok := progress.Record(existing, progress.Update{
			Key:        key,
			SubjectID:  subjectID,
			Evaluation: res.Evaluation,
			Techniques: res.Techniques,
			At:         now,
		})
		if !ok {
			return nil
		}
		if err := o.evidence.Upsert(ctx, updated); err != nil {
			log.Warn("failed to persist progress evidence", "error", err)
		}
		return nil
	})
	g.Go(func() error {
		_, err := o.evalLog.Append(ctx, store.EvaluationLogEntry{
			SessionID:   st.SessionID,
			StudentID:   st.StudentID,
			Evaluation:  res.Evaluation,
			Confidence:  res.Confidence,
			ErrorType:   res.ErrorType,
			Question:    question,
			Answer:      in.Message,
			ActionTaken: res.Action,
			CreatedAt:   now,
		})
		if err != nil {
			log.Warn("failed to append evaluation log", "error", err)
		}
		return nil
	})
	_ = g.Wait()
}

func evidenceTopic(st session.State) string {
	switch {
	case st.TopicID != "":
		return st.TopicID
	case st.SubjectCode != "":
		return st.SubjectCode
	}
	return defaultTopic
}
