package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/gcsetutor/internal/diagnostic"
	"github.com/abhisek/gcsetutor/internal/progress"
	"github.com/abhisek/gcsetutor/internal/turn"
	"github.com/abhisek/gcsetutor/internal/turnlock"
	"github.com/abhisek/gcsetutor/internal/tutor"
)

// Response headers carrying turn metadata.
const (
	headerAction        = "X-Tutor-Action"
	headerPhase         = "X-Tutor-Phase"
	headerEvaluation    = "X-Tutor-Evaluation"
	headerConfidence    = "X-Tutor-Confidence"
	headerErrorType     = "X-Tutor-Error-Type"
	headerDeliveryModes = "X-Tutor-Delivery-Modes"
)

var tutorHeaders = []string{
	headerAction, headerPhase, headerEvaluation,
	headerConfidence, headerErrorType, headerDeliveryModes,
}

type turnRequest struct {
	Message        string                 `json:"message"`
	SessionID      string                 `json:"session_id" binding:"required"`
	TopicID        string                 `json:"topic_id"`
	TopicName      string                 `json:"topic_name"`
	SubjectID      string                 `json:"subject_id"`
	SubjectCode    string                 `json:"subject_code"`
	SubjectName    string                 `json:"subject_name"`
	LearningStyle  string                 `json:"learning_style"`
	MessageHistory []tutor.HistoryMessage `json:"message_history"`
	MarkScheme     string                 `json:"mark_scheme"`
	PositionKnown  bool                   `json:"curriculum_position_known"`
}

func (s *Server) handleTurn(c *gin.Context) {
	var req turnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	release, err := s.lockSession(c.Request.Context(), req.SessionID)
	if err != nil {
		if errors.Is(err, turnlock.ErrLockTimeout) {
			respondError(c, http.StatusConflict, codeSessionBusy, errors.New("another turn for this session is in progress"))
			return
		}
		s.log.Error("turn lock failed", "session_id", req.SessionID, "error", err)
		respondError(c, http.StatusServiceUnavailable, codeInternal, errors.New("could not start turn"))
		return
	}

	ctx := c.Request.Context()
	if s.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
	}
	reply, err := s.deps.Orchestrator.HandleTurn(ctx, turn.Input{
		StudentID:     studentID(c),
		SessionID:     req.SessionID,
		Message:       req.Message,
		TopicID:       req.TopicID,
		TopicName:     req.TopicName,
		SubjectID:     req.SubjectID,
		SubjectCode:   req.SubjectCode,
		SubjectName:   req.SubjectName,
		LearningStyle: req.LearningStyle,
		MarkScheme:    req.MarkScheme,
		History:       req.MessageHistory,
		PositionKnown: req.PositionKnown,
	})
	if relErr := release(); relErr != nil {
		s.log.Warn("turn lock release failed", "session_id", req.SessionID, "error", relErr)
	}
	if err != nil {
		switch {
		case errors.Is(err, turn.ErrInvalidInput):
			respondError(c, http.StatusBadRequest, codeInvalidRequest, err)
		case errors.Is(err, turn.ErrSessionForbidden):
			respondError(c, http.StatusForbidden, codeForbidden, err)
		case errors.Is(err, turn.ErrStateUnavailable):
			respondError(c, http.StatusServiceUnavailable, codeStateUnavailable,
				errors.New("session state could not be loaded, please try again"))
		default:
			respondError(c, http.StatusServiceUnavailable, codeTutorUnavailable,
				errors.New("the tutor is unavailable right now, please try again"))
		}
		return
	}

	h := c.Writer.Header()
	h.Set(headerAction, string(reply.Action))
	h.Set(headerPhase, string(reply.Phase))
	h.Set(headerEvaluation, string(reply.Evaluation))
	h.Set(headerConfidence, strconv.FormatFloat(reply.Confidence, 'f', 2, 64))
	h.Set(headerErrorType, reply.ErrorType)
	h.Set(headerDeliveryModes, strings.Join(reply.DeliveryModes, ","))
	h.Set("Content-Type", "text/plain; charset=utf-8")
	h.Set("Cache-Control", "no-cache")
	c.Status(http.StatusOK)

	for chunk := range reply.Chunks() {
		if c.Request.Context().Err() != nil {
			return
		}
		if _, err := c.Writer.WriteString(chunk); err != nil {
			return
		}
		c.Writer.Flush()
	}
}

// lockSession waits at most LockWait for the session lock, so queueing does
// not eat into the turn's own timeout.
func (s *Server) lockSession(ctx context.Context, sessionID string) (turnlock.Release, error) {
	if s.cfg.LockWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.LockWait)
		defer cancel()
	}
	return s.deps.Locker.Lock(ctx, sessionID)
}

type progressResponse struct {
	Subjects []progress.SubjectSummary `json:"subjects"`
}

func (s *Server) handleProgress(c *gin.Context) {
	rows, err := s.deps.Evidence.ListByStudent(c.Request.Context(), studentID(c))
	if err != nil {
		s.log.Error("list progress evidence", "error", err)
		respondError(c, http.StatusInternalServerError, codeInternal, errors.New("could not load progress"))
		return
	}
	summaries := progress.AggregateBySubject(rows)
	if summaries == nil {
		summaries = []progress.SubjectSummary{}
	}
	c.JSON(http.StatusOK, progressResponse{Subjects: summaries})
}

type diagnosticResponse struct {
	Subject   string                `json:"subject"`
	Known     bool                  `json:"known"`
	Questions []diagnostic.Question `json:"questions"`
}

func (s *Server) handleDiagnostic(c *gin.Context) {
	subject := c.Param("subject")
	count := diagnostic.DefaultSetSize
	if raw := c.Query("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 20 {
			respondError(c, http.StatusBadRequest, codeInvalidRequest, errors.New("count must be between 1 and 20"))
			return
		}
		count = n
	}
	_, known := s.deps.Selector.Bank().Subject(subject)
	c.JSON(http.StatusOK, diagnosticResponse{
		Subject:   subject,
		Known:     known,
		Questions: s.deps.Selector.SelectSet(subject, count),
	})
}
