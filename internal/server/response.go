package server

import (
	"github.com/gin-gonic/gin"
)

// Error codes carried in the envelope.
const (
	codeUnauthorized     = "unauthorized"
	codeForbidden        = "forbidden"
	codeInvalidRequest   = "invalid_request"
	codeSessionBusy      = "session_busy"
	codeTutorUnavailable = "tutor_unavailable"
	codeStateUnavailable = "state_unavailable"
	codeInternal         = "internal"
)

type APIError struct {
	Message   string `json:"message"`
	Code      string `json:"code,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func respondError(c *gin.Context, status int, code string, err error) {
	c.JSON(status, envelope(code, err))
}

func abortError(c *gin.Context, status int, code string, err error) {
	c.AbortWithStatusJSON(status, envelope(code, err))
}

func envelope(code string, err error) ErrorEnvelope {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return ErrorEnvelope{Error: APIError{
		Message:   msg,
		Code:      code,
		Retryable: retryable(code),
	}}
}

func retryable(code string) bool {
	switch code {
	case codeTutorUnavailable, codeStateUnavailable, codeSessionBusy:
		return true
	}
	return false
}
