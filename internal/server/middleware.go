package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/abhisek/gcsetutor/internal/logger"
)

const studentIDKey = "student_id"

// RequireAuth verifies an HS256 bearer token and stores its subject as the
// student id. Requests without a valid token never reach a handler.
func RequireAuth(secret []byte, issuer string, log *logger.Logger) gin.HandlerFunc {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30 * time.Second),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	parser := jwt.NewParser(opts...)

	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			abortError(c, http.StatusUnauthorized, codeUnauthorized, errors.New("missing or invalid token"))
			return
		}
		var claims jwt.RegisteredClaims
		_, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
			return secret, nil
		})
		if err != nil {
			log.Debug("rejected token", "error", err)
			abortError(c, http.StatusUnauthorized, codeUnauthorized, errors.New("missing or invalid token"))
			return
		}
		if strings.TrimSpace(claims.Subject) == "" {
			abortError(c, http.StatusUnauthorized, codeUnauthorized, errors.New("token has no subject"))
			return
		}
		c.Set(studentIDKey, claims.Subject)
		c.Next()
	}
}

func bearerToken(header string) string {
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func studentID(c *gin.Context) string {
	return c.GetString(studentIDKey)
}

// RequestLogger logs one line per request, at a level chosen by status.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := []any{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if id := studentID(c); id != "" {
			fields = append(fields, "student_id", id)
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}
