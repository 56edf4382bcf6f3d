package rest

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-Id"
	requestIDKey    = "request_id"
	usernameKey     = "auth_username"
	userIDKey       = "auth_user_id"
)

// tokenVerifier checks a bearer token and returns the user it was issued to.
type tokenVerifier interface {
	VerifyToken(token string) (userID int64, username string, err error)
}

// RequestID tags every request with an ID, honoring one the client sent.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

// RequestLogger emits one structured line per request after it completes.
func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("http request",
			slog.String("request_id", c.GetString(requestIDKey)),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
		)
	}
}

// Auth rejects requests without a valid bearer token and records the
// authenticated user on the context for handlers to use as the audit actor.
func Auth(verifier tokenVerifier, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		userID, username, err := verifier.VerifyToken(strings.TrimSpace(token))
		if err != nil {
			log.Info("token rejected",
				slog.String("request_id", c.GetString(requestIDKey)),
				slog.Any("err", err),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(userIDKey, userID)
		c.Set(usernameKey, username)
		c.Next()
	}
}

// actor returns the authenticated username for audit stamping.
func actor(c *gin.Context) string {
	return c.GetString(usernameKey)
}
