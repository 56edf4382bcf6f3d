package rest

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Trieuh2/scheduler-backend/internal/service/auth"
	"github.com/Trieuh2/scheduler-backend/internal/service/customers"
	"github.com/Trieuh2/scheduler-backend/internal/service/scheduling"
	"github.com/Trieuh2/scheduler-backend/internal/store"
	"github.com/Trieuh2/scheduler-backend/internal/timeconv"
)

// writeServiceError maps service-layer failures onto HTTP status codes.
// Validation failures are the caller's fault; an overlap is reported as a
// conflict so clients can offer a different slot.
func writeServiceError(c *gin.Context, log *slog.Logger, err error, what string) {
	var schedErr *scheduling.ValidationError
	if errors.As(err, &schedErr) {
		if schedErr.Reason == scheduling.ReasonCustomerOverlap {
			log.Info(what+" conflict", slog.Any("err", err))
			c.JSON(http.StatusConflict, gin.H{"error": schedErr.Error(), "reason": string(schedErr.Reason)})
			return
		}
		log.Warn("invalid request", slog.Any("err", err))
		c.JSON(http.StatusBadRequest, gin.H{"error": schedErr.Error(), "reason": string(schedErr.Reason)})
		return
	}

	var custErr *customers.ValidationError
	if errors.As(err, &custErr) {
		log.Warn("invalid request", slog.Any("err", err))
		c.JSON(http.StatusBadRequest, gin.H{"error": custErr.Error()})
		return
	}

	var dateErr *timeconv.InvalidDateError
	if errors.As(err, &dateErr) {
		log.Warn("invalid request", slog.Any("err", err))
		c.JSON(http.StatusBadRequest, gin.H{"error": dateErr.Error()})
		return
	}

	var tsErr *timeconv.MalformedTimestampError
	if errors.As(err, &tsErr) {
		log.Error(what+" failed", slog.Any("err", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	switch {
	case errors.Is(err, store.ErrNotFound):
		log.Info(what+" not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, store.ErrConflict):
		log.Info(what + " conflict")
		c.JSON(http.StatusConflict, gin.H{"error": "conflicting record exists"})
	case errors.Is(err, auth.ErrInvalidCredentials):
		log.Info("login rejected")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
	default:
		log.Error(what+" failed", slog.Any("err", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
