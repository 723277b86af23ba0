package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nightstay/backend-go/internal/database/repository"
	"github.com/nightstay/backend-go/internal/database/service"
	"github.com/nightstay/backend-go/internal/middleware"
)

// handleServiceError maps service and repository errors to HTTP responses
func handleServiceError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": inputMessage(err)})
	case errors.Is(err, service.ErrEmailAlreadyExists), errors.Is(err, repository.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
	case errors.Is(err, service.ErrTooManyAttempts):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many failed login attempts, try again later"})
	case errors.Is(err, service.ErrInvalidToken), errors.Is(err, repository.ErrTokenNotFound), errors.Is(err, repository.ErrTokenExpired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
	case errors.Is(err, repository.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, repository.ErrLocationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Location not found"})
	case errors.Is(err, repository.ErrLocationInUse):
		c.JSON(http.StatusConflict, gin.H{"error": "Cannot delete location that has sleep entries"})
	case errors.Is(err, repository.ErrEntryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Sleep entry not found"})
	default:
		logger.Error("❌ [Handler] Internal server error", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// inputMessage strips the error kind so clients only see the failed check
func inputMessage(err error) string {
	prefix := service.ErrInvalidInput.Error() + ": "
	msg := err.Error()
	if i := strings.Index(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return msg
}

func getUserIDFromContext(c *gin.Context) uint {
	userID, exists := c.Get(middleware.UserIDKey)
	if !exists {
		return 0
	}
	if id, ok := userID.(uint); ok {
		return id
	}
	return 0
}
