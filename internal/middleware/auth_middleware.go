package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nightstay/backend-go/internal/database/service"
)

// UserIDKey is the gin context key holding the authenticated user's id
const UserIDKey = "userID"

// AuthMiddleware guards the owner-scoped API with access tokens
type AuthMiddleware struct {
	service service.AuthService
	logger  *slog.Logger
}

// NewAuthMiddleware creates a new auth middleware instance
func NewAuthMiddleware(service service.AuthService, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		service: service,
		logger:  logger,
	}
}

// RequireAuth resolves the bearer token to a user id and stores it under UserIDKey.
// Every entry, location and calendar query is scoped by that id.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			m.logger.Warn("⚠️ [Middleware] Missing Authorization header", "path", c.FullPath())
			unauthorized(c, "Authorization header required")
			return
		}

		token, ok := bearerToken(header)
		if !ok {
			m.logger.Warn("⚠️ [Middleware] Invalid Authorization header format", "path", c.FullPath())
			unauthorized(c, "Invalid authorization header format")
			return
		}

		userID, err := m.service.ValidateAccessToken(token)
		if err != nil {
			m.logger.Warn("⚠️ [Middleware] Invalid token", "path", c.FullPath(), "error", err)
			unauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(UserIDKey, userID)
		m.logger.Debug("✅ [Middleware] Token validated", "user_id", userID)

		c.Next()
	}
}

// bearerToken extracts the credentials of a "Bearer <token>" header. The scheme is
// case-insensitive.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}

func unauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", `Bearer realm="nightstay"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}
