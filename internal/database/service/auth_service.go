package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/nightstay/backend-go/internal/config"
	"github.com/nightstay/backend-go/internal/database/models"
	"github.com/nightstay/backend-go/internal/database/repository"
)

const minPasswordLength = 6

// AuthService defines the interface for authentication business logic
type AuthService interface {
	Register(ctx context.Context, email, password string) (*models.User, *TokenPair, error)
	Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	ValidateAccessToken(tokenString string) (uint, error)
	Me(ctx context.Context, userID uint) (*models.User, error)

	// Operator actions
	ResetPassword(ctx context.Context, email, password string) error
	ListUsers(ctx context.Context) ([]models.User, error)
	PurgeExpiredTokens(ctx context.Context) (int64, error)
}

// LoginThrottle counts failed logins per email. Implementations must fail open.
type LoginThrottle interface {
	Allow(ctx context.Context, key string) (bool, error)
	RecordFailure(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

type authService struct {
	userRepo         repository.UserRepository
	refreshTokenRepo repository.RefreshTokenRepository
	throttle         LoginThrottle
	jwtSecret        string
	cfg              *config.Config
	logger           *slog.Logger
}

// NewAuthService creates a new authentication service instance
func NewAuthService(
	userRepo repository.UserRepository,
	refreshTokenRepo repository.RefreshTokenRepository,
	throttle LoginThrottle,
	cfg *config.Config,
	logger *slog.Logger,
) AuthService {
	return &authService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		throttle:         throttle,
		jwtSecret:        cfg.JWTSecret,
		cfg:              cfg,
		logger:           logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return invalidInput(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	return nil
}

func (s *authService) Register(ctx context.Context, email, password string) (*models.User, *TokenPair, error) {
	email = normalizeEmail(email)
	s.logger.Info("📝 [AuthService] Registration attempt", "email", email)

	if email == "" {
		return nil, nil, invalidInput("email is required")
	}
	if err := validatePassword(password); err != nil {
		return nil, nil, err
	}

	// Check if email already exists
	existingUser, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		s.logger.Error("❌ [AuthService] Database error", "error", err)
		return nil, nil, err
	}

	if existingUser != nil {
		s.logger.Warn("⚠️ [AuthService] Email already registered", "email", email)
		return nil, nil, ErrEmailAlreadyExists
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("❌ [AuthService] Failed to hash password", "error", err)
		return nil, nil, err
	}

	user := &models.User{
		Email:    email,
		Password: string(hashedPassword),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			// Lost a race with a concurrent registration.
			return nil, nil, ErrEmailAlreadyExists
		}
		s.logger.Error("❌ [AuthService] Failed to create user", "error", err)
		return nil, nil, err
	}

	tokens, err := s.generateTokenPair(ctx, user.ID)
	if err != nil {
		s.logger.Error("❌ [AuthService] Failed to generate tokens", "error", err)
		return nil, nil, err
	}

	s.logger.Info("✅ [AuthService] User registered successfully", "user_id", user.ID)
	return user, tokens, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error) {
	email = normalizeEmail(email)
	s.logger.Info("🔐 [AuthService] Login attempt", "email", email)

	allowed, err := s.throttle.Allow(ctx, email)
	if err != nil {
		s.logger.Warn("⚠️ [AuthService] Login throttle unavailable", "error", err)
	}
	if !allowed {
		s.logger.Warn("⚠️ [AuthService] Too many failed logins", "email", email)
		return nil, nil, ErrTooManyAttempts
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.logger.Warn("⚠️ [AuthService] User not found", "email", email)
			s.recordFailure(ctx, email)
			return nil, nil, ErrInvalidCredentials
		}
		s.logger.Error("❌ [AuthService] Database error", "error", err)
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.logger.Warn("⚠️ [AuthService] Invalid password", "email", email)
		s.recordFailure(ctx, email)
		return nil, nil, ErrInvalidCredentials
	}

	if err := s.throttle.Reset(ctx, email); err != nil {
		s.logger.Warn("⚠️ [AuthService] Failed to reset login throttle", "error", err)
	}

	tokens, err := s.generateTokenPair(ctx, user.ID)
	if err != nil {
		s.logger.Error("❌ [AuthService] Failed to generate tokens", "error", err)
		return nil, nil, err
	}

	s.logger.Info("✅ [AuthService] User logged in successfully", "user_id", user.ID)
	return user, tokens, nil
}

func (s *authService) recordFailure(ctx context.Context, email string) {
	if err := s.throttle.RecordFailure(ctx, email); err != nil {
		s.logger.Warn("⚠️ [AuthService] Failed to record login failure", "error", err)
	}
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	s.logger.Info("🔄 [AuthService] Token refresh attempt")

	storedToken, err := s.refreshTokenRepo.FindByToken(ctx, refreshToken)
	if err != nil {
		s.logger.Warn("⚠️ [AuthService] Invalid refresh token", "error", err)
		return nil, ErrInvalidToken
	}

	// Revoke the old token first. Only the caller whose revoke hits the row may rotate.
	if err := s.refreshTokenRepo.RevokeToken(ctx, refreshToken); err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			s.logger.Warn("⚠️ [AuthService] Refresh token already rotated", "user_id", storedToken.UserID)
			return nil, ErrInvalidToken
		}
		s.logger.Error("❌ [AuthService] Failed to revoke old token", "error", err)
		return nil, err
	}

	tokens, err := s.generateTokenPair(ctx, storedToken.UserID)
	if err != nil {
		s.logger.Error("❌ [AuthService] Failed to generate new tokens", "error", err)
		return nil, err
	}

	s.logger.Info("✅ [AuthService] Token refreshed successfully", "user_id", storedToken.UserID)
	return tokens, nil
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	s.logger.Info("👋 [AuthService] Logout attempt")

	if err := s.refreshTokenRepo.RevokeToken(ctx, refreshToken); err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			s.logger.Warn("⚠️ [AuthService] Token not found for logout")
			return repository.ErrTokenNotFound
		}
		return err
	}

	s.logger.Info("✅ [AuthService] User logged out successfully")
	return nil
}

func (s *authService) ValidateAccessToken(tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}

	if tokenType, _ := claims["type"].(string); tokenType != "access" {
		return 0, ErrInvalidToken
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, ErrInvalidToken
	}

	return uint(userID), nil
}

func (s *authService) Me(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

// ResetPassword replaces the password of the account and signs it out everywhere
func (s *authService) ResetPassword(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	s.logger.Info("🔑 [AuthService] Password reset", "email", email)

	if err := validatePassword(password); err != nil {
		return err
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("❌ [AuthService] Failed to hash password", "error", err)
		return err
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, string(hashedPassword)); err != nil {
		s.logger.Error("❌ [AuthService] Failed to update password", "error", err)
		return err
	}

	if err := s.refreshTokenRepo.RevokeAllUserTokens(ctx, user.ID); err != nil {
		s.logger.Error("❌ [AuthService] Failed to revoke refresh tokens", "error", err)
		return err
	}

	s.logger.Info("✅ [AuthService] Password reset", "user_id", user.ID)
	return nil
}

func (s *authService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.userRepo.List(ctx)
}

func (s *authService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	return s.refreshTokenRepo.DeleteExpiredTokens(ctx, time.Now())
}

// generateTokenPair creates both access and refresh tokens
func (s *authService) generateTokenPair(ctx context.Context, userID uint) (*TokenPair, error) {
	accessToken, err := s.generateAccessToken(userID)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.generateAndStoreRefreshToken(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.cfg.AccessTokenExpiration,
	}, nil
}

func (s *authService) generateAccessToken(userID uint) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"type":    "access",
		"exp":     now.Add(time.Duration(s.cfg.AccessTokenExpiration) * time.Second).Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *authService) generateAndStoreRefreshToken(ctx context.Context, userID uint) (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	tokenString := base64.URLEncoding.EncodeToString(tokenBytes)

	refreshToken := &models.RefreshToken{
		UserID:    userID,
		Token:     tokenString,
		ExpiresAt: time.Now().Add(time.Duration(s.cfg.RefreshTokenExpiration) * time.Second),
		IsRevoked: false,
	}

	if err := s.refreshTokenRepo.Create(ctx, refreshToken); err != nil {
		return "", err
	}

	return tokenString, nil
}

// Service errors
var (
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTooManyAttempts    = errors.New("too many failed login attempts")
)
