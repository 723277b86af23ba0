package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nightstay/backend-go/internal/database/models"
	"github.com/nightstay/backend-go/internal/database/repository"
	"github.com/nightstay/backend-go/internal/database/service"
	"github.com/nightstay/backend-go/internal/testutil"
)

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func newAuthService(userRepo *testutil.MockUserRepository, tokenRepo *testutil.MockRefreshTokenRepository, throttle service.LoginThrottle) service.AuthService {
	return service.NewAuthService(userRepo, tokenRepo, throttle, testutil.TestConfig(), testutil.TestLogger())
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		password      string
		setupMocks    func(*testutil.MockUserRepository, *testutil.MockRefreshTokenRepository)
		expectedError error
	}{
		{
			name:     "successful registration",
			email:    "  New@Example.com ",
			password: "password123",
			setupMocks: func(userRepo *testutil.MockUserRepository, tokenRepo *testutil.MockRefreshTokenRepository) {
				userRepo.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, repository.ErrUserNotFound)
				userRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
					return u.Email == "new@example.com" && u.Password != "password123"
				})).Run(func(args mock.Arguments) {
					args.Get(1).(*models.User).ID = 1
				}).Return(nil)
				tokenRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.RefreshToken")).Return(nil)
			},
		},
		{
			name:     "email already exists",
			email:    "existing@example.com",
			password: "password123",
			setupMocks: func(userRepo *testutil.MockUserRepository, tokenRepo *testutil.MockRefreshTokenRepository) {
				userRepo.On("FindByEmail", mock.Anything, "existing@example.com").Return(&models.User{ID: 1}, nil)
			},
			expectedError: service.ErrEmailAlreadyExists,
		},
		{
			name:     "lost creation race",
			email:    "race@example.com",
			password: "password123",
			setupMocks: func(userRepo *testutil.MockUserRepository, tokenRepo *testutil.MockRefreshTokenRepository) {
				userRepo.On("FindByEmail", mock.Anything, "race@example.com").Return(nil, repository.ErrUserNotFound)
				userRepo.On("Create", mock.Anything, mock.Anything).Return(repository.ErrEmailTaken)
			},
			expectedError: service.ErrEmailAlreadyExists,
		},
		{
			name:          "short password",
			email:         "new@example.com",
			password:      "12345",
			setupMocks:    func(*testutil.MockUserRepository, *testutil.MockRefreshTokenRepository) {},
			expectedError: service.ErrInvalidInput,
		},
		{
			name:          "empty email",
			email:         "   ",
			password:      "password123",
			setupMocks:    func(*testutil.MockUserRepository, *testutil.MockRefreshTokenRepository) {},
			expectedError: service.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userRepo := new(testutil.MockUserRepository)
			tokenRepo := new(testutil.MockRefreshTokenRepository)
			tt.setupMocks(userRepo, tokenRepo)

			svc := newAuthService(userRepo, tokenRepo, testutil.AllowAllThrottle())
			user, tokens, err := svc.Register(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
				assert.Nil(t, tokens)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "new@example.com", user.Email)
				assert.NotEmpty(t, tokens.AccessToken)
				assert.NotEmpty(t, tokens.RefreshToken)
				assert.Equal(t, int64(900), tokens.ExpiresIn)
			}

			userRepo.AssertExpectations(t)
			tokenRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	stored := &models.User{ID: 7, Email: "user@example.com", Password: hashPassword(t, "password123")}

	tests := []struct {
		name          string
		password      string
		setupMocks    func(*testutil.MockUserRepository, *testutil.MockRefreshTokenRepository, *testutil.MockLoginThrottle)
		expectedError error
	}{
		{
			name:     "successful login resets throttle",
			password: "password123",
			setupMocks: func(userRepo *testutil.MockUserRepository, tokenRepo *testutil.MockRefreshTokenRepository, throttle *testutil.MockLoginThrottle) {
				throttle.On("Allow", mock.Anything, "user@example.com").Return(true, nil)
				userRepo.On("FindByEmail", mock.Anything, "user@example.com").Return(stored, nil)
				throttle.On("Reset", mock.Anything, "user@example.com").Return(nil)
				tokenRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.RefreshToken")).Return(nil)
			},
		},
		{
			name:     "wrong password records failure",
			password: "wrong-password",
			setupMocks: func(userRepo *testutil.MockUserRepository, tokenRepo *testutil.MockRefreshTokenRepository, throttle *testutil.MockLoginThrottle) {
				throttle.On("Allow", mock.Anything, "user@example.com").Return(true, nil)
				userRepo.On("FindByEmail", mock.Anything, "user@example.com").Return(stored, nil)
				throttle.On("RecordFailure", mock.Anything, "user@example.com").Return(nil)
			},
			expectedError: service.ErrInvalidCredentials,
		},
		{
			name:     "unknown user records failure",
			password: "password123",
			setupMocks: func(userRepo *testutil.MockUserRepository, tokenRepo *testutil.MockRefreshTokenRepository, throttle *testutil.MockLoginThrottle) {
				throttle.On("Allow", mock.Anything, "user@example.com").Return(true, nil)
				userRepo.On("FindByEmail", mock.Anything, "user@example.com").Return(nil, repository.ErrUserNotFound)
				throttle.On("RecordFailure", mock.Anything, "user@example.com").Return(nil)
			},
			expectedError: service.ErrInvalidCredentials,
		},
		{
			name:     "locked out",
			password: "password123",
			setupMocks: func(userRepo *testutil.MockUserRepository, tokenRepo *testutil.MockRefreshTokenRepository, throttle *testutil.MockLoginThrottle) {
				throttle.On("Allow", mock.Anything, "user@example.com").Return(false, nil)
			},
			expectedError: service.ErrTooManyAttempts,
		},
		{
			name:     "throttle outage fails open",
			password: "password123",
			setupMocks: func(userRepo *testutil.MockUserRepository, tokenRepo *testutil.MockRefreshTokenRepository, throttle *testutil.MockLoginThrottle) {
				throttle.On("Allow", mock.Anything, "user@example.com").Return(true, errors.New("redis down"))
				userRepo.On("FindByEmail", mock.Anything, "user@example.com").Return(stored, nil)
				throttle.On("Reset", mock.Anything, "user@example.com").Return(errors.New("redis down"))
				tokenRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.RefreshToken")).Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userRepo := new(testutil.MockUserRepository)
			tokenRepo := new(testutil.MockRefreshTokenRepository)
			throttle := new(testutil.MockLoginThrottle)
			tt.setupMocks(userRepo, tokenRepo, throttle)

			svc := newAuthService(userRepo, tokenRepo, throttle)
			user, tokens, err := svc.Login(context.Background(), "User@Example.com", tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, uint(7), user.ID)
				assert.NotEmpty(t, tokens.AccessToken)
			}

			userRepo.AssertExpectations(t)
			tokenRepo.AssertExpectations(t)
			throttle.AssertExpectations(t)
		})
	}
}

func TestAuthService_AccessTokenRoundTrip(t *testing.T) {
	userRepo := new(testutil.MockUserRepository)
	tokenRepo := new(testutil.MockRefreshTokenRepository)
	userRepo.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, repository.ErrUserNotFound)
	userRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*models.User).ID = 42
	}).Return(nil)
	tokenRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := newAuthService(userRepo, tokenRepo, testutil.AllowAllThrottle())
	_, tokens, err := svc.Register(context.Background(), "new@example.com", "password123")
	require.NoError(t, err)

	userID, err := svc.ValidateAccessToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)

	// A refresh token is not an access token.
	_, err = svc.ValidateAccessToken(tokens.RefreshToken)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestAuthService_ValidateAccessTokenRejects(t *testing.T) {
	svc := newAuthService(new(testutil.MockUserRepository), new(testutil.MockRefreshTokenRepository), testutil.AllowAllThrottle())
	secret := []byte(testutil.TestConfig().JWTSecret)

	sign := func(claims jwt.MapClaims, key []byte) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-jwt"},
		{name: "wrong secret", token: sign(jwt.MapClaims{"user_id": 1, "type": "access", "exp": exp}, []byte("other"))},
		{name: "expired", token: sign(jwt.MapClaims{"user_id": 1, "type": "access", "exp": time.Now().Add(-time.Hour).Unix()}, secret)},
		{name: "wrong type", token: sign(jwt.MapClaims{"user_id": 1, "type": "refresh", "exp": exp}, secret)},
		{name: "missing user", token: sign(jwt.MapClaims{"type": "access", "exp": exp}, secret)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateAccessToken(tt.token)
			assert.ErrorIs(t, err, service.ErrInvalidToken)
		})
	}
}

func TestAuthService_RefreshToken(t *testing.T) {
	t.Run("rotates the token", func(t *testing.T) {
		userRepo := new(testutil.MockUserRepository)
		tokenRepo := new(testutil.MockRefreshTokenRepository)
		tokenRepo.On("FindByToken", mock.Anything, "old").Return(&models.RefreshToken{UserID: 3, Token: "old"}, nil)
		tokenRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
		tokenRepo.On("RevokeToken", mock.Anything, "old").Return(nil)

		svc := newAuthService(userRepo, tokenRepo, testutil.AllowAllThrottle())
		tokens, err := svc.RefreshToken(context.Background(), "old")
		require.NoError(t, err)
		assert.NotEqual(t, "old", tokens.RefreshToken)
		tokenRepo.AssertExpectations(t)
	})

	t.Run("token rotated concurrently issues nothing", func(t *testing.T) {
		tokenRepo := new(testutil.MockRefreshTokenRepository)
		tokenRepo.On("FindByToken", mock.Anything, "old").Return(&models.RefreshToken{UserID: 3, Token: "old"}, nil)
		tokenRepo.On("RevokeToken", mock.Anything, "old").Return(repository.ErrTokenNotFound)

		svc := newAuthService(new(testutil.MockUserRepository), tokenRepo, testutil.AllowAllThrottle())
		tokens, err := svc.RefreshToken(context.Background(), "old")
		assert.ErrorIs(t, err, service.ErrInvalidToken)
		assert.Nil(t, tokens)
		tokenRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("revoke failure issues nothing", func(t *testing.T) {
		tokenRepo := new(testutil.MockRefreshTokenRepository)
		tokenRepo.On("FindByToken", mock.Anything, "old").Return(&models.RefreshToken{UserID: 3, Token: "old"}, nil)
		tokenRepo.On("RevokeToken", mock.Anything, "old").Return(assert.AnError)

		svc := newAuthService(new(testutil.MockUserRepository), tokenRepo, testutil.AllowAllThrottle())
		tokens, err := svc.RefreshToken(context.Background(), "old")
		assert.ErrorIs(t, err, assert.AnError)
		assert.Nil(t, tokens)
		tokenRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown token", func(t *testing.T) {
		tokenRepo := new(testutil.MockRefreshTokenRepository)
		tokenRepo.On("FindByToken", mock.Anything, "bogus").Return(nil, repository.ErrTokenExpired)

		svc := newAuthService(new(testutil.MockUserRepository), tokenRepo, testutil.AllowAllThrottle())
		_, err := svc.RefreshToken(context.Background(), "bogus")
		assert.ErrorIs(t, err, service.ErrInvalidToken)
	})
}

func TestAuthService_Logout(t *testing.T) {
	tokenRepo := new(testutil.MockRefreshTokenRepository)
	tokenRepo.On("RevokeToken", mock.Anything, "live").Return(nil)
	tokenRepo.On("RevokeToken", mock.Anything, "gone").Return(repository.ErrTokenNotFound)

	svc := newAuthService(new(testutil.MockUserRepository), tokenRepo, testutil.AllowAllThrottle())
	assert.NoError(t, svc.Logout(context.Background(), "live"))
	assert.ErrorIs(t, svc.Logout(context.Background(), "gone"), repository.ErrTokenNotFound)
}

func TestAuthService_ResetPassword(t *testing.T) {
	t.Run("updates hash and revokes sessions", func(t *testing.T) {
		userRepo := new(testutil.MockUserRepository)
		tokenRepo := new(testutil.MockRefreshTokenRepository)
		userRepo.On("FindByEmail", mock.Anything, "user@example.com").Return(&models.User{ID: 5}, nil)
		userRepo.On("UpdatePassword", mock.Anything, uint(5), mock.MatchedBy(func(hash string) bool {
			return bcrypt.CompareHashAndPassword([]byte(hash), []byte("brand-new")) == nil
		})).Return(nil)
		tokenRepo.On("RevokeAllUserTokens", mock.Anything, uint(5)).Return(nil)

		svc := newAuthService(userRepo, tokenRepo, testutil.AllowAllThrottle())
		require.NoError(t, svc.ResetPassword(context.Background(), "USER@example.com", "brand-new"))

		userRepo.AssertExpectations(t)
		tokenRepo.AssertExpectations(t)
	})

	t.Run("unknown user", func(t *testing.T) {
		userRepo := new(testutil.MockUserRepository)
		userRepo.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, repository.ErrUserNotFound)

		svc := newAuthService(userRepo, new(testutil.MockRefreshTokenRepository), testutil.AllowAllThrottle())
		err := svc.ResetPassword(context.Background(), "nobody@example.com", "brand-new")
		assert.ErrorIs(t, err, repository.ErrUserNotFound)
	})

	t.Run("short password", func(t *testing.T) {
		svc := newAuthService(new(testutil.MockUserRepository), new(testutil.MockRefreshTokenRepository), testutil.AllowAllThrottle())
		err := svc.ResetPassword(context.Background(), "user@example.com", "123")
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})
}

func TestAuthService_PurgeExpiredTokens(t *testing.T) {
	tokenRepo := new(testutil.MockRefreshTokenRepository)
	tokenRepo.On("DeleteExpiredTokens", mock.Anything, mock.AnythingOfType("time.Time")).Return(int64(4), nil)

	svc := newAuthService(new(testutil.MockUserRepository), tokenRepo, testutil.AllowAllThrottle())
	n, err := svc.PurgeExpiredTokens(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}
