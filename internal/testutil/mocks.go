package testutil

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/nightstay/backend-go/internal/database/models"
	"github.com/nightstay/backend-go/internal/database/service"
	"github.com/nightstay/backend-go/internal/datekey"
)

// ==================== MOCK USER REPOSITORY ====================

// MockUserRepository implements repository.UserRepository for testing
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

// ==================== MOCK REFRESH TOKEN REPOSITORY ====================

// MockRefreshTokenRepository implements repository.RefreshTokenRepository for testing
type MockRefreshTokenRepository struct {
	mock.Mock
}

func (m *MockRefreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RefreshToken), args.Error(1)
}

func (m *MockRefreshTokenRepository) RevokeToken(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) RevokeAllUserTokens(ctx context.Context, userID uint) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// ==================== MOCK LOCATION REPOSITORY ====================

// MockLocationRepository implements repository.LocationRepository for testing
type MockLocationRepository struct {
	mock.Mock
}

func (m *MockLocationRepository) Create(ctx context.Context, location *models.Location) error {
	args := m.Called(ctx, location)
	return args.Error(0)
}

func (m *MockLocationRepository) FindByIDForOwner(ctx context.Context, ownerID uint, id uuid.UUID) (*models.Location, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Location), args.Error(1)
}

func (m *MockLocationRepository) ListByOwner(ctx context.Context, ownerID uint) ([]models.Location, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Location), args.Error(1)
}

func (m *MockLocationRepository) Update(ctx context.Context, location *models.Location) error {
	args := m.Called(ctx, location)
	return args.Error(0)
}

func (m *MockLocationRepository) DeleteUnused(ctx context.Context, ownerID uint, id uuid.UUID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

// ==================== MOCK SLEEP ENTRY REPOSITORY ====================

// MockSleepEntryRepository implements repository.SleepEntryRepository for testing
type MockSleepEntryRepository struct {
	mock.Mock
}

func (m *MockSleepEntryRepository) Upsert(ctx context.Context, ownerID uint, date string, locationID uuid.UUID) (*models.SleepEntry, error) {
	args := m.Called(ctx, ownerID, date, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SleepEntry), args.Error(1)
}

func (m *MockSleepEntryRepository) FindByDate(ctx context.Context, ownerID uint, date string) (*models.SleepEntry, error) {
	args := m.Called(ctx, ownerID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SleepEntry), args.Error(1)
}

func (m *MockSleepEntryRepository) FindRange(ctx context.Context, ownerID uint, from, to string) ([]models.SleepEntry, error) {
	args := m.Called(ctx, ownerID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SleepEntry), args.Error(1)
}

func (m *MockSleepEntryRepository) Delete(ctx context.Context, ownerID uint, date string) error {
	args := m.Called(ctx, ownerID, date)
	return args.Error(0)
}

func (m *MockSleepEntryRepository) CountByLocation(ctx context.Context, ownerID uint, from, to string) ([]models.LocationNights, error) {
	args := m.Called(ctx, ownerID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LocationNights), args.Error(1)
}

// ==================== MOCK LOGIN THROTTLE ====================

// MockLoginThrottle implements service.LoginThrottle and middleware.RateLimiter for testing
type MockLoginThrottle struct {
	mock.Mock
}

func (m *MockLoginThrottle) Allow(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockLoginThrottle) RecordFailure(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockLoginThrottle) Reset(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockLoginThrottle) Close() error {
	return nil
}

// ==================== MOCK AUTH SERVICE ====================

// MockAuthService implements service.AuthService for testing
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, email, password string) (*models.User, *service.TokenPair, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.User), args.Get(1).(*service.TokenPair), args.Error(2)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*models.User, *service.TokenPair, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.User), args.Get(1).(*service.TokenPair), args.Error(2)
}

func (m *MockAuthService) RefreshToken(ctx context.Context, refreshToken string) (*service.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TokenPair), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, refreshToken string) error {
	args := m.Called(ctx, refreshToken)
	return args.Error(0)
}

func (m *MockAuthService) ValidateAccessToken(tokenString string) (uint, error) {
	args := m.Called(tokenString)
	return args.Get(0).(uint), args.Error(1)
}

func (m *MockAuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) ResetPassword(ctx context.Context, email, password string) error {
	args := m.Called(ctx, email, password)
	return args.Error(0)
}

func (m *MockAuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockAuthService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// ==================== MOCK LOCATION SERVICE ====================

// MockLocationService implements service.LocationService for testing
type MockLocationService struct {
	mock.Mock
}

func (m *MockLocationService) List(ctx context.Context, ownerID uint) ([]models.Location, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Location), args.Error(1)
}

func (m *MockLocationService) Create(ctx context.Context, ownerID uint, name string, color *string) (*models.Location, error) {
	args := m.Called(ctx, ownerID, name, color)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Location), args.Error(1)
}

func (m *MockLocationService) Update(ctx context.Context, ownerID uint, id uuid.UUID, name, color *string) (*models.Location, error) {
	args := m.Called(ctx, ownerID, id, name, color)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Location), args.Error(1)
}

func (m *MockLocationService) Delete(ctx context.Context, ownerID uint, id uuid.UUID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

// ==================== MOCK SLEEP ENTRY SERVICE ====================

// MockSleepEntryService implements service.SleepEntryService for testing
type MockSleepEntryService struct {
	mock.Mock
}

func (m *MockSleepEntryService) UpsertEntry(ctx context.Context, ownerID uint, date string, locationID uuid.UUID) (*models.SleepEntry, error) {
	args := m.Called(ctx, ownerID, date, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SleepEntry), args.Error(1)
}

func (m *MockSleepEntryService) QueryRange(ctx context.Context, ownerID uint, from, to string) ([]models.SleepEntry, error) {
	args := m.Called(ctx, ownerID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SleepEntry), args.Error(1)
}

func (m *MockSleepEntryService) DeleteEntry(ctx context.Context, ownerID uint, date string) (string, error) {
	args := m.Called(ctx, ownerID, date)
	return args.String(0), args.Error(1)
}

// ==================== MOCK STATS SERVICE ====================

// MockStatsService implements service.StatsService for testing
type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) Summarize(ctx context.Context, ownerID uint, from, to string) (*service.Summary, error) {
	args := m.Called(ctx, ownerID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Summary), args.Error(1)
}

func (m *MockStatsService) Presets(now time.Time) []service.Preset {
	args := m.Called(now)
	return args.Get(0).([]service.Preset)
}

func (m *MockStatsService) RangeBack(now time.Time, days int) (datekey.Range, error) {
	args := m.Called(now, days)
	return args.Get(0).(datekey.Range), args.Error(1)
}
