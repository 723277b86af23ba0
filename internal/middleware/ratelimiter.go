package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nightstay/backend-go/internal/config"
)

// RateLimiter throttles failed logins per email using Redis
type RateLimiter interface {
	// Allow reports whether another login attempt is permitted for key.
	// On Redis errors it allows the attempt and returns the error.
	Allow(ctx context.Context, key string) (bool, error)

	// RecordFailure counts a failed attempt and (re)starts the lockout window
	RecordFailure(ctx context.Context, key string) error

	// Reset forgets the failures of key after a successful login
	Reset(ctx context.Context, key string) error

	// Close closes the Redis connection
	Close() error
}

type redisRateLimiter struct {
	client      *redis.Client
	maxAttempts int64
	window      time.Duration
	logger      *slog.Logger
}

// NewRateLimiter creates a new Redis-based login limiter
func NewRateLimiter(cfg *config.Config, logger *slog.Logger) (RateLimiter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       int(cfg.RedisDB),
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		logger.Error("❌ [RateLimiter] Failed to connect to Redis", "error", err)
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("✅ [RateLimiter] Connected to Redis",
		"host", cfg.RedisHost,
		"port", cfg.RedisPort,
	)

	return NewRateLimiterWithClient(client, cfg, logger), nil
}

// NewRateLimiterWithClient builds the limiter on an existing client
func NewRateLimiterWithClient(client *redis.Client, cfg *config.Config, logger *slog.Logger) RateLimiter {
	return &redisRateLimiter{
		client:      client,
		maxAttempts: cfg.MaxLoginAttempts,
		window:      time.Duration(cfg.LoginLockoutWindow) * time.Second,
		logger:      logger,
	}
}

// loginKey generates the Redis key for failed login counts
// Format: rate:login:{email}
func loginKey(key string) string {
	return "rate:login:" + strings.ToLower(key)
}

func (r *redisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	// A limit of 0 or less disables throttling
	if r.maxAttempts <= 0 {
		return true, nil
	}

	count, err := r.client.Get(ctx, loginKey(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return true, nil
	}
	if err != nil {
		r.logger.Error("❌ [RateLimiter] Failed to get login failures", "error", err)
		// On error, allow the request but log it
		return true, err
	}

	return count < r.maxAttempts, nil
}

func (r *redisRateLimiter) RecordFailure(ctx context.Context, key string) error {
	if r.maxAttempts <= 0 {
		return nil
	}

	k := loginKey(key)
	pipe := r.client.Pipeline()
	pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, r.window)

	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("❌ [RateLimiter] Failed to record login failure", "error", err)
		return err
	}

	return nil
}

func (r *redisRateLimiter) Reset(ctx context.Context, key string) error {
	return r.client.Del(ctx, loginKey(key)).Err()
}

func (r *redisRateLimiter) Close() error {
	return r.client.Close()
}

// NoOpRateLimiter is a rate limiter that always allows requests
// Used when Redis is not available
type NoOpRateLimiter struct {
	logger *slog.Logger
}

// NewNoOpRateLimiter creates a no-op rate limiter
func NewNoOpRateLimiter(logger *slog.Logger) RateLimiter {
	logger.Warn("⚠️ [RateLimiter] Using no-op rate limiter - login throttling is disabled")
	return &NoOpRateLimiter{logger: logger}
}

func (r *NoOpRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return true, nil
}

func (r *NoOpRateLimiter) RecordFailure(ctx context.Context, key string) error {
	return nil
}

func (r *NoOpRateLimiter) Reset(ctx context.Context, key string) error {
	return nil
}

func (r *NoOpRateLimiter) Close() error {
	return nil
}
