package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nightstay/backend-go/internal/config"
)

// RedisClient wraps the redis client as a small key-value store for UI state,
// such as the remembered calendar month
type RedisClient struct {
	client *redis.Client
	logger *slog.Logger
	ttl    time.Duration
}

// NewRedisClient creates a new Redis client instance
func NewRedisClient(cfg *config.Config, logger *slog.Logger) (*RedisClient, error) {
	logger.Info("🔌 [Redis] Connecting to Redis...",
		"host", cfg.RedisHost,
		"port", cfg.RedisPort,
		"db", cfg.RedisDB,
	)

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
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("✅ [Redis] Redis connection established")

	return NewRedisClientForTesting(client, cfg, logger), nil
}

// NewRedisClientForTesting creates a Redis client with a provided redis.Client (for testing)
func NewRedisClientForTesting(client *redis.Client, cfg *config.Config, logger *slog.Logger) *RedisClient {
	return &RedisClient{
		client: client,
		logger: logger,
		ttl:    time.Duration(cfg.CalendarStateTTL) * time.Second,
	}
}

// Close closes the Redis connection
func (r *RedisClient) Close() error {
	return r.client.Close()
}

func stateKey(key string) string {
	return "ui:state:" + key
}

// Get returns the stored value and whether it was present
func (r *RedisClient) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, stateKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		r.logger.Error("❌ [Redis] Failed to read state", "key", key, "error", err)
		return "", false, err
	}

	r.logger.Debug("📖 [Redis] Read state", "key", key)
	return value, true, nil
}

// Set stores value and refreshes its TTL. A non-positive TTL keeps the key forever.
func (r *RedisClient) Set(ctx context.Context, key, value string) error {
	ttl := r.ttl
	if ttl < 0 {
		ttl = 0
	}

	if err := r.client.Set(ctx, stateKey(key), value, ttl).Err(); err != nil {
		r.logger.Error("❌ [Redis] Failed to write state", "key", key, "error", err)
		return err
	}

	r.logger.Debug("💾 [Redis] Stored state", "key", key, "ttl", ttl)
	return nil
}
