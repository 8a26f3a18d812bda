package middleware

import (
	"context"
	"errors"
	"time"

	"minesweeper/internal/logger"

	redis "github.com/redis/go-redis/v9"
)

var ErrRedisDisabled = errors.New("redis rate limiter is not configured")

var redisClient *redis.Client

// InitRedisRateLimiter connects the shared Redis client used by RateLimit.
// An empty addr or a failed ping leaves Redis disabled and the limiters
// count in memory instead.
func InitRedisRateLimiter(addr, password string, db int) error {
	redisClient = nil
	if addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return err
	}

	redisClient = client
	logger.Info("redis rate limiter enabled", "addr", addr, "db", db)
	return nil
}

// CloseRedis releases the shared client.
func CloseRedis() {
	if redisClient != nil {
		_ = redisClient.Close()
		redisClient = nil
	}
}

// RedisPing checks the shared client for readiness probes.
func RedisPing(ctx context.Context) error {
	if redisClient == nil {
		return ErrRedisDisabled
	}
	return redisClient.Ping(ctx).Err()
}

// incrWindow bumps a fixed-window counter. INCR and TTL go out in one
// pipeline; a key left without an expiry (first hit, or an earlier EXPIRE
// that failed) gets one before the count is trusted.
func incrWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	if redisClient == nil {
		return 0, ErrRedisDisabled
	}

	pipe := redisClient.Pipeline()
	incr := pipe.Incr(ctx, key)
	ttl := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}

	// TTL reports -1 for a key with no expiry
	if ttl.Val() < 0 {
		if err := redisClient.Expire(ctx, key, window).Err(); err != nil {
			return 0, err
		}
	}
	return incr.Val(), nil
}
