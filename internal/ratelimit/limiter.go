// Package ratelimit throttles OTP requests per mobile number.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"resumebuilder/internal/apperrors"

	"github.com/redis/go-redis/v9"
)

// Limiter decides whether another OTP may be issued for key.
type Limiter interface {
	Allow(ctx context.Context, key string) error
}

// Noop never limits. It is used when redis is not configured.
type Noop struct{}

func (Noop) Allow(context.Context, string) error { return nil }

// Config holds the OTP request policy.
type Config struct {
	Cooldown     time.Duration // minimum gap between two requests
	Window       time.Duration // counting window
	MaxPerWindow int           // requests allowed per window before a block
}

// RedisLimiter enforces Config with a cooldown key, a window counter and a block key.
type RedisLimiter struct {
	rdb *redis.Client
	cfg Config
}

func NewRedisLimiter(rdb *redis.Client, cfg Config) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, cfg: cfg}
}

// NewRedisClient parses a redis:// or rediss:// URL and checks the server is reachable.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) error {
	blockKey, lastKey, countKey := Keys(key)

	if ttl, err := l.rdb.TTL(ctx, blockKey).Result(); err == nil && ttl > 0 {
		return apperrors.TooManyRequests(fmt.Sprintf("too many OTP requests; try again in %d seconds", int(ttl.Seconds())))
	}
	if ttl, err := l.rdb.TTL(ctx, lastKey).Result(); err == nil && ttl > 0 {
		return apperrors.TooManyRequests(fmt.Sprintf("please wait %d seconds before requesting another OTP", int(ttl.Seconds())))
	}

	count, err := l.rdb.Incr(ctx, countKey).Result()
	if err != nil {
		return fmt.Errorf("failed to count otp requests: %w", err)
	}
	if count == 1 {
		if err := l.rdb.Expire(ctx, countKey, l.cfg.Window).Err(); err != nil {
			return fmt.Errorf("failed to start otp window: %w", err)
		}
	}

	if l.cfg.MaxPerWindow > 0 && int(count) > l.cfg.MaxPerWindow {
		block := l.cfg.Window * 3
		if err := l.rdb.Set(ctx, blockKey, "1", block).Err(); err != nil {
			return fmt.Errorf("failed to block otp requests: %w", err)
		}
		return apperrors.TooManyRequests(fmt.Sprintf("too many OTP requests; try again in %d seconds", int(block.Seconds())))
	}

	if l.cfg.Cooldown > 0 {
		if err := l.rdb.Set(ctx, lastKey, "1", l.cfg.Cooldown).Err(); err != nil {
			return fmt.Errorf("failed to set otp cooldown: %w", err)
		}
	}
	return nil
}

// Keys returns the block, cooldown and counter keys for key.
func Keys(key string) (block, last, count string) {
	return "otp:block:" + key, "otp:last:" + key, "otp:count:" + key
}
