package ratelimit_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"resumebuilder/internal/apperrors"
	"resumebuilder/internal/ratelimit"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeys(t *testing.T) {
	block, last, count := ratelimit.Keys("+1234567890")
	assert.Equal(t, "otp:block:+1234567890", block)
	assert.Equal(t, "otp:last:+1234567890", last)
	assert.Equal(t, "otp:count:+1234567890", count)
}

func TestNoop(t *testing.T) {
	var limiter ratelimit.Limiter = ratelimit.Noop{}
	for i := 0; i < 10; i++ {
		assert.NoError(t, limiter.Allow(context.Background(), "+1234567890"))
	}
}

// TestRedisLimiter runs against a real server when REDIS_URL is set.
func TestRedisLimiter(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	ctx := context.Background()
	rdb, err := ratelimit.NewRedisClient(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { rdb.Close() })

	key := "test-" + uuid.NewString()
	t.Cleanup(func() {
		for _, k := range []string{key, key + "-cooldown"} {
			block, last, count := ratelimit.Keys(k)
			rdb.Del(ctx, block, last, count)
		}
	})

	t.Run("cooldown", func(t *testing.T) {
		limiter := ratelimit.NewRedisLimiter(rdb, ratelimit.Config{Cooldown: time.Minute, Window: time.Minute, MaxPerWindow: 5})
		require.NoError(t, limiter.Allow(ctx, key+"-cooldown"))
		err := limiter.Allow(ctx, key+"-cooldown")
		assert.True(t, errors.Is(err, apperrors.ErrTooManyRequests))
	})

	t.Run("window", func(t *testing.T) {
		limiter := ratelimit.NewRedisLimiter(rdb, ratelimit.Config{Window: time.Minute, MaxPerWindow: 2})
		require.NoError(t, limiter.Allow(ctx, key))
		require.NoError(t, limiter.Allow(ctx, key))
		err := limiter.Allow(ctx, key)
		assert.True(t, errors.Is(err, apperrors.ErrTooManyRequests))

		// Blocked from now on
		err = limiter.Allow(ctx, key)
		assert.True(t, errors.Is(err, apperrors.ErrTooManyRequests))
	})
}

func TestNewRedisClient_InvalidURL(t *testing.T) {
	_, err := ratelimit.NewRedisClient(context.Background(), "not-a-redis-url")
	assert.Error(t, err)
}
