package ratelimit

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/newscluster/telegram-bot/pkg/config"
)

func setupLimiter(t *testing.T) Limiter {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisLimiter(client, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRedisLimiter_AllowsWithinLimit(t *testing.T) {
	limiter := setupLimiter(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		result, err := limiter.Check(ctx, "user:1", 3, time.Minute)
		assert.NoError(t, err)
		assert.True(t, result.Allowed, "request %d should be allowed", i+1)
	}
}

func TestRedisLimiter_RejectsOverLimit(t *testing.T) {
	limiter := setupLimiter(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := limiter.Check(ctx, "user:2", 3, time.Minute)
		assert.NoError(t, err)
	}

	result, err := limiter.Check(ctx, "user:2", 3, time.Minute)
	assert.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, 0, result.Remaining)
}

func TestRedisLimiter_KeysAreIndependent(t *testing.T) {
	limiter := setupLimiter(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := limiter.Check(ctx, "user:3", 3, time.Minute)
		assert.NoError(t, err)
	}

	result, err := limiter.Check(ctx, "user:4", 3, time.Minute)
	assert.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestRedisLimiter_ZeroLimit(t *testing.T) {
	limiter := setupLimiter(t)

	result, err := limiter.Check(context.Background(), "user:5", 0, time.Minute)
	assert.NoError(t, err)
	assert.False(t, result.Allowed)
}

func TestMemoryLimiter(t *testing.T) {
	limiter := NewMemoryLimiter(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		result, err := limiter.Check(ctx, "user:6", 2, time.Minute)
		assert.NoError(t, err)
		assert.True(t, result.Allowed)
	}

	result, err := limiter.Check(ctx, "user:6", 2, time.Minute)
	assert.ErrorIs(t, err, ErrLimitExceeded)
	assert.False(t, result.Allowed)
}

func TestAdaptiveLimiter_FallsBackOnRedisError(t *testing.T) {
	// a closed client makes every primary call fail
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close()
	_ = client.Close()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	primary := NewRedisLimiter(client, log)
	fallback := NewMemoryLimiter(log)
	limiter := NewAdaptiveLimiter(primary, fallback, log)

	// fallback budget is half of 4
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		result, err := limiter.Check(ctx, "user:7", 4, time.Minute)
		assert.NoError(t, err)
		assert.True(t, result.Allowed)
	}

	_, err := limiter.Check(ctx, "user:7", 4, time.Minute)
	assert.ErrorIs(t, err, ErrLimitExceeded)
}

func rulesConfig() config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:   true,
		PerUser:   config.RateLimitRule{Limit: 5, Window: "1m"},
		Whitelist: []int64{99},
	}
}

func TestRules(t *testing.T) {
	rules := NewRules(rulesConfig())

	assert.True(t, rules.Enabled())
	assert.True(t, rules.IsWhitelisted(99))
	assert.False(t, rules.IsWhitelisted(1))

	limit, window, err := rules.PerUserLimit()
	assert.NoError(t, err)
	assert.Equal(t, 5, limit)
	assert.Equal(t, time.Minute, window)
}
