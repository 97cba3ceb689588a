package idempotency

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func setupStore(t *testing.T) Store {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestManager_ExecuteOnce(t *testing.T) {
	store := setupStore(t)
	mgr := NewManager(store, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx := context.Background()
	calls := 0

	result, err := mgr.Execute(ctx, "key-1", time.Minute, func(ctx context.Context) (interface{}, error) {
		calls++
		return "done", nil
	})

	assert.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.Equal(t, "done", result.Response)
	assert.Equal(t, 1, calls)
}

func TestManager_ReplaysCompletedResult(t *testing.T) {
	store := setupStore(t)
	mgr := NewManager(store, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx := context.Background()
	calls := 0
	op := func(ctx context.Context) (interface{}, error) {
		calls++
		return map[string]interface{}{"sent": true}, nil
	}

	first, err := mgr.Execute(ctx, "key-2", time.Minute, op)
	assert.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := mgr.Execute(ctx, "key-2", time.Minute, op)
	assert.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, 1, calls)
}

func TestManager_OperationErrorNotCached(t *testing.T) {
	store := setupStore(t)
	mgr := NewManager(store, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx := context.Background()
	attempts := 0

	_, err := mgr.Execute(ctx, "key-3", time.Minute, func(ctx context.Context) (interface{}, error) {
		attempts++
		return nil, errors.New("send failed")
	})
	assert.Error(t, err)

	// a failed operation leaves no record, the retry runs again
	result, err := mgr.Execute(ctx, "key-3", time.Minute, func(ctx context.Context) (interface{}, error) {
		attempts++
		return "recovered", nil
	})
	assert.NoError(t, err)
	assert.Equal(t, "recovered", result.Response)
	assert.Equal(t, 2, attempts)
}

func TestGenerateKey(t *testing.T) {
	a := KeyFromCallback(1, "cb-123")
	b := KeyFromCallback(1, "cb-123")
	c := KeyFromCallback(2, "cb-123")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, KeyFromMessage(1, 5), KeyFromCallback(1, "5"))
}
