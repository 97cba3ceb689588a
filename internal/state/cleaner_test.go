package state

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCleaner(t *testing.T) (*Cleaner, *RedisStorage, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	storage := NewRedisStorage(client, slog.Default())
	cleaner := NewCleaner(client, storage, slog.Default(), 30*time.Minute)
	return cleaner, storage, client
}

func seedState(t *testing.T, client *redis.Client, userID int64, s State, updatedAt time.Time) {
	t.Helper()

	data, err := json.Marshal(&UserState{
		UserID:       userID,
		CurrentState: s,
		UpdatedAt:    updatedAt,
	})
	require.NoError(t, err)
	require.NoError(t, client.Set(context.Background(), redisUserStateKey(userID), data, time.Hour).Err())
}

func TestCleaner_Sweep(t *testing.T) {
	cleaner, storage, client := setupCleaner(t)
	ctx := context.Background()
	now := time.Now().UTC()

	seedState(t, client, 1, StateAwaitingTopic, now.Add(-time.Hour))
	seedState(t, client, 2, StateAwaitingLanguage, now.Add(-time.Minute))
	seedState(t, client, 3, StateIdle, now.Add(-time.Hour))

	cleaner.Sweep(ctx)

	_, err := storage.GetState(ctx, 1)
	assert.True(t, errors.Is(err, ErrStateNotFound), "stale session should be cleared")

	fresh, err := storage.GetState(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingLanguage, fresh.CurrentState)

	// Idle sessions are left alone regardless of age.
	idle, err := storage.GetState(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, StateIdle, idle.CurrentState)
}
