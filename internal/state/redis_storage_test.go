package state

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedisStorage_SetAndGet(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	t.Cleanup(cleanup)

	storage := NewRedisStorage(client, testLogger())

	ctx := context.Background()
	userState := &UserState{
		UserID:       123,
		CurrentState: StateAwaitingLocation,
		Context: map[string]interface{}{
			CtxTopic: "artificial intelligence",
		},
	}

	err := storage.SetState(ctx, userState.UserID, userState)
	assert.NoError(t, err)

	result, err := storage.GetState(ctx, userState.UserID)
	assert.NoError(t, err)
	if assert.NotNil(t, result) {
		assert.Equal(t, userState.UserID, result.UserID)
		assert.Equal(t, userState.CurrentState, result.CurrentState)
		assert.Equal(t, userState.Context, result.Context)
		assert.False(t, result.UpdatedAt.IsZero())
	}
}

func TestRedisStorage_GetNotFound(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	t.Cleanup(cleanup)

	storage := NewRedisStorage(client, testLogger())

	state, err := storage.GetState(context.Background(), 999)
	assert.Nil(t, state)
	assert.ErrorIs(t, err, ErrStateNotFound)
}

func TestRedisStorage_ClearState(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	t.Cleanup(cleanup)

	storage := NewRedisStorage(client, testLogger())
	ctx := context.Background()

	userState := &UserState{UserID: 321, CurrentState: StateAwaitingTopic}
	assert.NoError(t, storage.SetState(ctx, userState.UserID, userState))

	assert.NoError(t, storage.ClearState(ctx, userState.UserID))

	result, err := storage.GetState(ctx, userState.UserID)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrStateNotFound)
}

func TestRedisStorage_GetAllStates(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	t.Cleanup(cleanup)

	storage := NewRedisStorage(client, testLogger())
	ctx := context.Background()

	for _, userID := range []int64{1, 2, 3} {
		err := storage.SetState(ctx, userID, &UserState{
			UserID:       userID,
			CurrentState: StateAwaitingLanguage,
		})
		assert.NoError(t, err)
	}

	states, err := storage.GetAllStates(ctx)
	assert.NoError(t, err)
	assert.Len(t, states, 3)

	seen := make(map[int64]bool, len(states))
	for _, st := range states {
		seen[st.UserID] = true
		assert.Equal(t, StateAwaitingLanguage, st.CurrentState)
	}
	assert.Len(t, seen, 3)
}
