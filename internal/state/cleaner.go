package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const stateScanBatchCount = 100

// Cleaner removes abandoned conversation sessions from Redis.
// Redis TTL already bounds session lifetime; the cleaner evicts earlier so
// that a user who walked away mid-conversation lands back in idle sooner.
type Cleaner struct {
	redisClient *redis.Client
	storage     Storage
	log         *slog.Logger
	ttl         time.Duration
}

// NewCleaner constructs a Cleaner instance.
func NewCleaner(redisClient *redis.Client, storage Storage, log *slog.Logger, ttl time.Duration) *Cleaner {
	if log == nil {
		log = slog.Default()
	}

	return &Cleaner{
		redisClient: redisClient,
		storage:     storage,
		log:         log,
		ttl:         ttl,
	}
}

// Sweep runs one cleanup pass, clearing non-idle sessions whose last
// update is older than the TTL.
func (c *Cleaner) Sweep(ctx context.Context) {
	if c == nil || c.redisClient == nil || c.storage == nil {
		return
	}

	c.cleanup(ctx)
}

func (c *Cleaner) cleanup(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	var cursor uint64
	for {
		keys, nextCursor, err := c.redisClient.Scan(ctx, cursor, userStateScanPattern, stateScanBatchCount).Result()
		if err != nil {
			c.log.Error("session cleaner scan failed", slog.Any("error", err))
			return
		}

		for _, key := range keys {
			userID, err := extractUserID(key)
			if err != nil {
				c.log.Warn("session cleaner unable to parse user id", slog.String("key", key), slog.Any("error", err))
				continue
			}

			userState, err := c.storage.GetState(ctx, userID)
			if err != nil {
				if !errors.Is(err, ErrStateNotFound) {
					c.log.Error("session cleaner failed to load state", slog.Int64("user_id", userID), slog.Any("error", err))
				}
				continue
			}

			if userState == nil || userState.CurrentState == StateIdle {
				continue
			}

			if time.Since(userState.UpdatedAt) > c.ttl {
				if err := c.storage.ClearState(ctx, userID); err != nil {
					c.log.Error("session cleaner failed to clear state", slog.Int64("user_id", userID), slog.Any("error", err))
					continue
				}
				c.log.Info("stale session cleared", slog.Int64("user_id", userID), slog.String("state", string(userState.CurrentState)))
			}
		}

		if ctx.Err() != nil || nextCursor == 0 {
			return
		}
		cursor = nextCursor
	}
}

func extractUserID(key string) (int64, error) {
	segments := strings.Split(key, ":")
	if len(segments) == 0 {
		return 0, fmt.Errorf("invalid key format: %s", key)
	}

	return strconv.ParseInt(segments[len(segments)-1], 10, 64)
}
