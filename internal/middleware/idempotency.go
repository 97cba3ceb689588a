// Package middleware contains telebot middlewares applied before routing.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/newscluster/telegram-bot/internal/idempotency"
)

// recordTTL keeps processed update records long enough to cover Telegram's
// redelivery window.
const recordTTL = 24 * time.Hour

// Idempotency drops updates that were already processed. Telegram retries
// webhook deliveries and users double-tap inline buttons; both produce the
// same update key.
func Idempotency(mgr idempotency.Manager, log *slog.Logger) telebot.MiddlewareFunc {
	if log == nil {
		log = slog.Default()
	}

	return func(next telebot.HandlerFunc) telebot.HandlerFunc {
		return func(c telebot.Context) error {
			key := updateKey(c)
			if key == "" {
				return next(c)
			}

			result, err := mgr.Execute(context.Background(), key, recordTTL, func(ctx context.Context) (interface{}, error) {
				return "handled", next(c)
			})
			if err != nil {
				if errors.Is(err, idempotency.ErrInProgress) {
					log.Info("duplicate update dropped while in progress", slog.String("key", key))
					return nil
				}
				return err
			}

			if result != nil && result.FromCache {
				log.Info("duplicate update replayed from cache", slog.String("key", key))
			}

			return nil
		}
	}
}

func updateKey(c telebot.Context) string {
	if c == nil || c.Sender() == nil {
		return ""
	}

	if callback := c.Callback(); callback != nil {
		return idempotency.KeyFromCallback(c.Sender().ID, callback.ID)
	}

	if message := c.Message(); message != nil && message.Chat != nil {
		return idempotency.KeyFromMessage(message.Chat.ID, message.ID)
	}

	return ""
}
