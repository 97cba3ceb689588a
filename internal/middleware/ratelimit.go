package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/newscluster/telegram-bot/internal/i18n"
	"github.com/newscluster/telegram-bot/internal/ratelimit"
)

// RateLimit rejects updates from users that exceed the per-user budget.
// Limiter failures fail open so Redis trouble never blocks the bot.
func RateLimit(limiter ratelimit.Limiter, rules *ratelimit.Rules, i18nManager *i18n.Manager, log *slog.Logger) telebot.MiddlewareFunc {
	if log == nil {
		log = slog.Default()
	}

	return func(next telebot.HandlerFunc) telebot.HandlerFunc {
		return func(c telebot.Context) error {
			sender := c.Sender()
			if sender == nil || !rules.Enabled() || rules.IsWhitelisted(sender.ID) {
				return next(c)
			}

			limit, window, err := rules.PerUserLimit()
			if err != nil {
				log.Warn("invalid rate limit rule, skipping check", slog.Any("error", err))
				return next(c)
			}

			key := fmt.Sprintf("user:%d", sender.ID)
			result, err := limiter.Check(context.Background(), key, limit, window)
			if err != nil && !errors.Is(err, ratelimit.ErrLimitExceeded) {
				log.Error("rate limiter check failed, allowing request", slog.Any("error", err))
				return next(c)
			}

			if errors.Is(err, ratelimit.ErrLimitExceeded) || (result != nil && !result.Allowed) {
				retryAfter := int(time.Minute.Seconds())
				if result != nil {
					if secs := int(time.Until(result.ResetAt).Seconds()); secs > 0 {
						retryAfter = secs
					}
				}

				log.Info("rate limit exceeded",
					slog.Int64("user_id", sender.ID),
					slog.Int("retry_after", retryAfter),
				)

				lang := sender.LanguageCode
				return c.Send(i18nManager.Translator(lang).Tf("common.rate_limited", retryAfter))
			}

			return next(c)
		}
	}
}
