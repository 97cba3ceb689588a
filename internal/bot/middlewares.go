package bot

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/newscluster/telegram-bot/internal/bot/handlers"
	"github.com/newscluster/telegram-bot/internal/bot/keyboard"
	"github.com/newscluster/telegram-bot/internal/errors"
	"github.com/newscluster/telegram-bot/internal/repository"
	"github.com/newscluster/telegram-bot/internal/subscriber"
	"github.com/newscluster/telegram-bot/pkg/metrics"
)

// RecoveryMiddleware converts handler panics into logged errors so a single
// bad update cannot kill the poller.
func RecoveryMiddleware(log *slog.Logger) handlers.Middleware {
	return func(next handlers.Handler) handlers.Handler {
		return func(c telebot.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error("handler panic recovered",
						slog.Any("panic", r),
						slog.String("update", updateLabel(c)),
					)
					err = fmt.Errorf("handler panic: %v", r)
				}
			}()

			return next(c)
		}
	}
}

// LoggingMiddleware logs each handled update and records command metrics.
func LoggingMiddleware(log *slog.Logger) handlers.Middleware {
	return func(next handlers.Handler) handlers.Handler {
		return func(c telebot.Context) error {
			started := time.Now()
			label := updateLabel(c)

			err := next(c)

			status := "ok"
			if err != nil {
				status = "error"
			}
			metrics.RecordCommand(label, status, time.Since(started))

			log.Info("update handled",
				slog.String("update", label),
				slog.Int64("user_id", senderID(c)),
				slog.String("status", status),
				slog.Duration("duration", time.Since(started)),
			)

			return err
		}
	}
}

// ErrorHandlingMiddleware maps handler errors to user-facing messages via
// the central error handler.
func ErrorHandlingMiddleware(errHandler *errors.Handler, log *slog.Logger) handlers.Middleware {
	return func(next handlers.Handler) handlers.Handler {
		return func(c telebot.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			message, _ := errHandler.Handle(context.Background(), err)
			if message != "" {
				if sendErr := c.Send(message); sendErr != nil {
					log.Error("failed to deliver error message",
						slog.Int64("user_id", senderID(c)),
						slog.Any("error", sendErr),
					)
				}
			}

			// The error is absorbed here so telebot does not retry the update.
			return nil
		}
	}
}

// ProvisionMiddleware makes sure the sender exists as a subscriber before
// handlers run. Profile fields of known users are refreshed periodically
// through the cache-miss path.
func ProvisionMiddleware(subscribers *subscriber.Service, log *slog.Logger) handlers.Middleware {
	return func(next handlers.Handler) handlers.Handler {
		return func(c telebot.Context) error {
			sender := c.Sender()
			if sender == nil {
				return next(c)
			}

			ctx := context.Background()
			if _, err := subscribers.Get(ctx, sender.ID); err != nil {
				if !stderrors.Is(err, repository.ErrNotFound) {
					return err
				}
				if _, err := subscribers.Provision(ctx, sender); err != nil {
					return err
				}
			}

			return next(c)
		}
	}
}

// LastActiveMiddleware refreshes the sender's activity timestamp without
// blocking the handler.
func LastActiveMiddleware(subscribers *subscriber.Service, log *slog.Logger) handlers.Middleware {
	return func(next handlers.Handler) handlers.Handler {
		return func(c telebot.Context) error {
			if sender := c.Sender(); sender != nil {
				go func(id int64) {
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					if err := subscribers.TouchLastActive(ctx, id); err != nil {
						log.Debug("failed to update last active", slog.Int64("user_id", id), slog.Any("error", err))
					}
				}(sender.ID)
			}

			return next(c)
		}
	}
}

// updateLabel derives a stable metrics label from the update: the command
// text, the callback unique, or a generic message marker.
func updateLabel(c telebot.Context) string {
	if c == nil {
		return "unknown"
	}

	if callback := c.Callback(); callback != nil {
		unique, _, err := keyboard.DecodeCallback(strings.TrimSpace(callback.Data))
		if err == nil && unique != "" {
			return "callback:" + unique
		}
		return "callback"
	}

	text := c.Text()
	if strings.HasPrefix(text, "/") {
		if idx := strings.IndexAny(text, " @"); idx > 0 {
			return text[:idx]
		}
		return text
	}

	return "message"
}

func senderID(c telebot.Context) int64 {
	if c == nil || c.Sender() == nil {
		return 0
	}
	return c.Sender().ID
}
