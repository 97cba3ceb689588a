package handlers

import (
	"context"
	"errors"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/newscluster/telegram-bot/internal/bot/keyboard"
	"github.com/newscluster/telegram-bot/internal/i18n"
	"github.com/newscluster/telegram-bot/internal/repository"
	"github.com/newscluster/telegram-bot/internal/state"
	"github.com/newscluster/telegram-bot/internal/subscriber"
)

// StartHandler begins the preference conversation. Returning users with a
// saved topic get a shortcut menu instead of the full flow.
type StartHandler struct {
	subscribers *subscriber.Service
	fsm         state.StateMachine
	i18n        *i18n.Manager
	log         *slog.Logger
}

// NewStartHandler creates the /start handler.
func NewStartHandler(subscribers *subscriber.Service, fsm state.StateMachine, i18nManager *i18n.Manager, log *slog.Logger) *StartHandler {
	if log == nil {
		log = slog.Default()
	}

	return &StartHandler{
		subscribers: subscribers,
		fsm:         fsm,
		i18n:        i18nManager,
		log:         log,
	}
}

// Handle responds to /start.
func (h *StartHandler) Handle(c telebot.Context) error {
	if c.Sender() == nil {
		return nil
	}

	ctx := context.Background()
	userID := c.Sender().ID
	t := translatorFor(h.i18n, c)

	// Restart the conversation regardless of where the previous one stopped.
	if err := h.fsm.SetState(ctx, userID, state.StateAwaitingTopic, nil); err != nil {
		return err
	}

	sub, err := h.subscribers.Get(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	if sub != nil && sub.Preferences.Topic != "" {
		text := t.Tf("start.welcome_back",
			sub.FirstName,
			sub.Preferences.Topic,
			locationName(sub.Preferences.Location),
			languageName(sub.Preferences.Language),
			autoLabel(t, sub.Preferences.AutoDigest),
		)
		return c.Send(text, markdownOpts(), keyboard.StartMenu(t))
	}

	return c.Send(t.T("start.welcome"), keyboard.RemoveKeyboard())
}
