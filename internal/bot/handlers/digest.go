package handlers

import (
	"context"
	"errors"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/newscluster/telegram-bot/internal/i18n"
	"github.com/newscluster/telegram-bot/internal/news"
	"github.com/newscluster/telegram-bot/internal/repository"
	"github.com/newscluster/telegram-bot/internal/state"
	"github.com/newscluster/telegram-bot/internal/subscriber"
)

// DigestHandler serves the inline menu callbacks that either reuse the
// saved preferences or restart the conversation.
type DigestHandler struct {
	subscribers *subscriber.Service
	news        *news.Service
	fsm         state.StateMachine
	i18n        *i18n.Manager
	log         *slog.Logger
}

// NewDigestHandler creates the saved-preference callback handlers.
func NewDigestHandler(
	subscribers *subscriber.Service,
	newsService *news.Service,
	fsm state.StateMachine,
	i18nManager *i18n.Manager,
	log *slog.Logger,
) *DigestHandler {
	if log == nil {
		log = slog.Default()
	}

	return &DigestHandler{
		subscribers: subscribers,
		news:        newsService,
		fsm:         fsm,
		i18n:        i18nManager,
		log:         log,
	}
}

// HandleUseSaved fetches news with the stored preferences.
func (h *DigestHandler) HandleUseSaved(c telebot.Context) error {
	if c.Sender() == nil {
		return nil
	}

	ctx := context.Background()
	userID := c.Sender().ID
	t := translatorFor(h.i18n, c)

	if err := c.Respond(&telebot.CallbackResponse{}); err != nil {
		h.log.Warn("failed to acknowledge callback", "error", err)
	}

	sub, err := h.subscribers.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Edit(t.T("settings.none"))
		}
		return err
	}

	if sub.Preferences.Topic == "" {
		return c.Edit(t.T("settings.none"))
	}

	if err := h.fsm.SetState(ctx, userID, state.StateIdle, nil); err != nil {
		h.log.Warn("failed to reset conversation state", "user_id", userID, "error", err)
	}

	if err := c.Edit(t.T("conversation.fetching_saved")); err != nil {
		return err
	}

	if err := h.news.Deliver(ctx, c.Chat().ID, sub.Preferences); err != nil {
		return err
	}

	return c.Send(t.T("conversation.fetch_done"))
}

// HandleUpdatePrefs restarts the preference conversation from the topic step.
func (h *DigestHandler) HandleUpdatePrefs(c telebot.Context) error {
	if c.Sender() == nil {
		return nil
	}

	ctx := context.Background()
	t := translatorFor(h.i18n, c)

	if err := c.Respond(&telebot.CallbackResponse{}); err != nil {
		h.log.Warn("failed to acknowledge callback", "error", err)
	}

	if err := h.fsm.SetState(ctx, c.Sender().ID, state.StateAwaitingTopic, nil); err != nil {
		return err
	}

	return c.Edit(t.T("conversation.ask_topic"))
}
