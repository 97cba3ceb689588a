package handlers

import (
	"context"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/newscluster/telegram-bot/internal/bot/keyboard"
	"github.com/newscluster/telegram-bot/internal/i18n"
	"github.com/newscluster/telegram-bot/internal/state"
)

// CancelHandler aborts the current conversation and discards drafts.
type CancelHandler struct {
	fsm  state.StateMachine
	i18n *i18n.Manager
	log  *slog.Logger
}

// NewCancelHandler creates the /cancel handler.
func NewCancelHandler(fsm state.StateMachine, i18nManager *i18n.Manager, log *slog.Logger) *CancelHandler {
	if log == nil {
		log = slog.Default()
	}

	return &CancelHandler{fsm: fsm, i18n: i18nManager, log: log}
}

// Handle responds to /cancel.
func (h *CancelHandler) Handle(c telebot.Context) error {
	if c.Sender() == nil {
		return nil
	}

	t := translatorFor(h.i18n, c)

	if err := h.fsm.ClearState(context.Background(), c.Sender().ID); err != nil {
		h.log.Warn("failed to clear conversation state", "user_id", c.Sender().ID, "error", err)
	}

	return c.Send(t.T("conversation.cancelled"), keyboard.RemoveKeyboard())
}
