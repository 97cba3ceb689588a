package handlers

import (
	telebot "gopkg.in/telebot.v3"

	"github.com/newscluster/telegram-bot/internal/i18n"
)

// HelpHandler lists the available commands.
type HelpHandler struct {
	i18n *i18n.Manager
}

// NewHelpHandler creates the /help handler.
func NewHelpHandler(i18nManager *i18n.Manager) *HelpHandler {
	return &HelpHandler{i18n: i18nManager}
}

// Handle responds to /help.
func (h *HelpHandler) Handle(c telebot.Context) error {
	return c.Send(translatorFor(h.i18n, c).T("help.text"))
}
