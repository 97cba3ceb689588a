package handlers

import (
	telebot "gopkg.in/telebot.v3"

	"github.com/newscluster/telegram-bot/internal/domain"
	"github.com/newscluster/telegram-bot/internal/i18n"
)

// translatorFor picks a translator from the sender's Telegram client
// language, falling back to the catalog default.
func translatorFor(m *i18n.Manager, c telebot.Context) i18n.Translator {
	lang := ""
	if c != nil && c.Sender() != nil {
		lang = c.Sender().LanguageCode
	}
	return m.Translator(lang)
}

// markdownOpts enables legacy Markdown rendering for conversation messages.
func markdownOpts() *telebot.SendOptions {
	return &telebot.SendOptions{ParseMode: telebot.ModeMarkdown}
}

func autoLabel(t i18n.Translator, enabled bool) string {
	if enabled {
		return t.T("common.enabled")
	}
	return t.T("common.disabled")
}

func locationName(code string) string {
	if name, ok := domain.Locations[code]; ok {
		return name
	}
	return code
}

func languageName(code string) string {
	if name, ok := domain.Languages[code]; ok {
		return name
	}
	return code
}
