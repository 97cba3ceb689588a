// Package keyboard renders the bot's reply and inline keyboards.
package keyboard

import (
	telebot "gopkg.in/telebot.v3"

	"github.com/newscluster/telegram-bot/internal/domain"
	"github.com/newscluster/telegram-bot/internal/i18n"
)

// LocationKeyboard builds a one-time reply keyboard listing supported
// locations, with a skip row defaulting to the US edition.
func LocationKeyboard(t i18n.Translator) *telebot.ReplyMarkup {
	return choiceKeyboard(domain.LocationNames(), lookup(t, "conversation.skip_location"))
}

// LanguageKeyboard builds a one-time reply keyboard listing supported
// languages, with a skip row defaulting to English.
func LanguageKeyboard(t i18n.Translator) *telebot.ReplyMarkup {
	return choiceKeyboard(domain.LanguageNames(), lookup(t, "conversation.skip_language"))
}

// AutomaticKeyboard asks whether daily digests should be sent.
func AutomaticKeyboard(t i18n.Translator) *telebot.ReplyMarkup {
	return choiceKeyboard(nil,
		lookup(t, "conversation.automatic_yes"),
		lookup(t, "conversation.automatic_no"),
	)
}

// RemoveKeyboard clears any reply keyboard from the chat.
func RemoveKeyboard() *telebot.ReplyMarkup {
	return &telebot.ReplyMarkup{RemoveKeyboard: true}
}

func choiceKeyboard(options []string, extra ...string) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{
		ResizeKeyboard:  true,
		OneTimeKeyboard: true,
	}

	rows := make([]telebot.Row, 0, len(options)+len(extra))
	for _, option := range options {
		rows = append(rows, markup.Row(markup.Text(option)))
	}
	for _, option := range extra {
		rows = append(rows, markup.Row(markup.Text(option)))
	}

	markup.Reply(rows...)

	return markup
}

func lookup(t i18n.Translator, key string) string {
	if t == nil {
		return key
	}
	return t.T(key)
}
