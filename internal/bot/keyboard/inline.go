package keyboard

import (
	telebot "gopkg.in/telebot.v3"

	"github.com/newscluster/telegram-bot/internal/i18n"
)

// Callback uniques shared between keyboards and the router.
const (
	CallbackUseSaved    = "use_saved"
	CallbackUpdatePrefs = "update_prefs"
	CallbackToggleAuto  = "toggle_auto"
)

// InlineButton is a lightweight inline keyboard button definition used by
// the builder.
type InlineButton struct {
	Text   string
	Unique string // identifier that routes the callback to its handler
	Data   string // payload encoded into callback data
}

// InlineKeyboardBuilder accumulates rows of InlineButton definitions before
// rendering telebot markup.
type InlineKeyboardBuilder struct {
	rows [][]InlineButton
}

// NewInlineKeyboard creates a builder instance.
func NewInlineKeyboard() *InlineKeyboardBuilder {
	return &InlineKeyboardBuilder{rows: make([][]InlineButton, 0)}
}

// AddRow appends a new row of buttons.
func (b *InlineKeyboardBuilder) AddRow(buttons ...InlineButton) *InlineKeyboardBuilder {
	if len(buttons) == 0 {
		return b
	}

	row := make([]InlineButton, len(buttons))
	copy(row, buttons)
	b.rows = append(b.rows, row)
	return b
}

// Build renders telebot markup, encoding each button's callback data.
// Buttons whose payload exceeds the Telegram limit are dropped. The telebot
// Unique field stays empty so callback data travels verbatim and incoming
// callbacks reach the OnCallback router.
func (b *InlineKeyboardBuilder) Build() *telebot.ReplyMarkup {
	inlineKeyboard := make([][]telebot.InlineButton, 0, len(b.rows))
	for _, row := range b.rows {
		rendered := make([]telebot.InlineButton, 0, len(row))
		for _, btn := range row {
			data, err := EncodeCallback(btn.Unique, btn.Data)
			if err != nil {
				continue
			}
			rendered = append(rendered, telebot.InlineButton{
				Text: btn.Text,
				Data: data,
			})
		}
		if len(rendered) > 0 {
			inlineKeyboard = append(inlineKeyboard, rendered)
		}
	}

	return &telebot.ReplyMarkup{InlineKeyboard: inlineKeyboard}
}

// StartMenu offers a returning user their saved preferences or a fresh setup.
func StartMenu(t i18n.Translator) *telebot.ReplyMarkup {
	return NewInlineKeyboard().
		AddRow(InlineButton{Text: lookup(t, "start.use_saved"), Unique: CallbackUseSaved}).
		AddRow(InlineButton{Text: lookup(t, "start.update_prefs"), Unique: CallbackUpdatePrefs}).
		Build()
}

// SettingsMenu shows digest controls for the stored preferences.
func SettingsMenu(t i18n.Translator, autoEnabled bool) *telebot.ReplyMarkup {
	toggleKey := "settings.enable_auto"
	if autoEnabled {
		toggleKey = "settings.disable_auto"
	}

	return NewInlineKeyboard().
		AddRow(InlineButton{Text: lookup(t, toggleKey), Unique: CallbackToggleAuto}).
		AddRow(InlineButton{Text: lookup(t, "settings.update_prefs"), Unique: CallbackUpdatePrefs}).
		AddRow(InlineButton{Text: lookup(t, "settings.get_news"), Unique: CallbackUseSaved}).
		Build()
}
