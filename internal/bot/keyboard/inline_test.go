package keyboard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInlineKeyboardBuilder(t *testing.T) {
	markup := NewInlineKeyboard().
		AddRow(InlineButton{Text: "A", Unique: "a"}).
		AddRow(
			InlineButton{Text: "B", Unique: "b", Data: "1"},
			InlineButton{Text: "C", Unique: "c", Data: "2"},
		).
		AddRow().
		Build()

	if !assert.Len(t, markup.InlineKeyboard, 2) {
		return
	}

	assert.Equal(t, "a", markup.InlineKeyboard[0][0].Data)
	assert.Equal(t, "b:1", markup.InlineKeyboard[1][0].Data)
	assert.Equal(t, "c:2", markup.InlineKeyboard[1][1].Data)
}

func TestInlineKeyboardBuilder_DropsOversizedButtons(t *testing.T) {
	markup := NewInlineKeyboard().
		AddRow(
			InlineButton{Text: "ok", Unique: "fits"},
			InlineButton{Text: "too big", Unique: strings.Repeat("x", 70)},
		).
		AddRow(InlineButton{Text: "gone", Unique: strings.Repeat("y", 70)}).
		Build()

	if !assert.Len(t, markup.InlineKeyboard, 1) {
		return
	}

	assert.Len(t, markup.InlineKeyboard[0], 1)
	assert.Equal(t, "fits", markup.InlineKeyboard[0][0].Data)
}

func TestStartMenu(t *testing.T) {
	markup := StartMenu(nil)

	if !assert.Len(t, markup.InlineKeyboard, 2) {
		return
	}

	assert.Equal(t, CallbackUseSaved, markup.InlineKeyboard[0][0].Data)
	assert.Equal(t, CallbackUpdatePrefs, markup.InlineKeyboard[1][0].Data)
}

func TestSettingsMenu(t *testing.T) {
	markup := SettingsMenu(nil, true)

	if !assert.Len(t, markup.InlineKeyboard, 3) {
		return
	}

	assert.Equal(t, CallbackToggleAuto, markup.InlineKeyboard[0][0].Data)
	assert.Equal(t, "settings.disable_auto", markup.InlineKeyboard[0][0].Text)

	markup = SettingsMenu(nil, false)
	assert.Equal(t, "settings.enable_auto", markup.InlineKeyboard[0][0].Text)
}
