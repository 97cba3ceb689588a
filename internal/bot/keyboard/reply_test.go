package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/newscluster/telegram-bot/internal/domain"
)

func TestLocationKeyboard(t *testing.T) {
	markup := LocationKeyboard(nil)

	assert.True(t, markup.OneTimeKeyboard)
	assert.Len(t, markup.ReplyKeyboard, len(domain.Locations)+1)

	last := markup.ReplyKeyboard[len(markup.ReplyKeyboard)-1]
	assert.Equal(t, "conversation.skip_location", last[0].Text)
}

func TestLanguageKeyboard(t *testing.T) {
	markup := LanguageKeyboard(nil)

	assert.Len(t, markup.ReplyKeyboard, len(domain.Languages)+1)

	seen := make(map[string]bool)
	for _, row := range markup.ReplyKeyboard[:len(markup.ReplyKeyboard)-1] {
		seen[row[0].Text] = true
	}
	for _, name := range domain.LanguageNames() {
		assert.True(t, seen[name], "missing language option %q", name)
	}
}

func TestAutomaticKeyboard(t *testing.T) {
	markup := AutomaticKeyboard(nil)

	if !assert.Len(t, markup.ReplyKeyboard, 2) {
		return
	}
	assert.Equal(t, "conversation.automatic_yes", markup.ReplyKeyboard[0][0].Text)
	assert.Equal(t, "conversation.automatic_no", markup.ReplyKeyboard[1][0].Text)
}

func TestRemoveKeyboard(t *testing.T) {
	assert.True(t, RemoveKeyboard().RemoveKeyboard)
}
