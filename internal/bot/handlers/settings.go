package handlers

import (
	"context"
	"errors"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/newscluster/telegram-bot/internal/bot/keyboard"
	"github.com/newscluster/telegram-bot/internal/i18n"
	"github.com/newscluster/telegram-bot/internal/repository"
	"github.com/newscluster/telegram-bot/internal/subscriber"
)

// SettingsHandler shows stored preferences and toggles the daily digest.
type SettingsHandler struct {
	subscribers *subscriber.Service
	i18n        *i18n.Manager
	log         *slog.Logger
}

// NewSettingsHandler creates the /settings handler.
func NewSettingsHandler(subscribers *subscriber.Service, i18nManager *i18n.Manager, log *slog.Logger) *SettingsHandler {
	if log == nil {
		log = slog.Default()
	}

	return &SettingsHandler{
		subscribers: subscribers,
		i18n:        i18nManager,
		log:         log,
	}
}

// Handle responds to /settings with the preference overview.
func (h *SettingsHandler) Handle(c telebot.Context) error {
	if c.Sender() == nil {
		return nil
	}

	ctx := context.Background()
	t := translatorFor(h.i18n, c)

	sub, err := h.subscribers.Get(ctx, c.Sender().ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Send(t.T("settings.none"))
		}
		return err
	}

	if sub.Preferences.Topic == "" {
		return c.Send(t.T("settings.none"))
	}

	text := t.Tf("settings.overview",
		sub.Preferences.Topic,
		locationName(sub.Preferences.Location),
		languageName(sub.Preferences.Language),
		autoLabel(t, sub.Preferences.AutoDigest),
	)

	return c.Send(text, markdownOpts(), keyboard.SettingsMenu(t, sub.Preferences.AutoDigest))
}

// HandleToggleAuto flips the daily digest flag from the settings menu.
func (h *SettingsHandler) HandleToggleAuto(c telebot.Context) error {
	if c.Sender() == nil {
		return nil
	}

	ctx := context.Background()
	t := translatorFor(h.i18n, c)

	if err := c.Respond(&telebot.CallbackResponse{}); err != nil {
		h.log.Warn("failed to acknowledge callback", "error", err)
	}

	sub, err := h.subscribers.Get(ctx, c.Sender().ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Edit(t.T("settings.none"))
		}
		return err
	}

	if sub.Preferences.Topic == "" {
		return c.Edit(t.T("settings.none"))
	}

	enabled := !sub.Preferences.AutoDigest
	if err := h.subscribers.SetAutoDigest(ctx, sub.ID, enabled); err != nil {
		return err
	}

	confirmKey := "settings.auto_disabled"
	if enabled {
		confirmKey = "settings.auto_enabled"
	}

	return c.Edit(t.T(confirmKey))
}
