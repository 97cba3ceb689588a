package handlers

import (
	"context"
	"log/slog"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/newscluster/telegram-bot/internal/bot/keyboard"
	"github.com/newscluster/telegram-bot/internal/domain"
	"github.com/newscluster/telegram-bot/internal/i18n"
	"github.com/newscluster/telegram-bot/internal/news"
	"github.com/newscluster/telegram-bot/internal/state"
	"github.com/newscluster/telegram-bot/internal/subscriber"
)

// ConversationHandler drives the topic, location, language, and daily
// digest steps of the preference flow.
type ConversationHandler struct {
	subscribers *subscriber.Service
	news        *news.Service
	fsm         state.StateMachine
	i18n        *i18n.Manager
	log         *slog.Logger
}

// NewConversationHandler creates the conversation state handlers.
func NewConversationHandler(
	subscribers *subscriber.Service,
	newsService *news.Service,
	fsm state.StateMachine,
	i18nManager *i18n.Manager,
	log *slog.Logger,
) *ConversationHandler {
	if log == nil {
		log = slog.Default()
	}

	return &ConversationHandler{
		subscribers: subscribers,
		news:        newsService,
		fsm:         fsm,
		i18n:        i18nManager,
		log:         log,
	}
}

// HandleTopic stores the entered topic and asks for a location.
func (h *ConversationHandler) HandleTopic(c telebot.Context) error {
	if c.Sender() == nil {
		return nil
	}

	ctx := context.Background()
	t := translatorFor(h.i18n, c)

	topic := strings.TrimSpace(c.Text())
	if topic == "" {
		return c.Send(t.T("common.unknown_input"))
	}

	err := h.fsm.TransitionTo(ctx, c.Sender().ID, state.StateAwaitingLocation, map[string]interface{}{
		state.CtxTopic: topic,
	})
	if err != nil {
		return err
	}

	return c.Send(t.Tf("conversation.ask_location", topic), markdownOpts(), keyboard.LocationKeyboard(t))
}

// HandleLocation resolves the chosen location and asks for a language.
func (h *ConversationHandler) HandleLocation(c telebot.Context) error {
	if c.Sender() == nil {
		return nil
	}

	ctx := context.Background()
	t := translatorFor(h.i18n, c)
	text := strings.TrimSpace(c.Text())

	code := ""
	switch {
	case text == t.T("conversation.skip_location"):
		code = domain.DefaultLocation
	default:
		resolved, ok := domain.LocationCode(text)
		if !ok {
			return c.Send(t.T("common.unknown_input"), keyboard.LocationKeyboard(t))
		}
		code = resolved
	}

	err := h.fsm.TransitionTo(ctx, c.Sender().ID, state.StateAwaitingLanguage, map[string]interface{}{
		state.CtxLocation: code,
	})
	if err != nil {
		return err
	}

	return c.Send(t.Tf("conversation.ask_language", locationName(code)), markdownOpts(), keyboard.LanguageKeyboard(t))
}

// HandleLanguage resolves the chosen language and asks about daily digests.
func (h *ConversationHandler) HandleLanguage(c telebot.Context) error {
	if c.Sender() == nil {
		return nil
	}

	ctx := context.Background()
	t := translatorFor(h.i18n, c)
	text := strings.TrimSpace(c.Text())

	code := ""
	switch {
	case text == t.T("conversation.skip_language"):
		code = domain.DefaultLanguage
	default:
		resolved, ok := domain.LanguageCode(text)
		if !ok {
			return c.Send(t.T("common.unknown_input"), keyboard.LanguageKeyboard(t))
		}
		code = resolved
	}

	err := h.fsm.TransitionTo(ctx, c.Sender().ID, state.StateAwaitingAuto, map[string]interface{}{
		state.CtxLanguage: code,
	})
	if err != nil {
		return err
	}

	return c.Send(t.Tf("conversation.ask_automatic", languageName(code)), markdownOpts(), keyboard.AutomaticKeyboard(t))
}

// HandleAutomatic finishes the flow: saves preferences and runs the first
// digest immediately.
func (h *ConversationHandler) HandleAutomatic(c telebot.Context) error {
	if c.Sender() == nil {
		return nil
	}

	ctx := context.Background()
	userID := c.Sender().ID
	t := translatorFor(h.i18n, c)
	text := strings.TrimSpace(c.Text())

	var autoDigest bool
	switch text {
	case t.T("conversation.automatic_yes"):
		autoDigest = true
	case t.T("conversation.automatic_no"):
		autoDigest = false
	default:
		return c.Send(t.T("common.unknown_input"), keyboard.AutomaticKeyboard(t))
	}

	prefs, err := h.collectDraft(ctx, userID)
	if err != nil {
		return err
	}
	prefs.AutoDigest = autoDigest

	if err := h.subscribers.SavePreferences(ctx, userID, prefs); err != nil {
		return err
	}

	if err := h.fsm.TransitionTo(ctx, userID, state.StateIdle, nil); err != nil {
		return err
	}

	note := ""
	if autoDigest {
		note = t.T("conversation.saved_daily_note")
	}
	if err := c.Send(t.Tf("conversation.saved", note), keyboard.RemoveKeyboard()); err != nil {
		return err
	}

	if err := h.news.Deliver(ctx, c.Chat().ID, prefs); err != nil {
		return err
	}

	return c.Send(t.T("conversation.done"))
}

// collectDraft assembles preferences from the drafts gathered across the
// conversation, applying defaults for skipped steps.
func (h *ConversationHandler) collectDraft(ctx context.Context, userID int64) (domain.Preferences, error) {
	prefs := domain.DefaultPreferences()

	userState, err := h.fsm.GetState(ctx, userID)
	if err != nil {
		return prefs, err
	}

	if topic, ok := userState.ContextString(state.CtxTopic); ok {
		prefs.Topic = topic
	}
	if location, ok := userState.ContextString(state.CtxLocation); ok {
		prefs.Location = location
	}
	if language, ok := userState.ContextString(state.CtxLanguage); ok {
		prefs.Language = language
	}

	return prefs, nil
}
