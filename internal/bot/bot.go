// Package bot assembles the Telegram transport: the telebot instance, the
// update router, and the handler wiring.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/newscluster/telegram-bot/internal/bot/handlers"
	"github.com/newscluster/telegram-bot/internal/bot/keyboard"
	"github.com/newscluster/telegram-bot/internal/errors"
	"github.com/newscluster/telegram-bot/internal/i18n"
	"github.com/newscluster/telegram-bot/internal/news"
	"github.com/newscluster/telegram-bot/internal/state"
	"github.com/newscluster/telegram-bot/internal/subscriber"
	"github.com/newscluster/telegram-bot/pkg/config"
)

const defaultPollTimeout = 10 * time.Second

// Bot wraps the telebot instance and its routing setup.
type Bot struct {
	tb     *telebot.Bot
	router *Router
	log    *slog.Logger
}

// New creates the Telegram bot transport in long polling or webhook mode.
func New(cfg config.BotConfig, log *slog.Logger) (*Bot, error) {
	if log == nil {
		log = slog.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultPollTimeout
	}

	var poller telebot.Poller
	switch cfg.Mode {
	case "webhook":
		poller = &telebot.Webhook{
			Listen: cfg.WebhookListen,
			Endpoint: &telebot.WebhookEndpoint{
				PublicURL: cfg.WebhookURL,
			},
		}
	default:
		poller = &telebot.LongPoller{Timeout: timeout}
	}

	tb, err := telebot.NewBot(telebot.Settings{
		Token:  cfg.Token,
		Poller: poller,
	})
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &Bot{tb: tb, log: log}, nil
}

// Telebot exposes the underlying telebot instance for health checks.
func (b *Bot) Telebot() *telebot.Bot {
	return b.tb
}

// Sender returns a digest sender backed by this bot.
func (b *Bot) Sender() news.Sender {
	return &TelegramSender{tb: b.tb}
}

// SetupParams carries the services the handler wiring depends on.
type SetupParams struct {
	Subscribers *subscriber.Service
	News        *news.Service
	FSM         state.StateMachine
	I18n        *i18n.Manager
	ErrHandler  *errors.Handler
	// Middlewares are applied at the telebot level, before routing.
	Middlewares []telebot.MiddlewareFunc
}

// Setup wires commands, callbacks, conversation states, and middlewares.
func (b *Bot) Setup(p SetupParams) {
	b.tb.Use(p.Middlewares...)

	dispatcher := NewDispatcher(p.FSM, b.log)
	router := NewRouter(dispatcher, b.log)

	// Logging sits inside error handling so command metrics see the raw
	// handler error before it is converted to a user message.
	router.Use(RecoveryMiddleware(b.log))
	router.Use(ErrorHandlingMiddleware(p.ErrHandler, b.log))
	router.Use(LoggingMiddleware(b.log))
	router.Use(ProvisionMiddleware(p.Subscribers, b.log))
	router.Use(LastActiveMiddleware(p.Subscribers, b.log))

	start := handlers.NewStartHandler(p.Subscribers, p.FSM, p.I18n, b.log)
	conversation := handlers.NewConversationHandler(p.Subscribers, p.News, p.FSM, p.I18n, b.log)
	settings := handlers.NewSettingsHandler(p.Subscribers, p.I18n, b.log)
	digest := handlers.NewDigestHandler(p.Subscribers, p.News, p.FSM, p.I18n, b.log)
	cancel := handlers.NewCancelHandler(p.FSM, p.I18n, b.log)
	help := handlers.NewHelpHandler(p.I18n)

	router.RegisterCommand(CommandStart, start.Handle)
	router.RegisterCommand(CommandSettings, settings.Handle)
	router.RegisterCommand(CommandCancel, cancel.Handle)
	router.RegisterCommand(CommandHelp, help.Handle)

	router.RegisterCallback(keyboard.CallbackUseSaved, digest.HandleUseSaved)
	router.RegisterCallback(keyboard.CallbackUpdatePrefs, digest.HandleUpdatePrefs)
	router.RegisterCallback(keyboard.CallbackToggleAuto, settings.HandleToggleAuto)

	dispatcher.RegisterStateHandler(state.StateAwaitingTopic, conversation.HandleTopic)
	dispatcher.RegisterStateHandler(state.StateAwaitingLocation, conversation.HandleLocation)
	dispatcher.RegisterStateHandler(state.StateAwaitingLanguage, conversation.HandleLanguage)
	dispatcher.RegisterStateHandler(state.StateAwaitingAuto, conversation.HandleAutomatic)

	router.SetDefault(func(c telebot.Context) error {
		t := p.I18n.Translator(senderLanguage(c))
		return c.Send(t.T("common.unknown_input"))
	})

	b.tb.Handle(telebot.OnText, router.Route)
	b.tb.Handle(telebot.OnCallback, router.Route)

	b.router = router
}

// Start begins processing updates. It blocks until Stop is called.
func (b *Bot) Start() {
	b.log.Info("telegram bot started", slog.String("username", b.tb.Me.Username))
	b.tb.Start()
}

// Stop terminates update processing.
func (b *Bot) Stop() {
	b.tb.Stop()
	b.log.Info("telegram bot stopped")
}

// TelegramSender delivers digest messages through the Telegram API.
type TelegramSender struct {
	tb *telebot.Bot
}

// SendMarkdown sends a MarkdownV2 message with link previews disabled so
// digests stay compact.
func (s *TelegramSender) SendMarkdown(ctx context.Context, chatID int64, text string) error {
	_, err := s.tb.Send(&telebot.Chat{ID: chatID}, text, &telebot.SendOptions{
		ParseMode:             telebot.ModeMarkdownV2,
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("send message to chat %d: %w", chatID, err)
	}

	return nil
}

func senderLanguage(c telebot.Context) string {
	if c == nil || c.Sender() == nil {
		return ""
	}
	return c.Sender().LanguageCode
}
