// Package handlers implements command, callback, and conversation handlers
// for the Telegram bot.
package handlers

import (
	telebot "gopkg.in/telebot.v3"
)

// Handler processes bot commands and conversation messages.
type Handler func(c telebot.Context) error

// CallbackHandler processes inline callback events.
type CallbackHandler func(c telebot.Context) error

// Middleware wraps handlers with additional behavior.
type Middleware func(Handler) Handler
