package handlers

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/newscluster/telegram-bot/internal/state"
)

// SessionsCleanupHandler evicts conversation sessions abandoned
// mid-conversation so their users land back in idle.
type SessionsCleanupHandler struct {
	cleaner *state.Cleaner
	log     *slog.Logger
}

// NewSessionsCleanupHandler creates the session eviction handler.
func NewSessionsCleanupHandler(cleaner *state.Cleaner, log *slog.Logger) *SessionsCleanupHandler {
	if log == nil {
		log = slog.Default()
	}

	return &SessionsCleanupHandler{cleaner: cleaner, log: log}
}

// ProcessTask runs one eviction sweep.
func (h *SessionsCleanupHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	h.cleaner.Sweep(ctx)
	h.log.Debug("session cleanup sweep finished")
	return nil
}
