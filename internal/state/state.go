package state

import "time"

// State represents a conversation state in the preference flow.
type State string

const (
	// StateIdle indicates that the bot is waiting for the next user command.
	StateIdle State = "idle"
	// StateAwaitingTopic indicates that the user is entering a news topic.
	StateAwaitingTopic State = "awaiting_topic"
	// StateAwaitingLocation indicates that the user is choosing a location.
	StateAwaitingLocation State = "awaiting_location"
	// StateAwaitingLanguage indicates that the user is choosing a language.
	StateAwaitingLanguage State = "awaiting_language"
	// StateAwaitingAuto indicates that the user is deciding on daily digests.
	StateAwaitingAuto State = "awaiting_auto"
	// StateError indicates that the session is in an error state and requires recovery.
	StateError State = "error"
)

// Context keys for conversation drafts carried between states.
const (
	CtxTopic    = "topic"
	CtxLocation = "location"
	CtxLanguage = "language"
)

// UserState captures the current conversation state for a Telegram user.
type UserState struct {
	UserID       int64                  `json:"user_id"`
	CurrentState State                  `json:"current_state"`
	Context      map[string]interface{} `json:"context"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// ContextString returns the string draft value stored under key, if any.
func (s *UserState) ContextString(key string) (string, bool) {
	if s == nil || s.Context == nil {
		return "", false
	}

	value, ok := s.Context[key].(string)
	return value, ok
}
