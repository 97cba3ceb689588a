package state

// validTransitions contains the permitted non-emergency transitions of the
// preference conversation.
var validTransitions = map[State][]State{
	StateIdle: {
		StateAwaitingTopic,
	},
	StateAwaitingTopic: {
		StateAwaitingLocation,
		StateIdle,
	},
	StateAwaitingLocation: {
		StateAwaitingLanguage,
		StateAwaitingTopic,
	},
	StateAwaitingLanguage: {
		StateAwaitingAuto,
		StateAwaitingLocation,
	},
	StateAwaitingAuto: {
		StateIdle,
	},
}

// IsTransitionAllowed reports whether moving from one state to another is valid.
// Idle and error are always reachable so /cancel and failure recovery work
// from any point in the conversation.
func IsTransitionAllowed(from, to State) bool {
	if to == StateError || to == StateIdle {
		return true
	}

	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}

	for _, state := range allowed {
		if state == to {
			return true
		}
	}

	return false
}
