package events

import (
	"time"

	"github.com/google/uuid"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "SUGGESTION_READY").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent helps embed common logic if needed,
// strictly creating valid implementations is preferred though.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Suggestion lifecycle event types, consumed by the agent dashboard.
const (
	TypeSuggestionReady      = "SUGGESTION_READY"
	TypeSuggestionSuperseded = "SUGGESTION_SUPERSEDED"
	TypeModeChanged          = "MODE_CHANGED"
)

func NewSuggestionReadyEvent(conversationId, token uuid.UUID, outcome string) Event {
	return BaseEvent{
		Type: TypeSuggestionReady,
		Data: map[string]interface{}{
			"conversation_id": conversationId.String(),
			"token":           token.String(),
			"outcome":         outcome,
		},
		OccurredAt: time.Now(),
	}
}

func NewSuggestionSupersededEvent(conversationId, token uuid.UUID) Event {
	return BaseEvent{
		Type: TypeSuggestionSuperseded,
		Data: map[string]interface{}{
			"conversation_id": conversationId.String(),
			"token":           token.String(),
		},
		OccurredAt: time.Now(),
	}
}

func NewModeChangedEvent(oldMode, newMode string) Event {
	return BaseEvent{
		Type: TypeModeChanged,
		Data: map[string]interface{}{
			"old_mode": oldMode,
			"new_mode": newMode,
		},
		OccurredAt: time.Now(),
	}
}
