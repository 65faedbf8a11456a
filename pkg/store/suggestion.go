package store

import (
	"time"

	"github.com/google/uuid"

	"citizen-helpdesk-be/pkg/rag"
)

// SuggestionState is the per-conversation generation state. It is the sole
// piece of shared mutable state in the suggestion subsystem: exactly one live
// instance per conversation, updated under the conversation's lock.
type SuggestionState struct {
	ConversationId string `json:"conversation_id"`

	// CurrentToken supersedes monotonically: issuing a new token immediately
	// invalidates everything generated under the old one.
	CurrentToken uuid.UUID `json:"current_token"`

	// Result is stored keyed by the token it was computed under. It is
	// deliverable iff ResultToken == CurrentToken at the moment of the read,
	// regardless of when it was computed.
	Result      *rag.Result `json:"result,omitempty"`
	ResultToken uuid.UUID   `json:"result_token"`

	LastCustomerMessageAt time.Time `json:"last_customer_message_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}
