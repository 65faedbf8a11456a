package dto

import "github.com/google/uuid"

// PublishCustomerMessage is the payload placed on the customer-message topic.
// The consumer picks it up and kicks off suggestion generation.
type PublishCustomerMessage struct {
	ConversationId uuid.UUID `json:"conversation_id"`
	MessageId      uuid.UUID `json:"message_id"`
	Question       string    `json:"question"`
}
