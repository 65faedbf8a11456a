package dto

import (
	"time"

	"citizen-helpdesk-be/pkg/rag"

	"github.com/google/uuid"
)

type CustomerMessageRequest struct {
	Message string `json:"message" validate:"required"`
}

type CustomerMessageResponse struct {
	ConversationId uuid.UUID `json:"conversation_id"`
	MessageId      uuid.UUID `json:"message_id"`
	Accepted       bool      `json:"accepted"`
}

type AgentMessageRequest struct {
	Message string `json:"message" validate:"required"`
}

type AgentMessageResponse struct {
	ConversationId uuid.UUID `json:"conversation_id"`
	MessageId      uuid.UUID `json:"message_id"`
}

// HistoryTurnDTO is one question/answer pair from the transcript.
type HistoryTurnDTO struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type GetHistoryResponse struct {
	ConversationId uuid.UUID        `json:"conversation_id"`
	Turns          []HistoryTurnDTO `json:"turns"`
}

type GenerateAnswerRequest struct {
	ConversationId uuid.UUID        `json:"conversation_id,omitempty"`
	Question       string           `json:"question" validate:"required"`
	History        []HistoryTurnDTO `json:"history,omitempty"`
}

type GenerateAnswerResponse struct {
	Answer       string            `json:"answer"`
	Sources      []string          `json:"sources"`
	SourceUrls   []string          `json:"source_urls"`
	ContextsUsed int               `json:"contexts_used"`
	Outcome      string            `json:"outcome"`
	Trace        []rag.TraceRecord `json:"trace,omitempty"`
}

type SuggestionResponse struct {
	ConversationId uuid.UUID         `json:"conversation_id"`
	Suggestion     string            `json:"suggestion"`
	Sources        []string          `json:"sources"`
	SourceUrls     []string          `json:"source_urls"`
	ContextsUsed   int               `json:"contexts_used"`
	Outcome        string            `json:"outcome"`
	GeneratedAt    time.Time         `json:"generated_at"`
	Trace          []rag.TraceRecord `json:"trace,omitempty"`
}

type SetModeRequest struct {
	Mode string `json:"mode" validate:"required,oneof=hitl autopilot off"`
}

type GetModeResponse struct {
	Mode string `json:"mode"`
}
