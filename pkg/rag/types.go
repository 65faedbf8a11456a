package rag

import (
	"time"

	"github.com/google/uuid"
)

// Turn is one completed (question, answer) exchange in a conversation.
// Order matters: the most recent turn is last.
type Turn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Chunk is a retrieved knowledge-base passage with its source metadata.
// Chunks are produced fresh per query and never cached across requests.
type Chunk struct {
	Content     string  `json:"content"`
	SourceName  string  `json:"source_name"`
	SourceURL   string  `json:"source_url,omitempty"`
	Category    string  `json:"category,omitempty"`
	Similarity  float64 `json:"similarity"` // 1 - cosine distance, clamped to [0,1]
	ChunkIndex  int     `json:"chunk_index"`
	TotalChunks int     `json:"total_chunks"`
}

// Request is a single answer-generation request. It is created once per
// triggering event and never mutated; a later customer message produces a
// new Request with a new token, not an update of an in-flight one.
type Request struct {
	Token          uuid.UUID
	ConversationId uuid.UUID
	Question       string
	History        []Turn
	CreatedAt      time.Time
}

type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeDegraded Outcome = "degraded"
)

// Result is the fully populated outcome of one pipeline run. The answer is
// never nil or partial: degraded runs carry the fallback answer instead.
type Result struct {
	Token          uuid.UUID     `json:"token"`
	ConversationId uuid.UUID     `json:"conversation_id"`
	Answer         string        `json:"answer"`
	Sources        []string      `json:"sources"`
	SourceUrls     []string      `json:"source_urls"`
	ContextsUsed   int           `json:"contexts_used"`
	Outcome        Outcome       `json:"outcome"`
	Trace          []TraceRecord `json:"trace"`
	CreatedAt      time.Time     `json:"created_at"`
}

// TraceRecord describes one attempted pipeline stage. The field names are a
// stable contract consumed by the operator debug viewer; renaming them needs
// a compatibility note.
type TraceRecord struct {
	Stage          string  `json:"stage"`
	Action         string  `json:"action"`
	Model          string  `json:"model,omitempty"`
	Temperature    float64 `json:"temperature,omitempty"`
	ResponseLength int     `json:"response_length,omitempty"`
	Error          string  `json:"error,omitempty"`
}
