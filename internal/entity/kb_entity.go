package entity

import (
	"time"

	"github.com/google/uuid"
)

// KbDocument is one ingested knowledge-base source. Ingestion itself happens
// outside this service; we only read what the uploader indexed.
type KbDocument struct {
	Id          uuid.UUID
	Title       string
	SourceUrl   string
	Category    string
	TotalChunks int
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
	IsDeleted   bool
}

// KbChunk is an indexed segment of a document with its embedding.
type KbChunk struct {
	Id             uuid.UUID
	DocumentId     uuid.UUID
	Content        string
	EmbeddingValue []float32
	ChunkIndex     int
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}
