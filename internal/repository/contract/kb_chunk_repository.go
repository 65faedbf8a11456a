package contract

import (
	"context"

	"citizen-helpdesk-be/internal/entity"
	"citizen-helpdesk-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredKbChunk pairs a chunk with its parent document and the cosine
// distance reported by the index (0.0 = identical).
type ScoredKbChunk struct {
	Chunk    *entity.KbChunk
	Document *entity.KbDocument
	Distance float64
}

type KbChunkRepository interface {
	Create(ctx context.Context, chunk *entity.KbChunk) error
	CreateBulk(ctx context.Context, chunks []*entity.KbChunk) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.KbChunk, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KbChunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilarWithDistance returns the nearest chunks joined with their
	// parent documents, ordered by cosine distance ascending.
	SearchSimilarWithDistance(ctx context.Context, embedding []float32, limit int) ([]*ScoredKbChunk, error)
}
