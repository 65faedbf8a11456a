package search

import (
	"context"
	"fmt"
	"log"

	"citizen-helpdesk-be/internal/repository/unitofwork"
	"citizen-helpdesk-be/pkg/embedding"
	"citizen-helpdesk-be/pkg/rag/retrieval"
)

// VectorSearcher embeds the query and runs a nearest-neighbour search over
// the indexed knowledge-base chunks. It satisfies retrieval.SimilaritySearcher.
type VectorSearcher struct {
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	logger            *log.Logger
}

func NewVectorSearcher(
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	logger *log.Logger,
) *VectorSearcher {
	return &VectorSearcher{
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		logger:            logger,
	}
}

var _ retrieval.SimilaritySearcher = (*VectorSearcher)(nil)

func (s *VectorSearcher) Search(ctx context.Context, query string, k int) ([]retrieval.Hit, error) {
	embeddingRes, err := s.embeddingProvider.Generate(query, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.KbChunkRepository().SearchSimilarWithDistance(ctx, embeddingRes.Embedding.Values, k)
	if err != nil {
		s.logger.Printf("[ERROR] Vector search failed: %v", err)
		return nil, err
	}

	hits := make([]retrieval.Hit, 0, len(scored))
	for _, sc := range scored {
		if sc.Chunk == nil {
			continue
		}
		hit := retrieval.Hit{
			Content:  sc.Chunk.Content,
			Distance: sc.Distance,
		}
		hit.Metadata.ChunkIndex = sc.Chunk.ChunkIndex
		if sc.Document != nil {
			hit.Metadata.SourceName = sc.Document.Title
			hit.Metadata.SourceURL = sc.Document.SourceUrl
			hit.Metadata.Category = sc.Document.Category
			hit.Metadata.TotalChunks = sc.Document.TotalChunks
		}
		hits = append(hits, hit)
	}
	return hits, nil
}
