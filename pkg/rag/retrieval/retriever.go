package retrieval

import (
	"context"
	"log"

	"citizen-helpdesk-be/pkg/rag"
)

// HitMetadata carries the source attributes indexed alongside each passage.
type HitMetadata struct {
	SourceName  string
	SourceURL   string
	Category    string
	ChunkIndex  int
	TotalChunks int
}

// Hit is one raw similarity-search result. Distance is cosine distance as
// returned by the index; the retriever converts it to a similarity score.
type Hit struct {
	Content  string
	Metadata HitMetadata
	Distance float64
}

// SimilaritySearcher is the external search collaborator contract.
type SimilaritySearcher interface {
	Search(ctx context.Context, query string, k int) ([]Hit, error)
}

// Retriever queries the similarity-search collaborator and maps raw hits to
// passages with similarity scores. Empty results are valid, not an error.
type Retriever struct {
	searcher SimilaritySearcher
	logger   *log.Logger
}

func NewRetriever(searcher SimilaritySearcher, logger *log.Logger) *Retriever {
	return &Retriever{
		searcher: searcher,
		logger:   logger,
	}
}

// Retrieve returns the top-k passages for the query. On collaborator failure
// it returns an empty slice together with the error so the caller can mark
// the stage failed in the trace and still proceed.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]rag.Chunk, error) {
	hits, err := r.searcher.Search(ctx, query, k)
	if err != nil {
		r.logger.Printf("[RETRIEVE] Search failed for query %q: %v", query, err)
		return []rag.Chunk{}, err
	}

	chunks := make([]rag.Chunk, 0, len(hits))
	for i, hit := range hits {
		chunks = append(chunks, rag.Chunk{
			Content:     hit.Content,
			SourceName:  hit.Metadata.SourceName,
			SourceURL:   hit.Metadata.SourceURL,
			Category:    hit.Metadata.Category,
			Similarity:  distanceToSimilarity(hit.Distance),
			ChunkIndex:  hit.Metadata.ChunkIndex,
			TotalChunks: hit.Metadata.TotalChunks,
		})
		r.logger.Printf("[RETRIEVE] Hit %d: distance=%.4f source=%q", i+1, hit.Distance, hit.Metadata.SourceName)
	}

	return chunks, nil
}

// distanceToSimilarity maps cosine distance to similarity = 1 - distance,
// clamped to [0,1] so malformed index values cannot leak out of range.
func distanceToSimilarity(distance float64) float64 {
	s := 1 - distance
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
