package retrieval

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
)

type fakeSearcher struct {
	hits  []Hit
	err   error
	query string
	k     int
}

func (f *fakeSearcher) Search(ctx context.Context, query string, k int) ([]Hit, error) {
	f.query = query
	f.k = k
	return f.hits, f.err
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestRetrieveMapsHits(t *testing.T) {
	searcher := &fakeSearcher{
		hits: []Hit{
			{
				Content:  "Renewals take ten working days.",
				Distance: 0.25,
				Metadata: HitMetadata{
					SourceName: "Passport Renewal", SourceURL: "https://city.example/passport",
					Category: "documents", ChunkIndex: 1, TotalChunks: 3,
				},
			},
			{Content: "Permits renew annually.", Distance: 0.6, Metadata: HitMetadata{SourceName: "Parking Permits"}},
		},
	}
	r := NewRetriever(searcher, discardLogger())

	chunks, err := r.Retrieve(context.Background(), "passport renewal time", 3)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if searcher.query != "passport renewal time" || searcher.k != 3 {
		t.Errorf("searcher called with (%q, %d), want (passport renewal time, 3)", searcher.query, searcher.k)
	}
	if len(chunks) != 2 {
		t.Fatalf("len(chunks) = %d, want 2", len(chunks))
	}

	first := chunks[0]
	if first.Similarity != 0.75 {
		t.Errorf("Similarity = %v, want 0.75", first.Similarity)
	}
	if first.SourceName != "Passport Renewal" || first.SourceURL != "https://city.example/passport" {
		t.Errorf("source metadata not carried through: %+v", first)
	}
	if first.ChunkIndex != 1 || first.TotalChunks != 3 {
		t.Errorf("chunk position not carried through: index=%d total=%d", first.ChunkIndex, first.TotalChunks)
	}
}

func TestRetrieveSearcherFailure(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("index unreachable")}
	r := NewRetriever(searcher, discardLogger())

	chunks, err := r.Retrieve(context.Background(), "anything", 3)
	if err == nil {
		t.Error("Retrieve() error = nil, want the searcher error")
	}
	if chunks == nil {
		t.Fatal("chunks = nil, want empty slice")
	}
	if len(chunks) != 0 {
		t.Errorf("len(chunks) = %d, want 0", len(chunks))
	}
}

func TestRetrieveEmptyResultIsNotAnError(t *testing.T) {
	r := NewRetriever(&fakeSearcher{hits: []Hit{}}, discardLogger())

	chunks, err := r.Retrieve(context.Background(), "no matches here", 3)
	if err != nil {
		t.Errorf("Retrieve() error = %v, want nil", err)
	}
	if len(chunks) != 0 {
		t.Errorf("len(chunks) = %d, want 0", len(chunks))
	}
}

func TestDistanceToSimilarityClamping(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		want     float64
	}{
		{"typical", 0.25, 0.75},
		{"identical vectors", 0.0, 1.0},
		{"orthogonal", 1.0, 0.0},
		{"negative distance clamps high", -0.2, 1.0},
		{"opposite vectors clamp low", 1.8, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := distanceToSimilarity(tt.distance); got != tt.want {
				t.Errorf("distanceToSimilarity(%v) = %v, want %v", tt.distance, got, tt.want)
			}
		})
	}
}
