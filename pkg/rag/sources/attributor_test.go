package sources

import (
	"reflect"
	"testing"

	"citizen-helpdesk-be/pkg/rag"
)

func TestLabel(t *testing.T) {
	tests := []struct {
		name  string
		chunk rag.Chunk
		want  string
	}{
		{"name and url", rag.Chunk{SourceName: "Passport Renewal", SourceURL: "https://city.example/passport"}, "Passport Renewal (https://city.example/passport)"},
		{"name only", rag.Chunk{SourceName: "Passport Renewal"}, "Passport Renewal"},
		{"url only", rag.Chunk{SourceURL: "https://city.example/passport"}, "https://city.example/passport"},
		{"neither", rag.Chunk{Content: "orphan text"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Label(tt.chunk); got != tt.want {
				t.Errorf("Label() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAttribute(t *testing.T) {
	tests := []struct {
		name     string
		chunks   []rag.Chunk
		want     []string
		wantUrls []string
	}{
		{
			name:     "empty input yields empty non-nil lists",
			chunks:   nil,
			want:     []string{},
			wantUrls: []string{},
		},
		{
			name: "duplicates collapse onto first occurrence",
			chunks: []rag.Chunk{
				{SourceName: "Parking Permits", SourceURL: "https://city.example/parking"},
				{SourceName: "Waste Collection", SourceURL: "https://city.example/waste"},
				{SourceName: "Parking Permits", SourceURL: "https://city.example/parking"},
			},
			want: []string{
				"Parking Permits (https://city.example/parking)",
				"Waste Collection (https://city.example/waste)",
			},
			wantUrls: []string{
				"https://city.example/parking",
				"https://city.example/waste",
			},
		},
		{
			name: "retrieval rank order preserved",
			chunks: []rag.Chunk{
				{SourceName: "Zoning"},
				{SourceName: "Animal Control"},
			},
			want:     []string{"Zoning", "Animal Control"},
			wantUrls: []string{},
		},
		{
			name: "unlabeled chunks skipped",
			chunks: []rag.Chunk{
				{Content: "no metadata at all"},
				{SourceName: "Change of Address"},
			},
			want:     []string{"Change of Address"},
			wantUrls: []string{},
		},
		{
			name: "same url under different names deduped by url",
			chunks: []rag.Chunk{
				{SourceName: "Permits", SourceURL: "https://city.example/permits"},
				{SourceName: "Permits FAQ", SourceURL: "https://city.example/permits"},
			},
			want: []string{
				"Permits (https://city.example/permits)",
				"Permits FAQ (https://city.example/permits)",
			},
			wantUrls: []string{"https://city.example/permits"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sources, urls := Attribute(tt.chunks)
			if sources == nil || urls == nil {
				t.Fatal("Attribute returned a nil slice")
			}
			if !reflect.DeepEqual(sources, tt.want) {
				t.Errorf("sources = %v, want %v", sources, tt.want)
			}
			if !reflect.DeepEqual(urls, tt.wantUrls) {
				t.Errorf("sourceUrls = %v, want %v", urls, tt.wantUrls)
			}
		})
	}
}
