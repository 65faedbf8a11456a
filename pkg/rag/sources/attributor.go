package sources

import (
	"fmt"

	"citizen-helpdesk-be/pkg/rag"
)

// Attribute derives the citation lists from retrieved passages. Labels are
// "name (url)" when both exist, bare name or url otherwise; chunks with
// neither are skipped. Order follows the original retrieval rank, duplicates
// collapse onto their first occurrence.
func Attribute(chunks []rag.Chunk) (sources []string, sourceUrls []string) {
	sources = []string{}
	sourceUrls = []string{}
	seenLabel := make(map[string]bool)
	seenUrl := make(map[string]bool)

	for _, chunk := range chunks {
		label := Label(chunk)
		if label == "" {
			continue
		}
		if !seenLabel[label] {
			seenLabel[label] = true
			sources = append(sources, label)
		}
		if chunk.SourceURL != "" && !seenUrl[chunk.SourceURL] {
			seenUrl[chunk.SourceURL] = true
			sourceUrls = append(sourceUrls, chunk.SourceURL)
		}
	}

	return sources, sourceUrls
}

// Label renders one chunk's citation label.
func Label(chunk rag.Chunk) string {
	switch {
	case chunk.SourceName != "" && chunk.SourceURL != "":
		return fmt.Sprintf("%s (%s)", chunk.SourceName, chunk.SourceURL)
	case chunk.SourceName != "":
		return chunk.SourceName
	case chunk.SourceURL != "":
		return chunk.SourceURL
	default:
		return ""
	}
}
