package contextfmt

import (
	"fmt"
	"strings"

	"citizen-helpdesk-be/internal/constant"
	"citizen-helpdesk-be/pkg/rag"
)

const blockSeparator = "\n\n---\n\n"

// Format renders retrieved passages into the context block consumed by the
// answer generator. Pure function: identical input yields byte-identical
// output, no timestamps or randomness.
//
// An empty chunk list produces the fixed no-documents marker so the model is
// told explicitly to answer from no grounding rather than invent one.
func Format(chunks []rag.Chunk) string {
	if len(chunks) == 0 {
		return constant.NoDocumentsMarker
	}

	blocks := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		blocks = append(blocks, formatChunk(chunk))
	}

	return strings.Join(blocks, blockSeparator)
}

func formatChunk(chunk rag.Chunk) string {
	var b strings.Builder

	title := chunk.SourceName
	if title == "" {
		title = "Untitled document"
	}
	b.WriteString(fmt.Sprintf("### %s", title))
	if pos := positionAnnotation(chunk); pos != "" {
		b.WriteString(fmt.Sprintf(" (%s)", pos))
	}
	b.WriteString("\n")

	if meta := metadataLine(chunk); meta != "" {
		b.WriteString(meta)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(chunk.Content)

	return b.String()
}

func metadataLine(chunk rag.Chunk) string {
	var parts []string
	if chunk.SourceURL != "" {
		parts = append(parts, fmt.Sprintf("Source: %s", chunk.SourceURL))
	}
	if chunk.Category != "" {
		parts = append(parts, fmt.Sprintf("Category: %s", chunk.Category))
	}
	return strings.Join(parts, " | ")
}

// positionAnnotation labels where a chunk sits inside a multi-chunk document:
// "start" for the first, "end" for the last, "part N" otherwise. Single-chunk
// documents carry no annotation.
func positionAnnotation(chunk rag.Chunk) string {
	if chunk.TotalChunks <= 1 {
		return ""
	}
	switch chunk.ChunkIndex {
	case 0:
		return "start"
	case chunk.TotalChunks - 1:
		return "end"
	default:
		return fmt.Sprintf("part %d", chunk.ChunkIndex+1)
	}
}
