package segment

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/specwright/ConstructQA/internal/config"
	"github.com/specwright/ConstructQA/internal/domain/docModel"
	"github.com/specwright/ConstructQA/pkg/logger_i"
)

var logger = logger_i.NewLogger("Segmenter")

// separators ordered from best to worst semantic boundary. The empty string
// stands for a hard character cut.
var separators = []string{"\n\n", "\n", ". ", " "}

// Split breaks text into chunks of at most limit characters, cutting at the
// largest semantic boundary available inside each window. Consecutive chunks
// share exactly overlap characters, so concatenating them with the overlap
// stripped reconstructs the input.
func Split(text string, limit int, overlap int) []string {
	if text == "" {
		return nil
	}
	if limit <= 0 {
		limit = config.ChunkSize
	}
	if overlap < 0 || overlap >= limit {
		overlap = 0
	}
	if len(text) <= limit {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		if len(text)-start <= limit {
			chunks = append(chunks, text[start:])
			break
		}
		window := runeBoundary(text[start:], limit)
		if window == 0 {
			// limit smaller than the next rune; take it whole.
			_, window = utf8.DecodeRuneInString(text[start:])
		}
		end := start + splitPoint(text[start:start+window])
		// A boundary inside the overlap region would stall the walk.
		if end <= start+overlap {
			end = start + window
		}
		chunks = append(chunks, text[start:end])
		start = end - overlap
		// The overlap may begin mid-rune; skip forward to the next rune start.
		for start < len(text) && !utf8.RuneStart(text[start]) {
			start++
		}
	}
	return chunks
}

// runeBoundary returns the largest cut at most max that does not split a
// multi-byte rune.
func runeBoundary(s string, max int) int {
	if max >= len(s) {
		return len(s)
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return max
}

// splitPoint returns the cut offset within window, preferring the last
// occurrence of the best separator and falling back to a hard cut at the
// window edge. The separator stays with the leading chunk.
func splitPoint(window string) int {
	for _, sep := range separators {
		if idx := strings.LastIndex(window, sep); idx > 0 {
			return idx + len(sep)
		}
	}
	return len(window)
}

// PrepareChunks splits every page and wraps the pieces in Chunk metadata.
// ChunkIndex is dense and zero-based within each page.
func PrepareChunks(pages []RawPage, fileName string) []docModel.Chunk {
	var allChunks []docModel.Chunk

	for _, page := range pages {
		stringChunks := Split(page.Content, config.ChunkSize, config.ChunkOverlap)

		for i, text := range stringChunks {
			contentType := docModel.ContentText
			if ContainsStructuredData(text) {
				contentType = docModel.ContentStructured
			}

			allChunks = append(allChunks, docModel.Chunk{
				Id:          uuid.New().String(),
				Text:        text,
				SourceFile:  fileName,
				PageNumber:  page.Number,
				TotalPages:  page.TotalPages,
				ChunkIndex:  i,
				ContentType: contentType,
			})
		}
	}

	return allChunks
}
