package pdf

import (
	"fmt"

	"github.com/deckgen/deckgen/internal/book"
)

const (
	// DefaultPagesPerChunk is the window size for fallback chunking.
	DefaultPagesPerChunk = 10

	// chunkConfidence marks chunked sections as structure-free.
	chunkConfidence = 0.20
)

// chunkWarning accompanies every chunked result so downstream consumers
// know the boundaries carry no structural meaning.
const chunkWarning = "No document structure detected. Using page-based chunking."

// chunkByPages splits the document into consecutive fixed-size page
// windows. It carries no structural signal and cannot fail for any
// document with at least one page, which makes it the cascade's
// unconditional fallback.
func chunkByPages(totalPages, pagesPerChunk int) *book.DetectionResult {
	if pagesPerChunk <= 0 {
		pagesPerChunk = DefaultPagesPerChunk
	}

	var sections []book.Section
	chunk := 1
	for start := 0; start < totalPages; start += pagesPerChunk {
		end := start + pagesPerChunk
		if end > totalPages {
			end = totalPages
		}
		sections = append(sections, book.Section{
			Title:      fmt.Sprintf("Section %d (Pages %d-%d)", chunk, start+1, end),
			PageStart:  book.IntPtr(start),
			PageEnd:    book.IntPtr(end - 1),
			Level:      1,
			Confidence: chunkConfidence,
		})
		chunk++
	}

	return &book.DetectionResult{
		Sections:   sections,
		Method:     book.MethodPDFPageChunks,
		Confidence: chunkConfidence,
		Warnings:   []string{chunkWarning},
	}
}
