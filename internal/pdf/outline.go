package pdf

import (
	"context"
	"strings"

	"github.com/deckgen/deckgen/internal/book"
)

// outlineConfidence is the fixed confidence for author-provided bookmarks.
// Bookmarks map directly to intended structure, so they are the most
// trusted signal when present.
const outlineConfidence = 0.95

// detectByOutline reads the embedded bookmark tree and flattens it into
// page-ordered sections, recording nesting depth as level. Entries whose
// destination cannot be resolved are skipped; malformed PDFs routinely
// carry a few broken links. Returns nil when the document has no outline
// or fewer than 2 resolvable entries — a single bookmark is not structure.
func detectByOutline(_ context.Context, src Source) (*book.DetectionResult, error) {
	bms, err := src.Bookmarks()
	if err != nil {
		return nil, err
	}
	if len(bms) == 0 {
		return nil, nil
	}

	var sections []book.Section
	var flatten func(items []Bookmark, level int)
	flatten = func(items []Bookmark, level int) {
		for _, bm := range items {
			if bm.Page > 0 && strings.TrimSpace(bm.Title) != "" {
				sections = append(sections, book.Section{
					Title:      strings.TrimSpace(bm.Title),
					PageStart:  book.IntPtr(bm.Page - 1),
					Level:      level,
					Confidence: outlineConfidence,
				})
			}
			flatten(bm.Kids, level+1)
		}
	}
	flatten(bms, 1)

	if len(sections) < 2 {
		return nil, nil
	}

	return &book.DetectionResult{
		Sections:   sections,
		Method:     book.MethodPDFOutline,
		Confidence: outlineConfidence,
	}, nil
}
