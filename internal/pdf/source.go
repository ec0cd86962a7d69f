// Package pdf implements PDF structure detection: a cascade of layered
// heuristics (outline, font size, text patterns, visual layout) with a
// distribution sanity check and an unconditional page-chunking fallback.
package pdf

// Char is a single positioned character extracted from a page.
// Top is measured from the top edge of the page in points.
type Char struct {
	Text string
	Font string
	Size float64
	Top  float64
	X    float64
}

// Line is a reconstructed visual line of text.
// Size and Font come from the largest character in the line.
type Line struct {
	Text   string
	Size   float64
	Font   string
	Top    float64
	Bottom float64
	X0     float64
}

// Bookmark is one entry in a document's outline tree.
// Page is the 1-based target page; 0 means the destination could not
// be resolved.
type Bookmark struct {
	Title string
	Page  int
	Kids  []Bookmark
}

// Source provides page-level access to a PDF document. Detection layers
// depend only on this interface, which keeps them independently testable
// against synthetic documents. Page indices are 0-based.
type Source interface {
	// PageCount returns the number of pages in the document.
	PageCount() int

	// PageText returns the plain text of a page.
	PageText(page int) (string, error)

	// PageChars returns positioned characters with font metadata for a page.
	PageChars(page int) ([]Char, error)

	// PageSize returns the page dimensions in points.
	PageSize(page int) (width, height float64)

	// Bookmarks returns the embedded outline tree, or an empty slice if
	// the document has none.
	Bookmarks() ([]Bookmark, error)
}
