// Package book provides the unified book model shared across parsers,
// the cache, and the flashcard pipeline. This package has no dependencies
// on other deckgen packages to avoid import cycles.
package book

// ExtractionMethod indicates how document structure was obtained.
type ExtractionMethod string

const (
	// MethodEpubNative indicates structure read from the EPUB container's own TOC.
	MethodEpubNative ExtractionMethod = "epub_native"
	// MethodPDFOutline indicates structure from embedded PDF bookmarks.
	MethodPDFOutline ExtractionMethod = "pdf_outline"
	// MethodPDFFont indicates structure inferred from font-size analysis.
	MethodPDFFont ExtractionMethod = "pdf_font"
	// MethodPDFPattern indicates structure inferred from text pattern matching.
	MethodPDFPattern ExtractionMethod = "pdf_pattern"
	// MethodPDFLayout indicates structure inferred from page layout heuristics.
	MethodPDFLayout ExtractionMethod = "pdf_layout"
	// MethodPDFPageChunks indicates fixed-size page chunking (fallback).
	MethodPDFPageChunks ExtractionMethod = "pdf_page_chunks"
)

// Section is one candidate heading detected in a document.
// PageStart/PageEnd are 0-based page indices; PageEnd is inclusive and
// nil means "until the next section or the end of the document".
type Section struct {
	Title       string  `json:"title"`
	PageStart   *int    `json:"page_start,omitempty"`
	PageEnd     *int    `json:"page_end,omitempty"`
	LineNumber  *int    `json:"line_number,omitempty"`
	Level       int     `json:"level"`
	Confidence  float64 `json:"confidence"`
	PatternType string  `json:"pattern_type,omitempty"`
}

// DetectionResult is the complete output of one detection layer invocation.
// It is constructed once and never mutated; the cascade either accepts it
// wholesale or discards it.
type DetectionResult struct {
	Sections   []Section        `json:"sections"`
	Method     ExtractionMethod `json:"method"`
	Confidence float64          `json:"confidence"`
	Warnings   []string         `json:"warnings,omitempty"`
}

// AvgConfidence returns the arithmetic mean of section confidences,
// or 0.0 for an empty section list.
func AvgConfidence(sections []Section) float64 {
	if len(sections) == 0 {
		return 0.0
	}
	var sum float64
	for _, s := range sections {
		sum += s.Confidence
	}
	return sum / float64(len(sections))
}

// TOCEntry is a node in the hierarchical table of contents.
type TOCEntry struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Href     string     `json:"href"`
	Level    int        `json:"level"`
	Children []TOCEntry `json:"children,omitempty"`
}

// Chapter is a finalized, content-bearing section.
// RawContent holds XHTML bytes for EPUB chapters and UTF-8 plain text for
// PDF chapters; the content processor treats both uniformly.
type Chapter struct {
	ID                   string           `json:"id"`
	Title                string           `json:"title"`
	Index                int              `json:"index"`
	FileName             string           `json:"file_name"`
	RawContent           []byte           `json:"-"`
	WordCount            int              `json:"word_count"`
	HasImages            bool             `json:"has_images"`
	PageStart            *int             `json:"page_start,omitempty"`
	PageEnd              *int             `json:"page_end,omitempty"`
	ExtractionConfidence float64          `json:"extraction_confidence"`
	ExtractionMethod     ExtractionMethod `json:"extraction_method"`
	Level                int              `json:"level"`
}

// Metadata holds book-level metadata.
type Metadata struct {
	Title           string   `json:"title"`
	Authors         []string `json:"authors,omitempty"`
	Language        string   `json:"language,omitempty"`
	Publisher       string   `json:"publisher,omitempty"`
	PublicationDate string   `json:"publication_date,omitempty"`
}

// ParsedBook is the complete parsed structure, unified across EPUB and PDF.
// It is produced exclusively by a parser and immutable once returned.
type ParsedBook struct {
	Metadata             Metadata         `json:"metadata"`
	TOC                  []TOCEntry       `json:"toc,omitempty"`
	Chapters             []Chapter        `json:"chapters"`
	SpineOrder           []string         `json:"spine_order,omitempty"`
	SourceFormat         string           `json:"source_format"` // "epub" | "pdf"
	ExtractionMethod     ExtractionMethod `json:"extraction_method"`
	ExtractionConfidence float64          `json:"extraction_confidence"`
	Warnings             []string         `json:"warnings,omitempty"`
}

// IntPtr returns a pointer to v. Convenience for optional page fields.
func IntPtr(v int) *int { return &v }
