package pdf

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/deckgen/deckgen/internal/book"
)

const (
	// scannedSamplePages and scannedTextThreshold drive the scanned-PDF
	// heuristic: when the first few pages yield almost no text, the
	// document is image-based and structure detection is pointless.
	scannedSamplePages    = 5
	scannedTextThreshold  = 100
	lowConfidenceAdvisory = 0.5
)

// Parser converts a PDF into the unified book structure by running the
// detection cascade and extracting text for each accepted section.
type Parser struct {
	src        Source
	meta       book.Metadata
	closer     func() error
	cascade    *Cascade
	byPage     int // forced pages-per-chunk; 0 means run detection
	fallback   int // fallback chunk size when detection fails
	thresholds Thresholds
	logger     *slog.Logger
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithForcedChunking skips the cascade entirely and chunks the document
// into windows of n pages. Explicit override wins over detection.
func WithForcedChunking(n int) ParserOption {
	return func(p *Parser) { p.byPage = n }
}

// WithFallbackChunkSize sets the window size used when detection fails.
func WithFallbackChunkSize(n int) ParserOption {
	return func(p *Parser) {
		if n > 0 {
			p.fallback = n
		}
	}
}

// WithValidatorThresholds overrides the distribution validator tuning.
func WithValidatorThresholds(th Thresholds) ParserOption {
	return func(p *Parser) { p.thresholds = th }
}

// WithParserLogger sets the parser's logger.
func WithParserLogger(logger *slog.Logger) ParserOption {
	return func(p *Parser) { p.logger = logger }
}

// NewParser opens the document at path. Load failures (unreadable,
// encrypted, corrupted) surface here and are the only hard errors.
func NewParser(path string, opts ...ParserOption) (*Parser, error) {
	doc, err := OpenDocument(path)
	if err != nil {
		return nil, err
	}

	p := newParser(doc, doc.Metadata(), opts...)
	p.closer = doc.Close
	return p, nil
}

// newParser wires a parser over any Source; tests use synthetic sources.
// The cascade is built after options apply so it sees the final fallback
// chunk size, thresholds, and logger regardless of option order.
func newParser(src Source, meta book.Metadata, opts ...ParserOption) *Parser {
	p := &Parser{
		src:        src,
		meta:       meta,
		fallback:   DefaultPagesPerChunk,
		thresholds: DefaultThresholds(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.cascade = NewCascade(
		WithThresholds(p.thresholds),
		WithPagesPerChunk(p.fallback),
		WithLogger(p.logger),
	)
	return p
}

// Close releases the underlying document.
func (p *Parser) Close() error {
	if p.closer != nil {
		return p.closer()
	}
	return nil
}

// Parse runs structure detection and returns the complete parsed book.
// It always succeeds for loadable documents with at least one page:
// every detection failure degrades to page chunking with a warning.
func (p *Parser) Parse(ctx context.Context) (*book.ParsedBook, error) {
	total := p.src.PageCount()
	if total == 0 {
		return nil, ErrEmptyDocument
	}

	var warnings []string
	var result *book.DetectionResult

	switch {
	case p.byPage > 0:
		p.logger.Info("forced page-based chunking", "pages_per_chunk", p.byPage)
		result = chunkByPages(total, p.byPage)
		// Chunking was requested, not a detection failure.
		result.Warnings = nil
	case p.looksScanned(ctx):
		p.logger.Warn("limited text content, document may be scanned or image-based")
		warnings = append(warnings,
			"Limited text detected. PDF may be scanned/image-based. Using page-based chunking.")
		result = chunkByPages(total, p.fallback)
	default:
		result = p.cascade.DetectSections(ctx, p.src)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if result.Confidence < lowConfidenceAdvisory {
		warnings = append(warnings, fmt.Sprintf(
			"Low extraction confidence (%.2f). Section boundaries may be inaccurate.",
			result.Confidence))
	}
	warnings = append(warnings, result.Warnings...)

	chapters, err := p.buildChapters(ctx, result)
	if err != nil {
		return nil, err
	}

	return &book.ParsedBook{
		Metadata:             p.meta,
		TOC:                  buildTOC(result.Sections),
		Chapters:             chapters,
		SourceFormat:         "pdf",
		ExtractionMethod:     result.Method,
		ExtractionConfidence: result.Confidence,
		Warnings:             warnings,
	}, nil
}

// ParseWithStructure rebuilds the book from previously detected sections,
// re-extracting chapter text without running detection. Callers use it to
// honor a structure cache; Parse is the authoritative path for fresh
// documents.
func (p *Parser) ParseWithStructure(ctx context.Context, result *book.DetectionResult) (*book.ParsedBook, error) {
	if p.src.PageCount() == 0 {
		return nil, ErrEmptyDocument
	}
	if len(result.Sections) == 0 {
		return nil, fmt.Errorf("structure has no sections")
	}

	var warnings []string
	if result.Confidence < lowConfidenceAdvisory {
		warnings = append(warnings, fmt.Sprintf(
			"Low extraction confidence (%.2f). Section boundaries may be inaccurate.",
			result.Confidence))
	}
	warnings = append(warnings, result.Warnings...)

	chapters, err := p.buildChapters(ctx, result)
	if err != nil {
		return nil, err
	}

	return &book.ParsedBook{
		Metadata:             p.meta,
		TOC:                  buildTOC(result.Sections),
		Chapters:             chapters,
		SourceFormat:         "pdf",
		ExtractionMethod:     result.Method,
		ExtractionConfidence: result.Confidence,
		Warnings:             warnings,
	}, nil
}

// looksScanned samples the first pages for extractable text.
func (p *Parser) looksScanned(ctx context.Context) bool {
	sample := p.src.PageCount()
	if sample > scannedSamplePages {
		sample = scannedSamplePages
	}

	var sb strings.Builder
	for page := 0; page < sample; page++ {
		if ctx.Err() != nil {
			return false
		}
		text, err := p.src.PageText(page)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString(" ")
	}
	return len(strings.TrimSpace(sb.String())) < scannedTextThreshold
}

// pageRange is one resolved chapter boundary pair (inclusive, 0-based).
type pageRange struct {
	section book.Section
	start   int
	end     int
}

// resolvePageRanges turns detected sections into a partition of
// [0, totalPages-1]: start pages must be strictly increasing (later
// sections sharing a page are folded into the earlier chapter), the first
// chapter absorbs any front matter before the first heading, and the last
// chapter runs to the end of the document.
func resolvePageRanges(sections []book.Section, totalPages int) []pageRange {
	kept := make([]pageRange, 0, len(sections))
	lastStart := -1

	for _, s := range sections {
		start := 0
		if s.PageStart != nil {
			start = *s.PageStart
		}
		if start <= lastStart {
			continue
		}
		if start >= totalPages {
			continue
		}
		kept = append(kept, pageRange{section: s, start: start})
		lastStart = start
	}

	for i := range kept {
		if i == 0 {
			kept[i].start = 0
		}
		if i+1 < len(kept) {
			kept[i].end = kept[i+1].start - 1
		} else {
			kept[i].end = totalPages - 1
		}
	}
	return kept
}

// buildChapters extracts text for each resolved page range.
func (p *Parser) buildChapters(ctx context.Context, result *book.DetectionResult) ([]book.Chapter, error) {
	ranges := resolvePageRanges(result.Sections, p.src.PageCount())
	chapters := make([]book.Chapter, 0, len(ranges))

	for i, r := range ranges {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var parts []string
		for page := r.start; page <= r.end; page++ {
			text, err := p.src.PageText(page)
			if err != nil {
				return nil, fmt.Errorf("failed to extract page %d: %w", page, err)
			}
			parts = append(parts, text)
		}
		content := strings.Join(parts, "\n\n")

		chapters = append(chapters, book.Chapter{
			ID:                   fmt.Sprintf("chapter_%03d", i+1),
			Title:                r.section.Title,
			Index:                i,
			FileName:             fmt.Sprintf("pages_%d-%d", r.start+1, r.end+1),
			RawContent:           []byte(content),
			WordCount:            len(strings.Fields(content)),
			HasImages:            false,
			PageStart:            book.IntPtr(r.start),
			PageEnd:              book.IntPtr(r.end),
			ExtractionConfidence: r.section.Confidence,
			ExtractionMethod:     result.Method,
			Level:                r.section.Level,
		})
	}
	return chapters, nil
}

// buildTOC nests the flat, page-ordered section list into a hierarchy
// using each section's level: a section becomes a child of the nearest
// preceding section with a smaller level.
func buildTOC(sections []book.Section) []book.TOCEntry {
	type node struct {
		entry    book.TOCEntry
		children []*node
	}

	var roots []*node
	var stack []*node

	for i, s := range sections {
		page := 0
		if s.PageStart != nil {
			page = *s.PageStart
		}
		n := &node{entry: book.TOCEntry{
			ID:    fmt.Sprintf("section_%03d", i+1),
			Title: s.Title,
			Href:  fmt.Sprintf("page_%d", page),
			Level: s.Level,
		}}

		for len(stack) > 0 && stack[len(stack)-1].entry.Level >= s.Level {
			stack = stack[:len(stack)-1]
		}

		if len(stack) == 0 {
			roots = append(roots, n)
		} else {
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, n)
		}
		stack = append(stack, n)
	}

	var freeze func(*node) book.TOCEntry
	freeze = func(n *node) book.TOCEntry {
		e := n.entry
		for _, c := range n.children {
			e.Children = append(e.Children, freeze(c))
		}
		return e
	}

	entries := make([]book.TOCEntry, 0, len(roots))
	for _, r := range roots {
		entries = append(entries, freeze(r))
	}
	return entries
}
