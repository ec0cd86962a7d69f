// Package ingest selects the right parser for a book file and provides
// a cache-aware parse entry point.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/deckgen/deckgen/internal/book"
	"github.com/deckgen/deckgen/internal/cache"
	"github.com/deckgen/deckgen/internal/epub"
	"github.com/deckgen/deckgen/internal/pdf"
)

// BookParser is the common surface of the format-specific parsers.
type BookParser interface {
	Parse(ctx context.Context) (*book.ParsedBook, error)
	Close() error
}

// supportedFormats maps file extensions to format names.
var supportedFormats = map[string]string{
	".epub": "epub",
	".pdf":  "pdf",
}

// DetectFormat returns "epub", "pdf", or "unknown" from the extension.
func DetectFormat(path string) string {
	if format, ok := supportedFormats[strings.ToLower(filepath.Ext(path))]; ok {
		return format
	}
	return "unknown"
}

// IsSupported reports whether the file extension is a supported format.
func IsSupported(path string) bool {
	_, ok := supportedFormats[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Options tune parser construction.
type Options struct {
	// PagesPerChunk skips PDF section detection and chunks every n pages.
	PagesPerChunk int
	// FallbackChunkSize sets the chunk size used when detection fails.
	FallbackChunkSize int
	// Thresholds overrides the distribution validator defaults.
	Thresholds *pdf.Thresholds
	Logger     *slog.Logger
}

// NewParser creates the parser matching the file's format.
func NewParser(path string, opts Options) (BookParser, error) {
	switch DetectFormat(path) {
	case "epub":
		return epub.NewParser(path, opts.Logger)
	case "pdf":
		return pdf.NewParser(path, pdfOptions(opts)...)
	default:
		return nil, fmt.Errorf("unsupported format %q (supported: .pdf, .epub)", filepath.Ext(path))
	}
}

func pdfOptions(opts Options) []pdf.ParserOption {
	var pdfOpts []pdf.ParserOption
	if opts.PagesPerChunk > 0 {
		pdfOpts = append(pdfOpts, pdf.WithForcedChunking(opts.PagesPerChunk))
	}
	if opts.FallbackChunkSize > 0 {
		pdfOpts = append(pdfOpts, pdf.WithFallbackChunkSize(opts.FallbackChunkSize))
	}
	if opts.Thresholds != nil {
		pdfOpts = append(pdfOpts, pdf.WithValidatorThresholds(*opts.Thresholds))
	}
	if opts.Logger != nil {
		pdfOpts = append(pdfOpts, pdf.WithParserLogger(opts.Logger))
	}
	return pdfOpts
}

// Service parses books and keeps their structure cached.
// A nil cache manager disables caching.
type Service struct {
	cache  *cache.Manager
	logger *slog.Logger
}

// NewService creates a Service.
func NewService(cacheMgr *cache.Manager, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{cache: cacheMgr, logger: logger}
}

// Parse parses the book and stores its structure in the cache.
// Content is always read from the source file; only structure is cached.
// A valid cached PDF structure skips the detection cascade entirely;
// forced chunking bypasses the cache because the requested boundaries
// may differ from the cached ones.
func (s *Service) Parse(ctx context.Context, path string, opts Options) (*book.ParsedBook, error) {
	if opts.Logger == nil {
		opts.Logger = s.logger
	}

	if cached := s.CachedStructure(path); cached != nil &&
		cached.SourceFormat == "pdf" && opts.PagesPerChunk == 0 {
		parsed, err := s.parseWithCachedStructure(ctx, path, cached, opts)
		if err == nil {
			s.logger.Info("using cached structure",
				"path", path, "method", cached.ExtractionMethod)
			return parsed, nil
		}
		s.logger.Warn("cached structure unusable, reparsing", "path", path, "error", err)
	}

	parser, err := NewParser(path, opts)
	if err != nil {
		return nil, err
	}
	defer parser.Close()

	parsed, err := parser.Parse(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Put(path, parsed); err != nil {
			s.logger.Warn("failed to cache book structure", "path", path, "error", err)
		}
	}
	return parsed, nil
}

// CachedStructure returns the cached structure for path, or nil when the
// cache is disabled, missing the book, or stale.
func (s *Service) CachedStructure(path string) *cache.Structure {
	if s.cache == nil {
		return nil
	}
	return s.cache.Get(path)
}

// parseWithCachedStructure rebuilds a PDF book from its cached section
// boundaries, re-extracting chapter text from the source file.
func (s *Service) parseWithCachedStructure(ctx context.Context, path string, cached *cache.Structure, opts Options) (*book.ParsedBook, error) {
	parser, err := pdf.NewParser(path, pdfOptions(opts)...)
	if err != nil {
		return nil, err
	}
	defer parser.Close()
	return parser.ParseWithStructure(ctx, cachedDetection(cached))
}

// cachedDetection reconstructs the accepted detection result from cached
// chapter boundaries.
func cachedDetection(cached *cache.Structure) *book.DetectionResult {
	sections := make([]book.Section, 0, len(cached.Chapters))
	for _, ch := range cached.Chapters {
		sections = append(sections, book.Section{
			Title:      ch.Title,
			PageStart:  ch.PageStart,
			PageEnd:    ch.PageEnd,
			Level:      ch.Level,
			Confidence: ch.ExtractionConfidence,
		})
	}
	return &book.DetectionResult{
		Sections:   sections,
		Method:     cached.ExtractionMethod,
		Confidence: cached.ExtractionConfidence,
	}
}
