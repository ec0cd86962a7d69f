package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/deckgen/deckgen/internal/book"
	"github.com/deckgen/deckgen/internal/cache"
	"github.com/deckgen/deckgen/internal/cli"
	"github.com/deckgen/deckgen/internal/content"
	"github.com/deckgen/deckgen/internal/ingest"
	"github.com/deckgen/deckgen/internal/output"
	"github.com/deckgen/deckgen/internal/pdf"
)

var (
	parseChapters  string
	parseByPage    int
	parseFormat    string
	parseOutputDir string
	parseNoCache   bool
)

// parseSummary is the structured result printed after a parse run.
type parseSummary struct {
	Title             string   `json:"title" yaml:"title"`
	Authors           []string `json:"authors,omitempty" yaml:"authors,omitempty"`
	SourceFormat      string   `json:"source_format" yaml:"source_format"`
	ExtractionMethod  string   `json:"extraction_method" yaml:"extraction_method"`
	Confidence        float64  `json:"extraction_confidence" yaml:"extraction_confidence"`
	TotalSections     int      `json:"total_sections" yaml:"total_sections"`
	ExtractedSections int      `json:"extracted_sections" yaml:"extracted_sections"`
	OutputDirectory   string   `json:"output_directory" yaml:"output_directory"`
	Warnings          []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

var parseCmd = &cobra.Command{
	Use:   "parse <book>",
	Short: "Parse a book into section JSON files",
	Long: `Parse an EPUB or PDF book into hierarchical sections and write one
JSON file per section plus a manifest.

For PDFs, structure detection runs a cascade of strategies (embedded
outline, font analysis, text patterns, layout heuristics) and falls
back to fixed page chunks when none succeeds. Use --by-page to skip
detection and chunk unconditionally.

Examples:
  deckgen parse book.epub                      # Extract all sections
  deckgen parse book.pdf --chapters 1,3,5-7    # Extract a subset
  deckgen parse book.pdf --by-page 5           # Chunk every 5 pages
  deckgen parse book.pdf --format text         # Plain text output`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := newLogger()
		bookPath, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}

		if !ingest.IsSupported(bookPath) {
			return fmt.Errorf("unsupported file format %q (supported: .pdf, .epub)", filepath.Ext(bookPath))
		}

		cfgMgr, err := getConfig()
		if err != nil {
			return err
		}
		cfg := cfgMgr.Get()

		formatName := parseFormat
		if formatName == "" {
			formatName = cfg.Defaults.Format
		}
		format, err := content.ParseFormat(formatName)
		if err != nil {
			return err
		}

		h, err := getHome()
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}

		var cacheMgr *cache.Manager
		if cfg.Defaults.CacheEnabled && !parseNoCache {
			cacheMgr = cache.NewManager(h.CachePath(), logger)
		}

		thresholds := pdf.Thresholds{
			MinSectionWords:     cfg.Detection.MinSectionWords,
			TinySectionRatio:    cfg.Detection.TinySectionRatio,
			TopTwoConcentration: cfg.Detection.TopTwoConcentration,
		}

		svc := ingest.NewService(cacheMgr, logger)
		parsed, err := svc.Parse(ctx, bookPath, ingest.Options{
			PagesPerChunk:     parseByPage,
			FallbackChunkSize: cfg.Defaults.PagesPerChunk,
			Thresholds:        &thresholds,
			Logger:            logger,
		})
		if err != nil {
			return err
		}

		for _, w := range parsed.Warnings {
			logger.Warn(w)
		}

		indices, err := parseChapterSelection(parseChapters, len(parsed.Chapters))
		if err != nil {
			return err
		}
		if len(indices) == 0 {
			return fmt.Errorf("selection %q matches no sections (book has %d)", parseChapters, len(parsed.Chapters))
		}

		outDir := parseOutputDir
		if outDir == "" {
			outDir = h.BookOutputDir(bookPath)
		}

		writer, err := output.NewWriter(outDir, bookPath, logger)
		if err != nil {
			return err
		}

		var metas []output.ChapterMetadata
		for _, idx := range indices {
			ch := parsed.Chapters[idx]
			_, meta, err := writer.WriteChapter(ch, format)
			if err != nil {
				return err
			}
			logger.Info("extracted section", "index", idx+1, "title", ch.Title, "words", meta.WordCount)
			metas = append(metas, meta)
		}

		if _, err := writer.WriteManifest(parsed, indices, metas); err != nil {
			return err
		}

		return cli.Output(summarizeParse(parsed, indices, outDir))
	},
}

func summarizeParse(parsed *book.ParsedBook, indices []int, outDir string) parseSummary {
	return parseSummary{
		Title:             parsed.Metadata.Title,
		Authors:           parsed.Metadata.Authors,
		SourceFormat:      parsed.SourceFormat,
		ExtractionMethod:  string(parsed.ExtractionMethod),
		Confidence:        parsed.ExtractionConfidence,
		TotalSections:     len(parsed.Chapters),
		ExtractedSections: len(indices),
		OutputDirectory:   outDir,
		Warnings:          parsed.Warnings,
	}
}

func init() {
	parseCmd.Flags().StringVar(&parseChapters, "chapters", "all", `sections to extract ("all" or "1,3,5-7")`)
	parseCmd.Flags().IntVar(&parseByPage, "by-page", 0, "skip detection and chunk every N pages (PDF only)")
	parseCmd.Flags().StringVar(&parseFormat, "format", "", "content format: markdown, text, or html")
	parseCmd.Flags().StringVar(&parseOutputDir, "output-dir", "", "output directory (default: <home>/books/<name>)")
	parseCmd.Flags().BoolVar(&parseNoCache, "no-cache", false, "skip the structure cache")

	rootCmd.AddCommand(parseCmd)
}
