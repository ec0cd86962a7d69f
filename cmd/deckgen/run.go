package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/deckgen/deckgen/internal/cache"
	"github.com/deckgen/deckgen/internal/cli"
	"github.com/deckgen/deckgen/internal/content"
	"github.com/deckgen/deckgen/internal/export"
	"github.com/deckgen/deckgen/internal/flashcard"
	"github.com/deckgen/deckgen/internal/ingest"
	"github.com/deckgen/deckgen/internal/output"
	"github.com/deckgen/deckgen/internal/pdf"
)

var (
	runProvider  string
	runMaxCards  int
	runTags      []string
	runForce     bool
	runByPage    int
	runOutputDir string
)

// runSummary is the structured result printed after a full pipeline run.
type runSummary struct {
	Title            string   `json:"title" yaml:"title"`
	SourceFormat     string   `json:"source_format" yaml:"source_format"`
	ExtractionMethod string   `json:"extraction_method" yaml:"extraction_method"`
	Confidence       float64  `json:"extraction_confidence" yaml:"extraction_confidence"`
	Sections         int      `json:"sections" yaml:"sections"`
	Generated        int      `json:"generated_sections" yaml:"generated_sections"`
	Skipped          int      `json:"skipped_sections" yaml:"skipped_sections"`
	TotalCards       int      `json:"total_cards" yaml:"total_cards"`
	ExportFile       string   `json:"export_file" yaml:"export_file"`
	Warnings         []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Failures         []string `json:"failures,omitempty" yaml:"failures,omitempty"`
}

var runCmd = &cobra.Command{
	Use:   "run <book>",
	Short: "Run the full pipeline: parse, generate, export",
	Long: `Parse the book, generate flashcards for every section, and merge
them into a single Anki import file, in one invocation.

Equivalent to running parse, generate, and export in sequence with
default selections (all sections). Already-generated sections are
skipped unless --force is given.

Examples:
  deckgen run book.pdf
  deckgen run book.epub --provider ollama --max-cards 15
  deckgen run book.pdf --by-page 5 --force`,
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

		h, err := getHome()
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}

		// Step 1: parse.
		var cacheMgr *cache.Manager
		if cfg.Defaults.CacheEnabled {
			cacheMgr = cache.NewManager(h.CachePath(), logger)
		}
		thresholds := pdf.Thresholds{
			MinSectionWords:     cfg.Detection.MinSectionWords,
			TinySectionRatio:    cfg.Detection.TinySectionRatio,
			TopTwoConcentration: cfg.Detection.TopTwoConcentration,
		}
		svc := ingest.NewService(cacheMgr, logger)
		parsed, err := svc.Parse(ctx, bookPath, ingest.Options{
			PagesPerChunk:     runByPage,
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

		format, err := content.ParseFormat(cfg.Defaults.Format)
		if err != nil {
			return err
		}

		dir := runOutputDir
		if dir == "" {
			dir = h.BookOutputDir(bookPath)
		}
		writer, err := output.NewWriter(dir, bookPath, logger)
		if err != nil {
			return err
		}

		indices := make([]int, len(parsed.Chapters))
		var metas []output.ChapterMetadata
		for i, ch := range parsed.Chapters {
			indices[i] = i
			_, meta, err := writer.WriteChapter(ch, format)
			if err != nil {
				return err
			}
			metas = append(metas, meta)
		}
		if _, err := writer.WriteManifest(parsed, indices, metas); err != nil {
			return err
		}
		logger.Info("parsed book", "sections", len(parsed.Chapters), "dir", dir)

		// Step 2: generate.
		files, err := output.FindChapterFiles(dir)
		if err != nil {
			return err
		}

		var (
			chapters []flashcard.Chapter
			decks    []string
			paths    []string
			skipped  int
		)
		for _, path := range files {
			if !runForce && chapterGenerated(path) {
				skipped++
				continue
			}
			ch, err := output.LoadChapter(path)
			if err != nil {
				return err
			}
			chapters = append(chapters, flashcard.Chapter{
				ID:         ch.Metadata.ChapterID,
				Title:      ch.Metadata.Title,
				Content:    ch.Content,
				SourceFile: filepath.Base(path),
			})
			deck := ch.Metadata.Title
			if parsed.Metadata.Title != "" {
				deck = parsed.Metadata.Title + "::" + ch.Metadata.Title
			}
			decks = append(decks, deck)
			paths = append(paths, path)
		}

		summary := runSummary{
			Title:            parsed.Metadata.Title,
			SourceFormat:     parsed.SourceFormat,
			ExtractionMethod: string(parsed.ExtractionMethod),
			Confidence:       parsed.ExtractionConfidence,
			Sections:         len(parsed.Chapters),
			Skipped:          skipped,
			Warnings:         parsed.Warnings,
		}

		if len(chapters) > 0 {
			providerName := runProvider
			if providerName == "" {
				providerName = cfg.Defaults.LLMProvider
			}
			client, err := buildProvider(cfg, providerName, logger)
			if err != nil {
				return err
			}
			pcfg, _ := cfg.ResolvedProvider(providerName)

			maxCards := runMaxCards
			if !cmd.Flags().Changed("max-cards") {
				maxCards = cfg.Defaults.MaxCards
			}
			gen := flashcard.NewGenerator(client,
				flashcard.WithMaxCards(maxCards),
				flashcard.WithTemperature(pcfg.Temperature),
				flashcard.WithMaxTokens(pcfg.MaxTokens),
				flashcard.WithLogger(logger),
			)

			logger.Info("generating flashcards",
				"sections", len(chapters), "provider", providerName, "workers", cfg.Defaults.MaxWorkers)
			results := gen.GenerateAll(ctx, chapters, cfg.Defaults.MaxWorkers)

			for i, r := range results {
				if r.Err != nil {
					logger.Error("section failed", "title", r.Chapter.Title, "error", r.Err)
					summary.Failures = append(summary.Failures,
						fmt.Sprintf("%s: %v", r.Chapter.Title, r.Err))
					continue
				}
				if err := saveGenerationResult(paths[i], decks[i], r.Result, runTags); err != nil {
					return err
				}
				summary.Generated++
			}
		}

		// Step 3: export.
		cardFiles, err := export.FindCardFiles(dir)
		if err != nil {
			return err
		}
		var cards []export.ChapterCards
		for _, path := range cardFiles {
			chCards, err := export.ParseCardFile(path)
			if err != nil {
				return err
			}
			if chCards == nil {
				logger.Warn("skipping invalid card file", "path", path)
				continue
			}
			cards = append(cards, *chCards)
		}
		if len(cards) == 0 {
			return fmt.Errorf("no cards were generated; nothing to export")
		}
		sort.Slice(cards, func(i, j int) bool { return cards[i].ChapterNum < cards[j].ChapterNum })

		combined := export.BuildCombined(cards, export.Slugify(parsed.Metadata.Title), runTags)
		exportPath := filepath.Join(dir, "all_cards.txt")
		if err := os.WriteFile(exportPath, []byte(combined), 0o644); err != nil {
			return err
		}

		stats := export.CalculateStats(cards)
		summary.TotalCards = stats.TotalCards
		summary.ExportFile = exportPath

		logger.Info("pipeline complete",
			"cards", stats.TotalCards, "export", exportPath,
			"failed", len(summary.Failures))
		return cli.Output(summary)
	},
}

func init() {
	runCmd.Flags().StringVar(&runProvider, "provider", "", "LLM provider name from config (default: configured default)")
	runCmd.Flags().IntVar(&runMaxCards, "max-cards", 0, "max cards per section (0 = exhaustive)")
	runCmd.Flags().StringSliceVar(&runTags, "tags", nil, "extra tags for every card")
	runCmd.Flags().BoolVar(&runForce, "force", false, "regenerate sections that already have cards")
	runCmd.Flags().IntVar(&runByPage, "by-page", 0, "skip detection and chunk every N pages (PDF only)")
	runCmd.Flags().StringVar(&runOutputDir, "output-dir", "", "working directory (default: <home>/books/<name>)")

	rootCmd.AddCommand(runCmd)
}
