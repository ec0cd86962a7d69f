package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deckgen/deckgen/internal/cli"
	"github.com/deckgen/deckgen/internal/config"
	"github.com/deckgen/deckgen/internal/export"
	"github.com/deckgen/deckgen/internal/flashcard"
	"github.com/deckgen/deckgen/internal/output"
	"github.com/deckgen/deckgen/internal/providers"
)

var (
	genProvider string
	genModel    string
	genMaxCards int
	genChapters string
	genDeck     string
	genTags     []string
	genForce    bool
	genDryRun   bool
)

// generateSummary is the structured result printed after a generate run.
type generateSummary struct {
	Provider   string               `json:"provider" yaml:"provider"`
	Generated  int                  `json:"generated_sections" yaml:"generated_sections"`
	Skipped    int                  `json:"skipped_sections" yaml:"skipped_sections"`
	TotalBasic int                  `json:"total_basic_cards" yaml:"total_basic_cards"`
	TotalCloze int                  `json:"total_cloze_cards" yaml:"total_cloze_cards"`
	Failures   []generateFailure    `json:"failures,omitempty" yaml:"failures,omitempty"`
	Sections   []generateSectionRow `json:"sections,omitempty" yaml:"sections,omitempty"`
}

type generateSectionRow struct {
	Title string `json:"title" yaml:"title"`
	Basic int    `json:"basic" yaml:"basic"`
	Cloze int    `json:"cloze" yaml:"cloze"`
}

type generateFailure struct {
	Title string `json:"title" yaml:"title"`
	Error string `json:"error" yaml:"error"`
}

var generateCmd = &cobra.Command{
	Use:   "generate <chapters-dir>",
	Short: "Generate flashcards for parsed sections",
	Long: `Generate basic and cloze flashcards for every parsed section JSON
file in the directory, using the configured LLM provider.

Each section produces:
  chapter_NNN_basic.txt  pipe-separated question|answer cards
  chapter_NNN_cloze.txt  pipe-separated cloze|extra cards
  chapter_NNN_cards.txt  deck-tagged note lines for 'deckgen export'
  chapter_NNN_meta.json  generation metadata

Already-generated sections are skipped unless --force is given.

Examples:
  deckgen generate ./mybook_chapters
  deckgen generate ./mybook_chapters --chapters 1-3 --max-cards 15
  deckgen generate ./mybook_chapters --provider ollama --force`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := newLogger()
		dir := args[0]

		cfgMgr, err := getConfig()
		if err != nil {
			return err
		}
		cfg := cfgMgr.Get()

		files, err := output.FindChapterFiles(dir)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("no chapter files found in %s (run 'deckgen parse' first)", dir)
		}

		manifest, err := output.LoadManifest(dir)
		if err != nil {
			return fmt.Errorf("missing manifest in %s (run 'deckgen parse' first): %w", dir, err)
		}

		selected, err := selectChapterFiles(files, genChapters)
		if err != nil {
			return err
		}

		var (
			chapters []flashcard.Chapter
			decks    []string
			paths    []string
			skipped  int
		)
		for _, path := range selected {
			if !genForce && chapterGenerated(path) {
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
			decks = append(decks, deckNameFor(manifest.BookTitle, ch.Metadata.Title))
			paths = append(paths, path)
		}

		if genDryRun {
			rows := make([]generateSectionRow, len(chapters))
			for i, ch := range chapters {
				rows[i] = generateSectionRow{Title: ch.Title}
			}
			return cli.Output(map[string]any{
				"would_generate": len(chapters),
				"skipped":        skipped,
				"sections":       rows,
			})
		}
		if len(chapters) == 0 {
			logger.Info("nothing to generate", "skipped", skipped)
			return cli.Output(generateSummary{Skipped: skipped})
		}

		providerName := genProvider
		if providerName == "" {
			providerName = cfg.Defaults.LLMProvider
		}
		client, err := buildProvider(cfg, providerName, logger)
		if err != nil {
			return err
		}

		maxCards := genMaxCards
		if !cmd.Flags().Changed("max-cards") {
			maxCards = cfg.Defaults.MaxCards
		}
		pcfg, _ := cfg.ResolvedProvider(providerName)
		gen := flashcard.NewGenerator(client,
			flashcard.WithModel(genModel),
			flashcard.WithMaxCards(maxCards),
			flashcard.WithTemperature(pcfg.Temperature),
			flashcard.WithMaxTokens(pcfg.MaxTokens),
			flashcard.WithLogger(logger),
		)

		logger.Info("generating flashcards",
			"sections", len(chapters), "provider", providerName, "workers", cfg.Defaults.MaxWorkers)
		results := gen.GenerateAll(ctx, chapters, cfg.Defaults.MaxWorkers)

		summary := generateSummary{Provider: providerName, Skipped: skipped}
		for i, r := range results {
			if r.Err != nil {
				logger.Error("section failed", "title", r.Chapter.Title, "error", r.Err)
				summary.Failures = append(summary.Failures, generateFailure{
					Title: r.Chapter.Title,
					Error: r.Err.Error(),
				})
				continue
			}
			if err := saveGenerationResult(paths[i], decks[i], r.Result, genTags); err != nil {
				return err
			}
			summary.Generated++
			summary.TotalBasic += r.Result.Metadata.BasicCount
			summary.TotalCloze += r.Result.Metadata.ClozeCount
			summary.Sections = append(summary.Sections, generateSectionRow{
				Title: r.Chapter.Title,
				Basic: r.Result.Metadata.BasicCount,
				Cloze: r.Result.Metadata.ClozeCount,
			})
		}

		return cli.Output(summary)
	},
}

// selectChapterFiles filters chapter files by a 1-based selection string.
func selectChapterFiles(files []string, selection string) ([]string, error) {
	if selection == "" || strings.EqualFold(selection, "all") {
		return files, nil
	}

	// Selection indices are positions in the sorted file list, so they
	// stay meaningful when parse extracted a subset of the book.
	indices, err := parseChapterSelection(selection, len(files))
	if err != nil {
		return nil, err
	}

	selected := make([]string, 0, len(indices))
	for _, i := range indices {
		selected = append(selected, files[i])
	}
	return selected, nil
}

// chapterGenerated reports whether a card file already exists for the
// chapter JSON at path.
func chapterGenerated(path string) bool {
	base := strings.TrimSuffix(path, ".json")
	_, err := os.Stat(base + export.CardFileSuffix)
	return err == nil
}

func deckNameFor(bookTitle, chapterTitle string) string {
	if genDeck != "" {
		return genDeck
	}
	if bookTitle == "" {
		return chapterTitle
	}
	return bookTitle + "::" + chapterTitle
}

// buildProvider constructs the requested LLM client from config, with
// ${ENV_VAR} API keys resolved.
func buildProvider(cfg *config.Config, name string, logger *slog.Logger) (providers.LLMClient, error) {
	cfgs := make(map[string]providers.ClientConfig, len(cfg.LLMProviders))
	for pname := range cfg.LLMProviders {
		resolved, _ := cfg.ResolvedProvider(pname)
		cfgs[pname] = providers.ClientConfig{
			Type:        resolved.Type,
			Model:       resolved.Model,
			APIKey:      resolved.APIKey,
			BaseURL:     resolved.BaseURL,
			MaxTokens:   resolved.MaxTokens,
			Temperature: resolved.Temperature,
			Enabled:     resolved.Enabled,
		}
	}

	registry, err := providers.NewRegistryFromConfig(cfgs, logger)
	if err != nil {
		return nil, err
	}
	client, err := registry.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w (enable it in config or pass --provider)", err)
	}
	return client, nil
}

// saveGenerationResult writes the per-chapter generation artifacts next
// to the chapter JSON file.
func saveGenerationResult(chapterPath, deckName string, result *flashcard.GenerationResult, tags []string) error {
	base := strings.TrimSuffix(chapterPath, ".json")

	if txt := result.ToBasicTxt(); txt != "" {
		if err := os.WriteFile(base+"_basic.txt", []byte(txt), 0o644); err != nil {
			return err
		}
	}
	if txt := result.ToClozeTxt(); txt != "" {
		if err := os.WriteFile(base+"_cloze.txt", []byte(txt), 0o644); err != nil {
			return err
		}
	}

	cards := export.BuildChapterFile(deckName, result, tags)
	if err := os.WriteFile(base+export.CardFileSuffix, []byte(cards), 0o644); err != nil {
		return err
	}

	meta, err := json.MarshalIndent(result.Metadata, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(base+"_meta.json", meta, 0o644)
}

func init() {
	generateCmd.Flags().StringVar(&genProvider, "provider", "", "LLM provider name from config (default: configured default)")
	generateCmd.Flags().StringVar(&genModel, "model", "", "override the provider's model")
	generateCmd.Flags().IntVar(&genMaxCards, "max-cards", 0, "max cards per section (0 = exhaustive)")
	generateCmd.Flags().StringVar(&genChapters, "chapters", "all", `sections to generate ("all" or "1,3,5-7")`)
	generateCmd.Flags().StringVar(&genDeck, "deck", "", "deck name for all cards (default: <book>::<section>)")
	generateCmd.Flags().StringSliceVar(&genTags, "tags", nil, "extra tags for every card")
	generateCmd.Flags().BoolVar(&genForce, "force", false, "regenerate sections that already have cards")
	generateCmd.Flags().BoolVar(&genDryRun, "dry-run", false, "list what would be generated without calling the LLM")

	rootCmd.AddCommand(generateCmd)
}
