package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/deckgen/deckgen/internal/cli"
	"github.com/deckgen/deckgen/internal/export"
	"github.com/deckgen/deckgen/internal/output"
)

var (
	exportFile string
	exportTags []string
)

// exportSummary is the structured result printed after an export run.
type exportSummary struct {
	BookTitle  string             `json:"book_title" yaml:"book_title"`
	OutputFile string             `json:"output_file" yaml:"output_file"`
	TotalCards int                `json:"total_cards" yaml:"total_cards"`
	TotalBasic int                `json:"total_basic" yaml:"total_basic"`
	TotalCloze int                `json:"total_cloze" yaml:"total_cloze"`
	Sections   []exportSectionRow `json:"sections" yaml:"sections"`
}

type exportSectionRow struct {
	Num   int    `json:"num" yaml:"num"`
	Title string `json:"title" yaml:"title"`
	Basic int    `json:"basic" yaml:"basic"`
	Cloze int    `json:"cloze" yaml:"cloze"`
}

var exportCmd = &cobra.Command{
	Use:   "export <chapters-dir>",
	Short: "Merge generated cards into one Anki import file",
	Long: `Merge all chapter card files in the directory into a single
pipe-separated file with Anki import headers. Each card keeps its
section's deck name, so importing the file builds the deck hierarchy.

Import the result in Anki via File > Import.

Examples:
  deckgen export ./mybook_chapters
  deckgen export ./mybook_chapters --output-file physics.txt --tags exam`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		dir := args[0]

		cardFiles, err := export.FindCardFiles(dir)
		if err != nil {
			return err
		}
		if len(cardFiles) == 0 {
			return fmt.Errorf("no card files found in %s (run 'deckgen generate' first)", dir)
		}

		manifest, err := output.LoadManifest(dir)
		if err != nil {
			return fmt.Errorf("missing manifest in %s (run 'deckgen parse' first): %w", dir, err)
		}

		var chapters []export.ChapterCards
		for _, path := range cardFiles {
			parsed, err := export.ParseCardFile(path)
			if err != nil {
				return err
			}
			if parsed == nil {
				logger.Warn("skipping invalid card file", "path", path)
				continue
			}
			chapters = append(chapters, *parsed)
		}
		if len(chapters) == 0 {
			return fmt.Errorf("no valid card files found in %s", dir)
		}
		sort.Slice(chapters, func(i, j int) bool {
			return chapters[i].ChapterNum < chapters[j].ChapterNum
		})

		combined := export.BuildCombined(chapters, export.Slugify(manifest.BookTitle), exportTags)

		outPath := exportFile
		if outPath == "" {
			outPath = filepath.Join(dir, "all_cards.txt")
		}
		if err := os.WriteFile(outPath, []byte(combined), 0o644); err != nil {
			return err
		}

		stats := export.CalculateStats(chapters)
		summary := exportSummary{
			BookTitle:  manifest.BookTitle,
			OutputFile: outPath,
			TotalCards: stats.TotalCards,
			TotalBasic: stats.TotalBasic,
			TotalCloze: stats.TotalCloze,
		}
		for _, ch := range stats.Chapters {
			summary.Sections = append(summary.Sections, exportSectionRow{
				Num:   ch.Num,
				Title: ch.Title,
				Basic: ch.Basic,
				Cloze: ch.Cloze,
			})
		}
		return cli.Output(summary)
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFile, "output-file", "", "export file path (default: <dir>/all_cards.txt)")
	exportCmd.Flags().StringSliceVar(&exportTags, "tags", nil, "extra global tags for the export")

	rootCmd.AddCommand(exportCmd)
}
