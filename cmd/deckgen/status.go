package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/deckgen/deckgen/internal/cli"
	"github.com/deckgen/deckgen/internal/export"
	"github.com/deckgen/deckgen/internal/output"
)

// statusSummary reports pipeline progress for a chapters directory.
type statusSummary struct {
	Directory    string          `json:"directory" yaml:"directory"`
	BookTitle    string          `json:"book_title,omitempty" yaml:"book_title,omitempty"`
	SourceFormat string          `json:"source_format,omitempty" yaml:"source_format,omitempty"`
	Parsed       int             `json:"parsed_chapters" yaml:"parsed_chapters"`
	Generated    int             `json:"generated_chapters" yaml:"generated_chapters"`
	Pending      []int           `json:"pending_chapters,omitempty" yaml:"pending_chapters,omitempty"`
	TotalCards   int             `json:"total_cards" yaml:"total_cards"`
	Exported     bool            `json:"exported" yaml:"exported"`
	ExportFile   string          `json:"export_file,omitempty" yaml:"export_file,omitempty"`
	Sections     []statusSection `json:"sections,omitempty" yaml:"sections,omitempty"`
}

type statusSection struct {
	Num       int    `json:"num" yaml:"num"`
	Title     string `json:"title" yaml:"title"`
	WordCount int    `json:"word_count" yaml:"word_count"`
	Generated bool   `json:"generated" yaml:"generated"`
	Cards     int    `json:"cards" yaml:"cards"`
}

var statusCmd = &cobra.Command{
	Use:   "status <chapters-dir>",
	Short: "Show parse, generate, and export progress for a book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]

		chapterFiles, err := output.FindChapterFiles(dir)
		if err != nil {
			return err
		}
		if len(chapterFiles) == 0 {
			return fmt.Errorf("no chapter files found in %s (run 'deckgen parse' first)", dir)
		}

		summary := statusSummary{
			Directory: dir,
			Parsed:    len(chapterFiles),
		}
		if manifest, err := output.LoadManifest(dir); err == nil {
			summary.BookTitle = manifest.BookTitle
			summary.SourceFormat = manifest.SourceFormat
		}

		// Card counts per chapter number, from the generated card files.
		cardsByNum := make(map[int]int)
		cardFiles, err := export.FindCardFiles(dir)
		if err != nil {
			return err
		}
		for _, path := range cardFiles {
			parsed, err := export.ParseCardFile(path)
			if err != nil || parsed == nil {
				continue
			}
			cardsByNum[parsed.ChapterNum] = len(parsed.CardLines)
		}

		for _, path := range chapterFiles {
			num := output.ChapterNumber(path)
			ch, err := output.LoadChapter(path)
			if err != nil {
				return err
			}
			cards, generated := cardsByNum[num]
			if generated {
				summary.Generated++
				summary.TotalCards += cards
			} else {
				summary.Pending = append(summary.Pending, num)
			}
			summary.Sections = append(summary.Sections, statusSection{
				Num:       num,
				Title:     ch.Metadata.Title,
				WordCount: ch.Metadata.WordCount,
				Generated: generated,
				Cards:     cards,
			})
		}

		exportPath := filepath.Join(dir, "all_cards.txt")
		if _, err := os.Stat(exportPath); err == nil {
			summary.Exported = true
			summary.ExportFile = exportPath
		}

		return cli.Output(summary)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
