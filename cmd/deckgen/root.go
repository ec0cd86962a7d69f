package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/deckgen/deckgen/internal/cli"
	"github.com/deckgen/deckgen/internal/config"
	"github.com/deckgen/deckgen/internal/home"
	"github.com/deckgen/deckgen/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "deckgen",
	Short: "Turn books into Anki flashcard decks with LLM generation",
	Long: `Deckgen parses EPUB and PDF books into hierarchical sections and
generates Anki flashcards for them using an LLM provider.

The pipeline:
  - Section detection for PDFs (outline, font, pattern, layout cascade)
  - Native structure extraction for EPUBs
  - Content processing to markdown, text, or HTML
  - Basic and cloze card generation via OpenAI, Anthropic, or Ollama
  - Pipe-separated export files ready for Anki import`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.deckgen/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "deckgen home directory (default: ~/.deckgen)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "enable debug logging",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		cli.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}

// getHome returns the configured home directory.
func getHome() (*home.Dir, error) {
	return home.New(homeDir)
}

// getConfig loads configuration for the current invocation.
func getConfig() (*config.Manager, error) {
	return config.NewManager(cfgFile)
}

// newLogger builds the command logger honoring --verbose.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}
