package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deckgen/deckgen/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the deckgen home directory and config file",
	Long: `Create the deckgen home directory (default ~/.deckgen) with its
cache and decks subdirectories, and write a default config.yaml.

API keys are referenced as environment variables in the generated
config; set OPENAI_API_KEY (or enable another provider) before running
'deckgen generate'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := getHome()
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}

		if h.ConfigExists() && !initForce {
			fmt.Printf("Config already exists at %s (use --force to overwrite)\n", h.ConfigPath())
			return nil
		}
		if err := config.WriteDefault(h.ConfigPath()); err != nil {
			return err
		}

		fmt.Printf("Initialized deckgen home at %s\n", h.Path())
		fmt.Printf("Config written to %s\n", h.ConfigPath())
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}
