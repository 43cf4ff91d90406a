package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tidemark",
	Short: "Tidemark - per-symbol market analysis engine",
	Long: `Tidemark Unified CLI

Technical and sentiment indicator engine over per-symbol daily series:
moving averages, Bollinger bands, RSI, chart patterns and a composite
market sentiment score, one analysis row per (symbol, date).

Usage:
  go run ./cmd/tidemark [command]

Examples:
  go run ./cmd/tidemark analyze
  go run ./cmd/tidemark api
  go run ./cmd/tidemark scheduler
  go run ./cmd/tidemark collect`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
