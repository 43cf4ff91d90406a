package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/tidemark/internal/collector"
)

// collectCmd represents the collect command
var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect sentiment for all symbols",
	Long: `Scrapes and scores the news headlines of every known symbol for one
date and stores the resulting sentiment records.

Example:
  go run ./cmd/tidemark collect
  go run ./cmd/tidemark collect --date 2026-03-02`,
	RunE: runCollect,
}

var collectDate string

func init() {
	rootCmd.AddCommand(collectCmd)

	collectCmd.Flags().StringVar(&collectDate, "date", "", "collection date (YYYY-MM-DD, default today)")
}

func runCollect(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Tidemark Sentiment Collection ===")

	application, err := newApp()
	if err != nil {
		return err
	}
	defer application.Close()

	date := time.Now().Truncate(24 * time.Hour)
	if collectDate != "" {
		date, err = time.Parse("2006-01-02", collectDate)
		if err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
	}

	ctx := context.Background()
	symbols, err := application.priceRepo.ListSymbols(ctx)
	if err != nil {
		return fmt.Errorf("list symbols: %w", err)
	}

	results, err := application.collector.CollectAll(ctx, symbols, date, collector.Config{
		Workers: application.cfg.Analysis.Workers,
	})
	if err != nil {
		return fmt.Errorf("collect sentiment: %w", err)
	}

	failed := 0
	for _, r := range results {
		if r.Error != nil {
			failed++
			fmt.Printf("   ❌ %s: %v\n", r.Symbol, r.Error)
		}
	}

	fmt.Printf("\n✅ Collected %d symbols (%d failed)\n", len(results)-failed, failed)
	return nil
}
