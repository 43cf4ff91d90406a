package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run one analysis pass over all symbols",
	Long: `Runs the full analysis pipeline once: loads price and sentiment
history for every known symbol, computes indicators, patterns and composite
scores and persists the resulting analysis rows.

Example:
  go run ./cmd/tidemark analyze
  go run ./cmd/tidemark analyze --from 2026-01-01 --to 2026-03-01`,
	RunE: runAnalyze,
}

var (
	analyzeFrom string
	analyzeTo   string
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeFrom, "from", "", "history start date (YYYY-MM-DD, default 120 days before --to)")
	analyzeCmd.Flags().StringVar(&analyzeTo, "to", "", "history end date (YYYY-MM-DD, default today)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Tidemark Analysis Run ===")

	application, err := newApp()
	if err != nil {
		return err
	}
	defer application.Close()

	to := time.Now().Truncate(24 * time.Hour)
	if analyzeTo != "" {
		to, err = time.Parse("2006-01-02", analyzeTo)
		if err != nil {
			return fmt.Errorf("invalid --to date: %w", err)
		}
	}

	from := to.AddDate(0, 0, -120)
	if analyzeFrom != "" {
		from, err = time.Parse("2006-01-02", analyzeFrom)
		if err != nil {
			return fmt.Errorf("invalid --from date: %w", err)
		}
	}

	result, err := application.service.Run(context.Background(), from, to)
	if err != nil {
		return fmt.Errorf("analysis run: %w", err)
	}

	fmt.Printf("\n✅ Run finished in %s\n", result.Duration.Round(time.Millisecond))
	fmt.Printf("   Rows:     %d\n", len(result.Rows))
	fmt.Printf("   Failures: %d\n", len(result.Failures))
	for _, f := range result.Failures {
		fmt.Printf("     - %s: %v\n", f.Symbol, f.Err)
	}

	return nil
}
