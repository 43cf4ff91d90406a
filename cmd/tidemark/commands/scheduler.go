package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/tidemark/internal/scheduler"
	"github.com/wonny/tidemark/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Start the job scheduler",
	Long: `Starts the cron scheduler with the recurring jobs:

  sentiment_collection - weekdays 17:30, scrape and score headlines
  analysis_run         - weekdays 18:30, recompute all analysis rows

Example:
  go run ./cmd/tidemark scheduler`,
	RunE: runScheduler,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Tidemark Scheduler ===")

	application, err := newApp()
	if err != nil {
		return err
	}
	defer application.Close()

	sched := scheduler.New(application.log)

	sentimentJob := jobs.NewSentimentCollectionJob(
		application.collector,
		application.priceRepo,
		application.cfg.Analysis.Workers,
		application.log,
	)
	analysisJob := jobs.NewAnalysisRunJob(application.service, 120, application.log)

	if err := sched.AddJob(sentimentJob); err != nil {
		return fmt.Errorf("add sentiment job: %w", err)
	}
	if err := sched.AddJob(analysisJob); err != nil {
		return fmt.Errorf("add analysis job: %w", err)
	}

	sched.Start()
	defer sched.Stop()

	fmt.Println("\n✅ Scheduler running")
	fmt.Println("\nJobs:")
	fmt.Printf("  %-22s %s\n", sentimentJob.Name(), sentimentJob.Schedule())
	fmt.Printf("  %-22s %s\n", analysisJob.Name(), analysisJob.Schedule())
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	return nil
}
