package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/tidemark/internal/collector"
	"github.com/wonny/tidemark/internal/contracts"
	"github.com/wonny/tidemark/pkg/logger"
)

// SentimentCollectionJob scrapes and scores the day's headlines for every
// known symbol before the evening analysis run.
type SentimentCollectionJob struct {
	collector *collector.Collector
	priceRepo contracts.PriceRepository
	workers   int
	logger    *logger.Logger
}

// NewSentimentCollectionJob creates the daily sentiment collection job.
func NewSentimentCollectionJob(col *collector.Collector, priceRepo contracts.PriceRepository, workers int, log *logger.Logger) *SentimentCollectionJob {
	if workers < 1 {
		workers = 2
	}
	return &SentimentCollectionJob{
		collector: col,
		priceRepo: priceRepo,
		workers:   workers,
		logger:    log.WithField("job", "sentiment_collection"),
	}
}

// Name returns the job name.
func (j *SentimentCollectionJob) Name() string { return "sentiment_collection" }

// Schedule runs every weekday at 17:30, an hour before the analysis run.
func (j *SentimentCollectionJob) Schedule() string { return "0 30 17 * * MON-FRI" }

// Run collects sentiment for every symbol with price history.
func (j *SentimentCollectionJob) Run(ctx context.Context) error {
	symbols, err := j.priceRepo.ListSymbols(ctx)
	if err != nil {
		return fmt.Errorf("list symbols: %w", err)
	}

	date := time.Now().Truncate(24 * time.Hour)
	results, err := j.collector.CollectAll(ctx, symbols, date, collector.Config{Workers: j.workers})
	if err != nil {
		return fmt.Errorf("collect sentiment: %w", err)
	}

	failed := 0
	for _, r := range results {
		if r.Error != nil {
			failed++
		}
	}

	j.logger.WithFields(map[string]interface{}{
		"symbols": len(symbols),
		"failed":  failed,
	}).Info("Scheduled sentiment collection finished")

	return nil
}
