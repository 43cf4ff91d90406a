package collector

import (
	"context"
	"sync"
	"time"

	"github.com/wonny/tidemark/internal/contracts"
	"github.com/wonny/tidemark/pkg/logger"
)

// Collector orchestrates sentiment collection across symbols.
// ⭐ SSOT: sentiment ingestion orchestration lives here only
type Collector struct {
	client *Client
	repo   contracts.SentimentRepository
	logger *logger.Logger
}

// Config holds collector run parameters.
type Config struct {
	Workers int
}

// NewCollector creates a new sentiment collector.
func NewCollector(client *Client, repo contracts.SentimentRepository, log *logger.Logger) *Collector {
	return &Collector{
		client: client,
		repo:   repo,
		logger: log.WithField("module", "collector"),
	}
}

// FetchResult is the outcome of collecting one symbol.
type FetchResult struct {
	Symbol    string
	NewsCount int
	Error     error
}

// CollectAll fetches, scores and stores one SentimentRecord per symbol for
// the given date. Failed symbols are reported, not fatal.
func (c *Collector) CollectAll(ctx context.Context, symbols []string, date time.Time, cfg Config) ([]FetchResult, error) {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol_count": len(symbols),
		"date":         date.Format("2006-01-02"),
		"workers":      cfg.Workers,
	}).Info("Starting sentiment collection")

	symbolCh := make(chan string, len(symbols))
	resultCh := make(chan FetchResult, len(symbols))

	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			c.worker(ctx, workerID, symbolCh, resultCh, date)
		}(i)
	}

	for _, s := range symbols {
		symbolCh <- s
	}
	close(symbolCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]FetchResult, 0, len(symbols))
	successCount := 0
	failCount := 0
	for result := range resultCh {
		results = append(results, result)
		if result.Error != nil {
			failCount++
		} else {
			successCount++
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"success": successCount,
		"failed":  failCount,
		"total":   len(results),
	}).Info("Sentiment collection completed")

	return results, nil
}

func (c *Collector) worker(ctx context.Context, workerID int, symbolCh <-chan string, resultCh chan<- FetchResult, date time.Time) {
	for symbol := range symbolCh {
		select {
		case <-ctx.Done():
			resultCh <- FetchResult{Symbol: symbol, Error: ctx.Err()}
			return
		default:
		}

		headlines, err := c.client.FetchHeadlines(ctx, symbol, date)
		if err != nil {
			c.logger.WithError(err).WithFields(map[string]interface{}{
				"worker": workerID,
				"symbol": symbol,
			}).Error("Failed to fetch headlines")
			resultCh <- FetchResult{Symbol: symbol, Error: err}
			continue
		}

		record := contracts.SentimentRecord{
			Symbol:    symbol,
			Date:      date,
			Score:     Score(headlines),
			NewsCount: len(headlines),
		}

		if err := c.repo.SaveBatch(ctx, []contracts.SentimentRecord{record}); err != nil {
			c.logger.WithError(err).WithFields(map[string]interface{}{
				"worker": workerID,
				"symbol": symbol,
			}).Error("Failed to save sentiment")
			resultCh <- FetchResult{Symbol: symbol, NewsCount: record.NewsCount, Error: err}
			continue
		}

		resultCh <- FetchResult{Symbol: symbol, NewsCount: record.NewsCount}
	}
}
