// Package analysis is the application service over the engine: it loads
// per-symbol history from the repositories, runs the pipeline, persists and
// caches the output and notifies stream subscribers.
package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/tidemark/internal/contracts"
	"github.com/wonny/tidemark/internal/pipeline"
	"github.com/wonny/tidemark/pkg/logger"
	"github.com/wonny/tidemark/pkg/redis"
)

// Publisher receives freshly computed rows for live distribution. The hub
// implements it; a nil publisher disables streaming.
type Publisher interface {
	PublishRows(rows []contracts.AnalysisRow)
}

// Service wires the repositories, the pipeline, the cache and the stream.
// ⭐ SSOT: analysis orchestration lives here only
type Service struct {
	priceRepo     contracts.PriceRepository
	sentimentRepo contracts.SentimentRepository
	analysisRepo  contracts.AnalysisRepository
	pipeline      *pipeline.Pipeline
	cache         *redis.Cache
	publisher     Publisher
	logger        *logger.Logger
}

// New creates a new analysis service. Cache and publisher may be nil.
func New(
	priceRepo contracts.PriceRepository,
	sentimentRepo contracts.SentimentRepository,
	analysisRepo contracts.AnalysisRepository,
	p *pipeline.Pipeline,
	cache *redis.Cache,
	publisher Publisher,
	log *logger.Logger,
) *Service {
	return &Service{
		priceRepo:     priceRepo,
		sentimentRepo: sentimentRepo,
		analysisRepo:  analysisRepo,
		pipeline:      p,
		cache:         cache,
		publisher:     publisher,
		logger:        log.WithField("module", "analysis"),
	}
}

// SetPublisher attaches a stream publisher. Call before Run; publication
// is not synchronized with it.
func (s *Service) SetPublisher(p Publisher) {
	s.publisher = p
}

// Run analyzes every known symbol over [from, to], persists the rows and
// returns the run result. Per-symbol load or validation failures are
// reported in the result, not fatal.
func (s *Service) Run(ctx context.Context, from, to time.Time) (pipeline.Result, error) {
	symbols, err := s.priceRepo.ListSymbols(ctx)
	if err != nil {
		return pipeline.Result{}, fmt.Errorf("list symbols: %w", err)
	}

	inputs := make([]pipeline.Input, 0, len(symbols))
	var loadFailures []pipeline.Failure
	for _, symbol := range symbols {
		prices, err := s.priceRepo.GetBySymbolAndDateRange(ctx, symbol, from, to)
		if err != nil {
			loadFailures = append(loadFailures, pipeline.Failure{Symbol: symbol, Err: fmt.Errorf("load prices: %w", err)})
			continue
		}
		if len(prices) == 0 {
			continue
		}

		sentiments, err := s.sentimentRepo.GetBySymbolAndDateRange(ctx, symbol, from, to)
		if err != nil {
			loadFailures = append(loadFailures, pipeline.Failure{Symbol: symbol, Err: fmt.Errorf("load sentiment: %w", err)})
			continue
		}

		inputs = append(inputs, pipeline.Input{Symbol: symbol, Prices: prices, Sentiments: sentiments})
	}

	result := s.pipeline.Run(ctx, inputs)
	result.Failures = append(loadFailures, result.Failures...)

	if len(result.Rows) > 0 {
		if err := s.analysisRepo.SaveBatch(ctx, result.Rows); err != nil {
			return result, fmt.Errorf("save analysis rows: %w", err)
		}
		s.cacheLatest(ctx, result.Rows)
		if s.publisher != nil {
			s.publisher.PublishRows(result.Rows)
		}
	}

	return result, nil
}

// Latest returns the most recent analysis row for a symbol, or nil when
// none exists. Cache-aside with a short TTL.
func (s *Service) Latest(ctx context.Context, symbol string) (*contracts.AnalysisRow, error) {
	if s.cache != nil {
		var row contracts.AnalysisRow
		if hit, err := s.cache.Get(ctx, latestKey(symbol), &row); err == nil && hit {
			return &row, nil
		}
	}

	row, err := s.analysisRepo.GetLatestBySymbol(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("get latest analysis: %w", err)
	}
	if row == nil {
		return nil, nil
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, latestKey(symbol), row, redis.TTLMedium); err != nil {
			s.logger.WithError(err).WithField("symbol", symbol).Warn("Failed to cache analysis row")
		}
	}
	return row, nil
}

// History returns the analysis rows for a symbol within [from, to].
func (s *Service) History(ctx context.Context, symbol string, from, to time.Time) ([]contracts.AnalysisRow, error) {
	rows, err := s.analysisRepo.GetBySymbolAndDateRange(ctx, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("get analysis history: %w", err)
	}
	return rows, nil
}

// cacheLatest stores each symbol's newest row. Rows arrive sorted by
// (symbol, date), so the last row per symbol is its latest.
func (s *Service) cacheLatest(ctx context.Context, rows []contracts.AnalysisRow) {
	if s.cache == nil {
		return
	}

	for i, row := range rows {
		if i+1 < len(rows) && rows[i+1].Symbol == row.Symbol {
			continue
		}
		if err := s.cache.Set(ctx, latestKey(row.Symbol), row, redis.TTLMedium); err != nil {
			s.logger.WithError(err).WithField("symbol", row.Symbol).Warn("Failed to cache analysis row")
		}
	}
}

func latestKey(symbol string) string {
	return "analysis:latest:" + symbol
}
