// Package pipeline runs the full per-symbol analysis: series construction,
// indicators, pattern detection, sentiment join and composite scoring.
// Symbols are independent, so the run fans out over a worker pool and the
// partial outputs are merged and sorted at the end.
package pipeline

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wonny/tidemark/internal/contracts"
	"github.com/wonny/tidemark/internal/indicators"
	"github.com/wonny/tidemark/internal/patterns"
	"github.com/wonny/tidemark/internal/scoring"
	"github.com/wonny/tidemark/internal/timeseries"
	"github.com/wonny/tidemark/pkg/logger"
)

// Config holds the pipeline execution parameters.
type Config struct {
	// Workers is the number of symbols processed concurrently.
	Workers int

	// OutputPeriods is the trailing number of rows emitted per symbol.
	// Zero or negative emits the whole history.
	OutputPeriods int
}

// Input is one symbol's materialized history. Records must be in ascending
// date order; the pipeline validates, it never reorders.
type Input struct {
	Symbol     string
	Prices     []contracts.PriceRecord
	Sentiments []contracts.SentimentRecord
}

// Failure records a symbol the run could not analyze. One bad symbol never
// aborts the others.
type Failure struct {
	Symbol string
	Err    error
}

// Result is the outcome of one pipeline run. Rows are sorted by
// (symbol, date) ascending.
type Result struct {
	Rows     []contracts.AnalysisRow
	Failures []Failure
	Duration time.Duration
}

// Pipeline orchestrates the per-symbol analysis stages.
// ⭐ SSOT: the (symbol, date) output join lives here only
type Pipeline struct {
	cfg        Config
	calculator *indicators.Calculator
	detector   *patterns.Detector
	scorer     *scoring.Scorer
	logger     *logger.Logger
}

// New creates a new analysis pipeline.
func New(cfg Config, calc *indicators.Calculator, det *patterns.Detector, sc *scoring.Scorer, log *logger.Logger) *Pipeline {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Pipeline{
		cfg:        cfg,
		calculator: calc,
		detector:   det,
		scorer:     sc,
		logger:     log.WithField("module", "pipeline"),
	}
}

type symbolResult struct {
	symbol string
	rows   []contracts.AnalysisRow
	err    error
}

// Run analyzes every input symbol and returns the merged, sorted rows.
// Cancelling the context stops scheduling new symbols; symbols already in
// flight finish.
func (p *Pipeline) Run(ctx context.Context, inputs []Input) Result {
	start := time.Now()

	p.logger.WithFields(map[string]interface{}{
		"symbols": len(inputs),
		"workers": p.cfg.Workers,
	}).Info("Starting analysis run")

	inputCh := make(chan Input, len(inputs))
	resultCh := make(chan symbolResult, len(inputs))

	var wg sync.WaitGroup
	for i := 0; i < p.cfg.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			p.worker(ctx, workerID, inputCh, resultCh)
		}(i)
	}

	for _, in := range inputs {
		inputCh <- in
	}
	close(inputCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	result := Result{Rows: make([]contracts.AnalysisRow, 0)}
	for res := range resultCh {
		if res.err != nil {
			result.Failures = append(result.Failures, Failure{Symbol: res.symbol, Err: res.err})
			continue
		}
		result.Rows = append(result.Rows, res.rows...)
	}

	sort.Slice(result.Rows, func(i, j int) bool {
		a, b := result.Rows[i], result.Rows[j]
		if a.Symbol != b.Symbol {
			return a.Symbol < b.Symbol
		}
		return a.Date.Before(b.Date)
	})

	result.Duration = time.Since(start)

	p.logger.WithFields(map[string]interface{}{
		"rows":        len(result.Rows),
		"failed":      len(result.Failures),
		"duration_ms": result.Duration.Milliseconds(),
	}).Info("Analysis run completed")

	return result
}

func (p *Pipeline) worker(ctx context.Context, workerID int, inputCh <-chan Input, resultCh chan<- symbolResult) {
	for in := range inputCh {
		select {
		case <-ctx.Done():
			resultCh <- symbolResult{symbol: in.Symbol, err: ctx.Err()}
			continue
		default:
		}

		rows, err := p.analyzeSymbol(in)
		if err != nil {
			p.logger.WithError(err).WithFields(map[string]interface{}{
				"worker": workerID,
				"symbol": in.Symbol,
			}).Error("Failed to analyze symbol")
			resultCh <- symbolResult{symbol: in.Symbol, err: err}
			continue
		}

		p.logger.WithFields(map[string]interface{}{
			"worker": workerID,
			"symbol": in.Symbol,
			"rows":   len(rows),
		}).Debug("Analyzed symbol")

		resultCh <- symbolResult{symbol: in.Symbol, rows: rows}
	}
}

// analyzeSymbol runs the sequential stages for one symbol. Stages stay
// sequential because pattern strength needs a completed pass over the
// symbol's whole event list.
func (p *Pipeline) analyzeSymbol(in Input) ([]contracts.AnalysisRow, error) {
	prices, err := timeseries.NewPriceSeries(in.Symbol, in.Prices)
	if err != nil {
		return nil, err
	}

	var sentiments *timeseries.SentimentSeries
	if len(in.Sentiments) > 0 {
		sentiments, err = timeseries.NewSentimentSeries(in.Symbol, in.Sentiments)
		if err != nil {
			return nil, err
		}
	}

	indicatorRows := p.calculator.Compute(prices)
	events := p.detector.Detect(prices)

	eventByDate := make(map[time.Time]contracts.PatternEvent, len(events))
	for _, e := range events {
		eventByDate[e.Date] = e
	}

	rows := make([]contracts.AnalysisRow, 0, len(indicatorRows))
	for _, ind := range indicatorRows {
		row := contracts.AnalysisRow{
			Symbol:        ind.Symbol,
			Date:          ind.Date,
			Close:         ind.Close,
			Volume:        ind.Volume,
			SMAShort:      ind.SMAShort,
			SMALong:       ind.SMALong,
			StdDev:        ind.StdDev,
			UpperBand:     ind.UpperBand,
			LowerBand:     ind.LowerBand,
			DailyReturn:   ind.DailyReturn,
			RSI:           ind.RSI,
			VolumeSMA:     ind.VolumeSMA,
			VolumePattern: ind.VolumePattern,
			VolumeTrend:   p.scorer.VolumeTrend(ind.VolumeShortSMA, ind.VolumeSMA),
		}

		if e, ok := eventByDate[ind.Date]; ok {
			row.PatternType = e.Type
			row.PatternStrength = e.Strength
		}

		row.SentimentScore, row.SentimentMomentum, row.NewsMomentum =
			p.calculator.SentimentSnapshot(sentiments, ind.Date)

		p.scorer.Apply(&row)
		rows = append(rows, row)
	}

	if p.cfg.OutputPeriods > 0 && len(rows) > p.cfg.OutputPeriods {
		rows = rows[len(rows)-p.cfg.OutputPeriods:]
	}
	return rows, nil
}
