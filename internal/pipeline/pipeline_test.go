package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tidemark/internal/contracts"
	"github.com/wonny/tidemark/internal/indicators"
	"github.com/wonny/tidemark/internal/patterns"
	"github.com/wonny/tidemark/internal/scoring"
	"github.com/wonny/tidemark/internal/timeseries"
	"github.com/wonny/tidemark/pkg/logger"
)

func testPipeline(cfg Config) *Pipeline {
	log := logger.NewWithWriter(io.Discard, "error")
	calc := indicators.NewCalculator(indicators.Config{
		ShortWindow:       20,
		LongWindow:        50,
		VolumeWindow:      20,
		VolumeTrendWindow: 5,
		BollingerK:        2.0,
		RSIPeriod:         14,
		MomentumPeriod:    3,
	}, log)
	det := patterns.NewDetector(patterns.Config{Lookback: 4}, log)
	return New(cfg, calc, det, scoring.NewScorer(log), log)
}

func day(n int) time.Time {
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func priceInput(symbol string, closes []float64) Input {
	records := make([]contracts.PriceRecord, len(closes))
	for i, c := range closes {
		records[i] = contracts.PriceRecord{
			Symbol: symbol, Date: day(i),
			Open: c, High: c, Low: c, Close: c, Volume: 1000,
		}
	}
	return Input{Symbol: symbol, Prices: records}
}

func increasing(start float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)
	}
	return out
}

func TestRun_SortsBySymbolThenDate(t *testing.T) {
	p := testPipeline(Config{Workers: 4})

	// Deliberately unsorted input order.
	inputs := []Input{
		priceInput("ZULU", increasing(100, 60)),
		priceInput("ALFA", increasing(200, 60)),
		priceInput("MIKE", increasing(300, 60)),
	}

	result := p.Run(context.Background(), inputs)
	require.Empty(t, result.Failures)
	require.Len(t, result.Rows, 180)

	sorted := sort.SliceIsSorted(result.Rows, func(i, j int) bool {
		a, b := result.Rows[i], result.Rows[j]
		if a.Symbol != b.Symbol {
			return a.Symbol < b.Symbol
		}
		return a.Date.Before(b.Date)
	})
	assert.True(t, sorted)
	assert.Equal(t, "ALFA", result.Rows[0].Symbol)
	assert.Equal(t, "ZULU", result.Rows[179].Symbol)
}

func TestRun_StrictlyIncreasingSeries(t *testing.T) {
	p := testPipeline(Config{Workers: 2})
	result := p.Run(context.Background(), []Input{priceInput("TEST", increasing(100, 60))})
	require.Empty(t, result.Failures)
	require.Len(t, result.Rows, 60)

	for _, row := range result.Rows {
		assert.False(t, row.HasPattern(), "monotonic series has no extrema")
		if row.SMAShort != nil && row.SMALong != nil {
			assert.Equal(t, contracts.TrendBullish, row.TrendSignal)
		}
	}
	assert.Equal(t, contracts.TrendBullish, result.Rows[59].TrendSignal)
}

func TestRun_InsufficientHistoryLeavesSignalsUndefined(t *testing.T) {
	p := testPipeline(Config{Workers: 1})
	result := p.Run(context.Background(), []Input{priceInput("TEST", increasing(100, 10))})
	require.Empty(t, result.Failures)
	require.Len(t, result.Rows, 10)

	for _, row := range result.Rows {
		assert.Nil(t, row.SMAShort)
		assert.Nil(t, row.SMALong)
		assert.Nil(t, row.UpperBand)
		assert.Empty(t, row.BollingerSignal, "undefined is not Neutral")
		assert.Empty(t, row.TrendSignal, "undefined is not Neutral")
		assert.Nil(t, row.VolatilityRatio)
	}
}

func TestRun_JoinsSentimentAndPatterns(t *testing.T) {
	p := testPipeline(Config{Workers: 1})

	in := priceInput("TEST", []float64{100, 100, 100, 150, 100, 100, 100})
	in.Sentiments = []contracts.SentimentRecord{
		{Symbol: "TEST", Date: day(2), Score: 0.2, NewsCount: 3},
		{Symbol: "TEST", Date: day(3), Score: 0.8, NewsCount: 5},
	}

	result := p.Run(context.Background(), []Input{in})
	require.Empty(t, result.Failures)
	require.Len(t, result.Rows, 7)

	spike := result.Rows[3]
	assert.Equal(t, contracts.PatternResistance, spike.PatternType)
	require.NotNil(t, spike.PatternStrength)
	assert.Equal(t, 1.0, *spike.PatternStrength)

	require.NotNil(t, spike.SentimentScore)
	assert.Equal(t, 0.8, *spike.SentimentScore)
	require.NotNil(t, spike.SentimentMomentum)
	assert.InDelta(t, 0.6/3.0, *spike.SentimentMomentum, 1e-9)
	require.NotNil(t, spike.NewsMomentum)
	assert.Equal(t, 2.0, *spike.NewsMomentum)

	// Sentiment carries forward to later dates; positive news momentum and
	// score feed the composite.
	assert.InDelta(t, 0.3*0.8+0.2*0.2+0.15, spike.MarketSentimentScore, 1e-9)

	// Rows before any sentiment point have none joined.
	first := result.Rows[0]
	assert.Nil(t, first.SentimentScore)
	assert.Zero(t, first.MarketSentimentScore)
}

func TestRun_TrailingOutputPeriods(t *testing.T) {
	p := testPipeline(Config{Workers: 1, OutputPeriods: 30})
	result := p.Run(context.Background(), []Input{priceInput("TEST", increasing(100, 60))})
	require.Empty(t, result.Failures)
	require.Len(t, result.Rows, 30)

	assert.Equal(t, day(30), result.Rows[0].Date)
	assert.Equal(t, day(59), result.Rows[29].Date)

	// Indicators were computed over the full history before trimming.
	require.NotNil(t, result.Rows[0].SMAShort)
}

func TestRun_InvalidSymbolDoesNotAbortOthers(t *testing.T) {
	p := testPipeline(Config{Workers: 2})

	bad := priceInput("BAD", increasing(100, 5))
	bad.Prices[3].Volume = -1

	result := p.Run(context.Background(), []Input{bad, priceInput("GOOD", increasing(100, 5))})

	require.Len(t, result.Failures, 1)
	assert.Equal(t, "BAD", result.Failures[0].Symbol)

	var verr *timeseries.ValidationError
	require.ErrorAs(t, result.Failures[0].Err, &verr)
	assert.Equal(t, "volume", verr.Field)

	require.Len(t, result.Rows, 5)
	assert.Equal(t, "GOOD", result.Rows[0].Symbol)
}

func TestRun_Idempotent(t *testing.T) {
	inputs := []Input{
		priceInput("AAA", increasing(100, 60)),
		priceInput("BBB", []float64{100, 100, 100, 150, 100, 100, 100}),
	}
	inputs[1].Sentiments = []contracts.SentimentRecord{
		{Symbol: "BBB", Date: day(1), Score: -0.4, NewsCount: 2},
		{Symbol: "BBB", Date: day(4), Score: 0.1, NewsCount: 6},
	}

	p := testPipeline(Config{Workers: 3, OutputPeriods: 30})
	first := p.Run(context.Background(), inputs)
	second := p.Run(context.Background(), inputs)

	a, err := json.Marshal(first.Rows)
	require.NoError(t, err)
	b, err := json.Marshal(second.Rows)
	require.NoError(t, err)
	assert.Equal(t, a, b, "identical input must produce identical output")
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := testPipeline(Config{Workers: 2})
	result := p.Run(ctx, []Input{
		priceInput("AAA", increasing(100, 60)),
		priceInput("BBB", increasing(100, 60)),
	})

	require.Len(t, result.Failures, 2)
	for _, f := range result.Failures {
		assert.ErrorIs(t, f.Err, context.Canceled)
	}
	assert.Empty(t, result.Rows)
}

func TestRun_NoInputs(t *testing.T) {
	p := testPipeline(Config{Workers: 2})
	result := p.Run(context.Background(), nil)
	assert.Empty(t, result.Rows)
	assert.Empty(t, result.Failures)
}
