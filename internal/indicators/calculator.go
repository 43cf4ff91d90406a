// Package indicators derives the per-row technical indicator set for one
// symbol's price series: moving averages, Bollinger bands, RSI, volume
// classification and sentiment momentum. Every windowed value is nil until
// its trailing window is fully covered by history.
package indicators

import (
	"time"

	"github.com/wonny/tidemark/internal/contracts"
	"github.com/wonny/tidemark/internal/rolling"
	"github.com/wonny/tidemark/internal/timeseries"
	"github.com/wonny/tidemark/pkg/logger"
)

// Config holds the indicator windows and numeric policy.
type Config struct {
	ShortWindow       int     // close SMA, default 20
	LongWindow        int     // close SMA, default 50
	VolumeWindow      int     // volume SMA, default 20
	VolumeTrendWindow int     // short volume SMA, default 5
	BollingerK        float64 // default 2
	RSIPeriod         int     // default 14
	MomentumPeriod    int     // sentiment momentum divisor, default 3
	SampleStdDev      bool

	// MissingVolumeAsNormal labels rows without a defined volume SMA as
	// Normal Volume instead of leaving the label undefined.
	MissingVolumeAsNormal bool
}

// Calculator computes the full indicator set for one symbol at a time.
// ⭐ SSOT: technical indicator math lives here only
type Calculator struct {
	cfg    Config
	logger *logger.Logger
}

// NewCalculator creates a new indicator calculator.
func NewCalculator(cfg Config, log *logger.Logger) *Calculator {
	return &Calculator{cfg: cfg, logger: log}
}

// Compute produces one IndicatorRow per record of the series, in date
// order. The traversal advances each rolling window once per record, so a
// full pass is O(n) regardless of window sizes.
func (c *Calculator) Compute(series *timeseries.PriceSeries) []contracts.IndicatorRow {
	n := series.Len()
	rows := make([]contracts.IndicatorRow, 0, n)

	newWindow := func(size int) *rolling.Window {
		if c.cfg.SampleStdDev {
			return rolling.NewSample(size)
		}
		return rolling.New(size)
	}

	winShort := newWindow(c.cfg.ShortWindow)
	winLong := newWindow(c.cfg.LongWindow)
	winVolume := newWindow(c.cfg.VolumeWindow)
	winVolTrend := newWindow(c.cfg.VolumeTrendWindow)

	closes := series.Closes()

	for i := 0; i < n; i++ {
		rec := series.At(i)

		winShort.Push(rec.Close)
		winLong.Push(rec.Close)
		winVolume.Push(float64(rec.Volume))
		winVolTrend.Push(float64(rec.Volume))

		row := contracts.IndicatorRow{
			Symbol: rec.Symbol,
			Date:   rec.Date,
			Close:  rec.Close,
			Volume: rec.Volume,
		}

		if mean, ok := winShort.Mean(); ok {
			row.SMAShort = ptr(mean)
			if sd, ok := winShort.StdDev(); ok {
				row.StdDev = ptr(sd)
				row.UpperBand = ptr(mean + c.cfg.BollingerK*sd)
				row.LowerBand = ptr(mean - c.cfg.BollingerK*sd)
			}
		}

		if mean, ok := winLong.Mean(); ok {
			row.SMALong = ptr(mean)
		}

		row.DailyReturn = dailyReturn(closes, i)
		row.RSI = rsiAt(closes, i, c.cfg.RSIPeriod)

		if mean, ok := winVolume.Mean(); ok {
			row.VolumeSMA = ptr(mean)
			row.VolumePattern = classifyVolume(float64(rec.Volume), mean)
		} else if c.cfg.MissingVolumeAsNormal {
			row.VolumePattern = contracts.VolumeNormal
		}

		if mean, ok := winVolTrend.Mean(); ok {
			row.VolumeShortSMA = ptr(mean)
		}

		rows = append(rows, row)
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": series.Symbol(),
		"rows":   len(rows),
	}).Debug("Computed indicators")

	return rows
}

// RSI computes the Relative Strength Index over the closed date range
// [start, end] of the series. Average gain is the mean of the positive
// day-over-day close deltas in range and average loss the mean of the
// absolute negative ones. A range with no losses reports 100; this guard
// is what keeps RSI defined for monotonically rising series. Nil when the
// range holds fewer than two records.
func (c *Calculator) RSI(series *timeseries.PriceSeries, period int, start, end time.Time) *float64 {
	last := series.IndexAtOrBefore(end)
	if last < 0 {
		return nil
	}

	first := last
	for first > 0 && !series.At(first-1).Date.Before(start) {
		first--
	}
	// The range never contributes more than period deltas.
	if last-first > period {
		first = last - period
	}
	if last-first < 1 {
		return nil
	}

	return rsiOverDeltas(series.Closes()[first : last+1])
}

// SentimentSnapshot returns the sentiment fields joined onto the row dated
// asOf: the latest score at or before asOf, the sentiment momentum
// (latest − previous) / momentum period, and the day-over-day news-count
// change. Momentum and news change are nil with fewer than two points.
func (c *Calculator) SentimentSnapshot(series *timeseries.SentimentSeries, asOf time.Time) (score, momentum, newsMomentum *float64) {
	if series == nil {
		return nil, nil, nil
	}

	latest, previous := series.LatestTwoAtOrBefore(asOf)
	if latest == nil {
		return nil, nil, nil
	}

	score = ptr(latest.Score)
	if previous == nil {
		return score, nil, nil
	}

	momentum = ptr((latest.Score - previous.Score) / float64(c.cfg.MomentumPeriod))
	newsMomentum = ptr(float64(latest.NewsCount - previous.NewsCount))
	return score, momentum, newsMomentum
}

// dailyReturn fails safe to nil when the previous close is missing or zero;
// it never divides into Inf.
func dailyReturn(closes []float64, i int) *float64 {
	if i == 0 {
		return nil
	}
	prev := closes[i-1]
	if prev == 0 {
		return nil
	}
	return ptr((closes[i] - prev) / prev)
}

// rsiAt is the per-row RSI: a trailing window of period deltas ending at
// position i. Defined only once i has period predecessors.
func rsiAt(closes []float64, i, period int) *float64 {
	if i < period {
		return nil
	}
	return rsiOverDeltas(closes[i-period : i+1])
}

// rsiOverDeltas computes RSI from the consecutive deltas of the given
// closes. len(closes) >= 2 is the caller's responsibility.
func rsiOverDeltas(closes []float64) *float64 {
	var gainSum, lossSum float64
	var gainN, lossN int

	for j := 1; j < len(closes); j++ {
		delta := closes[j] - closes[j-1]
		if delta > 0 {
			gainSum += delta
			gainN++
		} else if delta < 0 {
			lossSum += -delta
			lossN++
		}
	}

	var avgGain, avgLoss float64
	if gainN > 0 {
		avgGain = gainSum / float64(gainN)
	}
	if lossN > 0 {
		avgLoss = lossSum / float64(lossN)
	}

	// No losses in range: fully overbought, and the division below would
	// blow up. The unguarded variant of this formula is a known bug.
	if avgLoss == 0 {
		return ptr(100.0)
	}

	rs := avgGain / avgLoss
	return ptr(100 - 100/(1+rs))
}

// classifyVolume labels a volume against its SMA.
func classifyVolume(volume, sma float64) string {
	switch {
	case volume > 2*sma:
		return contracts.VolumeHigh
	case volume < 0.5*sma:
		return contracts.VolumeLow
	default:
		return contracts.VolumeNormal
	}
}

func ptr(v float64) *float64 { return &v }
