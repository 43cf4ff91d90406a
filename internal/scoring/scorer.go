// Package scoring turns a joined analysis row's indicators, pattern and
// sentiment fields into labeled signals and the weighted market sentiment
// score.
package scoring

import (
	"github.com/wonny/tidemark/internal/contracts"
	"github.com/wonny/tidemark/pkg/logger"
)

// Fixed weights of the market sentiment score.
const (
	weightSentiment = 0.3
	weightMomentum  = 0.2
	weightPattern   = 0.2
	weightVolume    = 0.15
	weightNews      = 0.15
)

// Scorer labels rows and computes the composite score.
// ⭐ SSOT: signal labeling and score weights live here only
type Scorer struct {
	logger *logger.Logger
}

// NewScorer creates a new composite scorer.
func NewScorer(log *logger.Logger) *Scorer {
	return &Scorer{logger: log}
}

// Apply fills the composite signal fields of an assembled row in place.
// The row's indicator, pattern, sentiment and volume trend fields must
// already be joined on.
func (s *Scorer) Apply(row *contracts.AnalysisRow) {
	row.BollingerSignal = bollingerSignal(row.Close, row.UpperBand, row.LowerBand)
	row.TrendSignal = trendSignal(row.SMAShort, row.SMALong)
	row.VolatilityRatio = volatilityRatio(row.UpperBand, row.LowerBand, row.SMAShort)
	row.MarketSentimentScore = s.marketSentimentScore(row)
}

// VolumeTrend labels the direction of the short volume SMA against the
// long one. Empty when either SMA is undefined or the two are equal.
func (s *Scorer) VolumeTrend(short, long *float64) string {
	if short == nil || long == nil {
		return ""
	}
	switch {
	case *short > *long:
		return contracts.VolumeTrendIncreasing
	case *short < *long:
		return contracts.VolumeTrendDecreasing
	default:
		return ""
	}
}

// marketSentimentScore is the weighted sum over whichever factors the row
// has. A missing factor contributes 0 instead of blanking the score, so a
// single absent input never erases the rest.
func (s *Scorer) marketSentimentScore(row *contracts.AnalysisRow) float64 {
	var score float64

	if row.SentimentScore != nil {
		score += weightSentiment * *row.SentimentScore
	}
	if row.SentimentMomentum != nil {
		score += weightMomentum * *row.SentimentMomentum
	}

	switch row.PatternType {
	case contracts.PatternDoubleBottom:
		score += weightPattern
	case contracts.PatternDoubleTop:
		score -= weightPattern
	}

	switch row.VolumeTrend {
	case contracts.VolumeTrendIncreasing:
		score += weightVolume
	case contracts.VolumeTrendDecreasing:
		score -= weightVolume
	}

	if row.NewsMomentum != nil {
		switch {
		case *row.NewsMomentum > 0:
			score += weightNews
		case *row.NewsMomentum < 0:
			score -= weightNews
		}
	}

	return score
}

// bollingerSignal positions the close against the band envelope. Empty
// when the bands are undefined; an undefined band is not Neutral.
func bollingerSignal(close float64, upper, lower *float64) string {
	if upper == nil || lower == nil {
		return ""
	}
	switch {
	case close > *upper:
		return contracts.SignalOverbought
	case close < *lower:
		return contracts.SignalOversold
	default:
		return contracts.SignalNeutral
	}
}

// trendSignal compares the short SMA against the long one. Empty when
// either is undefined.
func trendSignal(smaShort, smaLong *float64) string {
	if smaShort == nil || smaLong == nil {
		return ""
	}
	switch {
	case *smaShort > *smaLong:
		return contracts.TrendBullish
	case *smaShort < *smaLong:
		return contracts.TrendBearish
	default:
		return contracts.TrendNeutral
	}
}

// volatilityRatio is the band width relative to the short SMA. Nil when
// the SMA is undefined or zero.
func volatilityRatio(upper, lower, sma *float64) *float64 {
	if upper == nil || lower == nil || sma == nil || *sma == 0 {
		return nil
	}
	r := (*upper - *lower) / *sma
	return &r
}
