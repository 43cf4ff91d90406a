package contracts

import "time"

// Signal labels. An empty string means the signal is undefined for the row
// (insufficient history), which is distinct from Neutral.
const (
	SignalOverbought = "Overbought"
	SignalOversold   = "Oversold"
	SignalNeutral    = "Neutral"

	TrendBullish = "Bullish"
	TrendBearish = "Bearish"
	TrendNeutral = "Neutral"

	VolumeHigh   = "High Volume"
	VolumeLow    = "Low Volume"
	VolumeNormal = "Normal Volume"

	VolumeTrendIncreasing = "Increasing"
	VolumeTrendDecreasing = "Decreasing"
)

// PatternType classifies a chart pattern event. Absence of an event is
// represented by no PatternEvent at all, never by a sentinel row.
type PatternType string

const (
	PatternSupport      PatternType = "Support"
	PatternResistance   PatternType = "Resistance"
	PatternDoubleTop    PatternType = "Double Top"
	PatternDoubleBottom PatternType = "Double Bottom"
)

// IndicatorRow holds the derived indicators for one (symbol, date).
// Nil pointer fields mean the trailing window had insufficient history;
// they are never defaulted to zero. Computed once, never mutated.
type IndicatorRow struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`

	SMAShort    *float64 `json:"sma_20,omitempty"`
	SMALong     *float64 `json:"sma_50,omitempty"`
	StdDev      *float64 `json:"std_dev_20,omitempty"`
	UpperBand   *float64 `json:"upper_band,omitempty"`
	LowerBand   *float64 `json:"lower_band,omitempty"`
	DailyReturn *float64 `json:"daily_return,omitempty"`
	RSI         *float64 `json:"rsi,omitempty"`

	VolumeSMA      *float64 `json:"volume_sma,omitempty"`
	VolumeShortSMA *float64 `json:"volume_short_sma,omitempty"`
	VolumePattern  string   `json:"volume_pattern,omitempty"`
}

// PatternEvent is a chart pattern detected at one (symbol, date).
// Strength is nil when the reference close needed by the strength formula
// is zero.
type PatternEvent struct {
	Symbol     string      `json:"symbol"`
	Date       time.Time   `json:"date"`
	ClosePrice float64     `json:"close_price"`
	Type       PatternType `json:"pattern_type"`
	Strength   *float64    `json:"strength,omitempty"`
}

// AnalysisRow is the final output of the engine: indicators, the optional
// pattern event, sentiment-derived fields and composite signals joined on
// (symbol, date).
type AnalysisRow struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`

	// Indicators
	SMAShort    *float64 `json:"sma_20,omitempty"`
	SMALong     *float64 `json:"sma_50,omitempty"`
	StdDev      *float64 `json:"std_dev_20,omitempty"`
	UpperBand   *float64 `json:"upper_band,omitempty"`
	LowerBand   *float64 `json:"lower_band,omitempty"`
	DailyReturn *float64 `json:"daily_return,omitempty"`
	RSI         *float64 `json:"rsi,omitempty"`
	VolumeSMA   *float64 `json:"volume_sma,omitempty"`

	// Labels
	VolumePattern string `json:"volume_pattern,omitempty"`
	VolumeTrend   string `json:"volume_trend,omitempty"`

	// Pattern
	PatternType     PatternType `json:"pattern_type,omitempty"`
	PatternStrength *float64    `json:"pattern_strength,omitempty"`

	// Sentiment
	SentimentScore    *float64 `json:"sentiment_score,omitempty"`
	SentimentMomentum *float64 `json:"sentiment_momentum,omitempty"`
	NewsMomentum      *float64 `json:"news_momentum,omitempty"`

	// Composite signals
	BollingerSignal      string   `json:"bollinger_signal,omitempty"`
	TrendSignal          string   `json:"trend_signal,omitempty"`
	VolatilityRatio      *float64 `json:"volatility_ratio,omitempty"`
	MarketSentimentScore float64  `json:"market_sentiment_score"`
}

// HasPattern reports whether a pattern event was joined onto this row.
func (r *AnalysisRow) HasPattern() bool {
	return r.PatternType != ""
}
