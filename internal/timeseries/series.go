// Package timeseries owns the ordered per-symbol record containers the
// analysis engine computes over. A series is validated once at construction
// and immutable afterwards; every downstream stage relies on that.
package timeseries

import (
	"fmt"
	"sort"
	"time"

	"github.com/wonny/tidemark/internal/contracts"
)

// ValidationError rejects a symbol's series before computation starts.
// The engine never silently reorders or drops records.
type ValidationError struct {
	Symbol string
	Date   time.Time
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Date.IsZero() {
		return fmt.Sprintf("invalid series for %s: %s (%s)", e.Symbol, e.Reason, e.Field)
	}
	return fmt.Sprintf("invalid record for %s at %s: %s (%s)",
		e.Symbol, e.Date.Format("2006-01-02"), e.Reason, e.Field)
}

// PriceSeries is one symbol's chronologically ordered price history.
type PriceSeries struct {
	symbol  string
	records []contracts.PriceRecord
	closes  []float64
	volumes []float64
}

// NewPriceSeries validates and wraps a symbol's ordered price records.
// Dates must be strictly increasing (uniqueness follows) and volumes
// non-negative; any violation rejects the whole series.
func NewPriceSeries(symbol string, records []contracts.PriceRecord) (*PriceSeries, error) {
	for i, r := range records {
		if r.Symbol != symbol {
			return nil, &ValidationError{
				Symbol: symbol, Date: r.Date, Field: "symbol",
				Reason: fmt.Sprintf("record belongs to %q", r.Symbol),
			}
		}
		if r.Volume < 0 {
			return nil, &ValidationError{
				Symbol: symbol, Date: r.Date, Field: "volume",
				Reason: fmt.Sprintf("negative volume %d", r.Volume),
			}
		}
		if r.Close < 0 || r.Open < 0 || r.High < 0 || r.Low < 0 {
			return nil, &ValidationError{
				Symbol: symbol, Date: r.Date, Field: "price",
				Reason: "negative price",
			}
		}
		if i > 0 && !records[i-1].Date.Before(r.Date) {
			return nil, &ValidationError{
				Symbol: symbol, Date: r.Date, Field: "date",
				Reason: "dates must be strictly increasing",
			}
		}
	}

	s := &PriceSeries{
		symbol:  symbol,
		records: records,
		closes:  make([]float64, len(records)),
		volumes: make([]float64, len(records)),
	}
	for i, r := range records {
		s.closes[i] = r.Close
		s.volumes[i] = float64(r.Volume)
	}
	return s, nil
}

// Symbol returns the symbol this series belongs to.
func (s *PriceSeries) Symbol() string { return s.symbol }

// Len returns the number of records.
func (s *PriceSeries) Len() int { return len(s.records) }

// At returns the record at position i.
func (s *PriceSeries) At(i int) contracts.PriceRecord { return s.records[i] }

// Closes returns the close prices in date order. Read-only.
func (s *PriceSeries) Closes() []float64 { return s.closes }

// Volumes returns the volumes in date order. Read-only.
func (s *PriceSeries) Volumes() []float64 { return s.volumes }

// Window returns the trailing window of n records ending at position end,
// inclusive. Windows never wrap or pad: ok is false when fewer than n
// records exist at or before end.
func (s *PriceSeries) Window(end, n int) ([]contracts.PriceRecord, bool) {
	if n < 1 || end >= len(s.records) || end-n+1 < 0 {
		return nil, false
	}
	return s.records[end-n+1 : end+1], true
}

// IndexAtOrBefore returns the position of the latest record dated at or
// before the given date, or -1 when none exists.
func (s *PriceSeries) IndexAtOrBefore(date time.Time) int {
	i := sort.Search(len(s.records), func(i int) bool {
		return s.records[i].Date.After(date)
	})
	return i - 1
}

// SentimentSeries is one symbol's chronologically ordered sentiment history.
type SentimentSeries struct {
	symbol  string
	records []contracts.SentimentRecord
}

// NewSentimentSeries validates and wraps a symbol's ordered sentiment
// records. Scores must stay within [-1, 1]; counts must be non-negative.
func NewSentimentSeries(symbol string, records []contracts.SentimentRecord) (*SentimentSeries, error) {
	for i, r := range records {
		if r.Symbol != symbol {
			return nil, &ValidationError{
				Symbol: symbol, Date: r.Date, Field: "symbol",
				Reason: fmt.Sprintf("record belongs to %q", r.Symbol),
			}
		}
		if r.Score < -1 || r.Score > 1 {
			return nil, &ValidationError{
				Symbol: symbol, Date: r.Date, Field: "sentiment_score",
				Reason: fmt.Sprintf("score %v outside [-1, 1]", r.Score),
			}
		}
		if r.NewsCount < 0 {
			return nil, &ValidationError{
				Symbol: symbol, Date: r.Date, Field: "news_count",
				Reason: "negative news count",
			}
		}
		if r.SocialVolume < 0 {
			return nil, &ValidationError{
				Symbol: symbol, Date: r.Date, Field: "social_volume",
				Reason: "negative social volume",
			}
		}
		if i > 0 && !records[i-1].Date.Before(r.Date) {
			return nil, &ValidationError{
				Symbol: symbol, Date: r.Date, Field: "date",
				Reason: "dates must be strictly increasing",
			}
		}
	}

	return &SentimentSeries{symbol: symbol, records: records}, nil
}

// Symbol returns the symbol this series belongs to.
func (s *SentimentSeries) Symbol() string { return s.symbol }

// Len returns the number of records.
func (s *SentimentSeries) Len() int { return len(s.records) }

// At returns the record at position i.
func (s *SentimentSeries) At(i int) contracts.SentimentRecord { return s.records[i] }

// LatestTwoAtOrBefore returns the latest record dated at or before date and
// the one immediately preceding it. Either may be nil when the history is
// too short.
func (s *SentimentSeries) LatestTwoAtOrBefore(date time.Time) (latest, previous *contracts.SentimentRecord) {
	i := sort.Search(len(s.records), func(i int) bool {
		return s.records[i].Date.After(date)
	})
	if i-1 >= 0 {
		latest = &s.records[i-1]
	}
	if i-2 >= 0 {
		previous = &s.records[i-2]
	}
	return latest, previous
}
