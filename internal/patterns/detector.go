// Package patterns classifies chart patterns over a symbol's ordered close
// sequence: local extrema (support/resistance) and double top/bottom
// formations. Detection is two-pass because support/resistance strength is
// the per-symbol tally of same-typed events, which is only known once the
// whole series has been classified.
package patterns

import (
	"github.com/wonny/tidemark/internal/contracts"
	"github.com/wonny/tidemark/internal/timeseries"
	"github.com/wonny/tidemark/pkg/logger"
)

// Config holds the pattern detection parameters.
type Config struct {
	// Lookback is the number of points a double top/bottom pivot consults
	// behind itself, pivot included. Minimum (and default) 4.
	Lookback int
}

// Detector emits at most one pattern event per (symbol, date).
// ⭐ SSOT: chart pattern classification lives here only
type Detector struct {
	cfg    Config
	logger *logger.Logger
}

// NewDetector creates a new pattern detector.
func NewDetector(cfg Config, log *logger.Logger) *Detector {
	if cfg.Lookback < 4 {
		cfg.Lookback = 4
	}
	return &Detector{cfg: cfg, logger: log}
}

// Detect classifies every eligible point of the series and returns the
// events in ascending date order.
//
// When a point qualifies as both a local extremum and a double top/bottom,
// the double pattern wins: it subsumes the extremum condition and carries
// more information. This precedence is deliberate and relied on by the
// strength tally below.
func (d *Detector) Detect(series *timeseries.PriceSeries) []contracts.PatternEvent {
	closes := series.Closes()
	n := len(closes)
	events := make([]contracts.PatternEvent, 0)

	// Pass 1: classify each point. Interior points only; the first and
	// last close have no complete neighborhood.
	for i := 1; i < n-1; i++ {
		localMax := closes[i] > closes[i-1] && closes[i] > closes[i+1]
		localMin := closes[i] < closes[i-1] && closes[i] < closes[i+1]
		if !localMax && !localMin {
			continue
		}

		rec := series.At(i)
		event := contracts.PatternEvent{
			Symbol:     rec.Symbol,
			Date:       rec.Date,
			ClosePrice: rec.Close,
		}

		switch {
		case localMax && d.isDoubleTop(closes, i):
			event.Type = contracts.PatternDoubleTop
			event.Strength = doubleStrength(closes[i]-closes[i-2], closes[i-2])
		case localMin && d.isDoubleBottom(closes, i):
			event.Type = contracts.PatternDoubleBottom
			event.Strength = doubleStrength(closes[i-2]-closes[i], closes[i-2])
		case localMax:
			event.Type = contracts.PatternResistance
		default:
			event.Type = contracts.PatternSupport
		}

		events = append(events, event)
	}

	// Pass 2: support/resistance strength is the count of same-typed
	// events across the whole series.
	var supports, resistances float64
	for _, e := range events {
		switch e.Type {
		case contracts.PatternSupport:
			supports++
		case contracts.PatternResistance:
			resistances++
		}
	}
	for i := range events {
		switch events[i].Type {
		case contracts.PatternSupport:
			s := supports
			events[i].Strength = &s
		case contracts.PatternResistance:
			s := resistances
			events[i].Strength = &s
		}
	}

	d.logger.WithFields(map[string]interface{}{
		"symbol": series.Symbol(),
		"events": len(events),
	}).Debug("Detected patterns")

	return events
}

// isDoubleTop reports whether the local maximum at i completes a double
// top: the preceding shoulder must itself rise above the two points
// behind it. Requires lookback-1 predecessors.
func (d *Detector) isDoubleTop(closes []float64, i int) bool {
	if i < d.cfg.Lookback-1 {
		return false
	}
	return closes[i-1] > closes[i-2] && closes[i-1] > closes[i-3]
}

// isDoubleBottom is the mirror of isDoubleTop with every inequality
// reversed.
func (d *Detector) isDoubleBottom(closes []float64, i int) bool {
	if i < d.cfg.Lookback-1 {
		return false
	}
	return closes[i-1] < closes[i-2] && closes[i-1] < closes[i-3]
}

// doubleStrength is the height difference relative to the close two steps
// behind the pivot. Nil when that reference close is zero; a zero-priced
// reference has no meaningful relative height.
func doubleStrength(diff, ref float64) *float64 {
	if ref == 0 {
		return nil
	}
	s := diff / ref
	return &s
}
